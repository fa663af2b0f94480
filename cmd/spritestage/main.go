// Command spritestage runs sprite programs on a terminal canvas
package main

func main() {
	Execute()
}
