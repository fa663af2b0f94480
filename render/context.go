package render

import "math"

// Context maps canvas units onto the terminal cell grid for one frame
// The canvas occupies rows [0, CanvasRows); the status bar sits below it
type Context struct {
	CanvasWidth  float64
	CanvasHeight float64
	Cols         int
	CanvasRows   int
}

// NewContext fits the canvas into a screen of cols x rows, reserving one status row
func NewContext(canvasW, canvasH float64, cols, rows int) Context {
	return Context{
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
		Cols:         max(cols, 1),
		CanvasRows:   max(rows-1, 1),
	}
}

// ScaleX returns cells per canvas unit horizontally
func (c Context) ScaleX() float64 {
	return float64(c.Cols) / c.CanvasWidth
}

// ScaleY returns cells per canvas unit vertically
func (c Context) ScaleY() float64 {
	return float64(c.CanvasRows) / c.CanvasHeight
}

// ToCell maps a canvas point to the cell containing it
func (c Context) ToCell(x, y float64) (int, int) {
	return int(math.Floor(x * c.ScaleX())), int(math.Floor(y * c.ScaleY()))
}

// ToCanvas maps a cell to the canvas point at its center
// ok is false for cells outside the canvas area
func (c Context) ToCanvas(col, row int) (x, y float64, ok bool) {
	if col < 0 || col >= c.Cols || row < 0 || row >= c.CanvasRows {
		return 0, 0, false
	}
	return (float64(col) + 0.5) / c.ScaleX(), (float64(row) + 0.5) / c.ScaleY(), true
}

// StatusRow is the row under the canvas
func (c Context) StatusRow() int {
	return c.CanvasRows
}
