package render

import (
	"slices"

	"github.com/gdamore/tcell/v2"
)

// Cell is one terminal cell of the compositor
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB

	written bool
}

// blank is what Clear leaves behind
var blank = Cell{Rune: ' ', Fg: RGBWhite, Bg: RGBBackground}

// Buffer composes one frame in memory; layers write cells, Flush copies them to the screen
type Buffer struct {
	cells  []Cell
	width  int
	height int
}

// NewBuffer creates a cleared buffer of width x height cells
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Resize changes the dimensions and clears; storage is reused when large enough
func (b *Buffer) Resize(width, height int) {
	b.width, b.height = max(width, 0), max(height, 0)
	b.cells = slices.Grow(b.cells[:0], b.width*b.height)[:b.width*b.height]
	b.Clear()
}

// Size returns the dimensions in cells
func (b *Buffer) Size() (int, int) {
	return b.width, b.height
}

// Clear blanks every cell
func (b *Buffer) Clear() {
	for i := range b.cells {
		b.cells[i] = blank
	}
}

// at returns the cell at x, y or nil off the buffer
func (b *Buffer) at(x, y int) *Cell {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return nil
	}
	return &b.cells[y*b.width+x]
}

// Get returns the cell at x, y; the zero cell off the buffer
func (b *Buffer) Get(x, y int) Cell {
	if c := b.at(x, y); c != nil {
		return *c
	}
	return Cell{}
}

// Touched reports whether a layer wrote x, y since the last Clear
func (b *Buffer) Touched(x, y int) bool {
	c := b.at(x, y)
	return c != nil && c.written
}

// SetWithBg replaces the cell
func (b *Buffer) SetWithBg(x, y int, r rune, fg, bg RGB) {
	if c := b.at(x, y); c != nil {
		*c = Cell{Rune: r, Fg: fg, Bg: bg, written: true}
	}
}

// SetFgOnly writes rune and foreground over the existing background
func (b *Buffer) SetFgOnly(x, y int, r rune, fg RGB) {
	if c := b.at(x, y); c != nil {
		c.Rune, c.Fg, c.written = r, fg, true
	}
}

// SetBgOnly recolors the background, keeping rune and foreground
func (b *Buffer) SetBgOnly(x, y int, bg RGB) {
	if c := b.at(x, y); c != nil {
		c.Bg, c.written = bg, true
	}
}

// SetString writes s from x rightwards, clipped to the buffer
func (b *Buffer) SetString(x, y int, s string, fg, bg RGB) {
	for i, r := range []rune(s) {
		b.SetWithBg(x+i, y, r, fg, bg)
	}
}

// Flush copies every cell to screen and shows it
func (b *Buffer) Flush(screen tcell.Screen) {
	for i, c := range b.cells {
		style := tcell.StyleDefault.Foreground(c.Fg.Tcell()).Background(c.Bg.Tcell())
		screen.SetContent(i%b.width, i/b.width, c.Rune, nil, style)
	}
	screen.Show()
}
