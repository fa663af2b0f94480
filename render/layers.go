package render

import (
	"fmt"
	"math"

	"github.com/lixenwraith/spritestage/sandbox"
)

const (
	actorRune    = '█'
	selectedRune = '◆'
	tetherRune   = '·'
)

// programLayer replays the sandbox draw commands in call order
type programLayer struct{}

func (programLayer) Render(ctx Context, scene Scene, buf *Buffer) {
	sx, sy := ctx.ScaleX(), ctx.ScaleY()
	for _, cmd := range scene.Draws {
		fg := ParseColor(cmd.Color, RGBWhite)
		switch cmd.Op {
		case sandbox.OpClear:
			for row := 0; row < ctx.CanvasRows; row++ {
				for col := 0; col < ctx.Cols; col++ {
					buf.SetWithBg(col, row, ' ', RGBWhite, fg)
				}
			}
		case sandbox.OpRect:
			x0, y0 := ctx.ToCell(cmd.X, cmd.Y)
			x1, y1 := ctx.ToCell(cmd.X+cmd.W, cmd.Y+cmd.H)
			for row := max(y0, 0); row <= min(y1, ctx.CanvasRows-1); row++ {
				for col := max(x0, 0); col <= min(x1, ctx.Cols-1); col++ {
					buf.SetBgOnly(col, row, fg)
				}
			}
		case sandbox.OpCircle:
			fillEllipse(ctx, buf, cmd.X, cmd.Y, cmd.R*sx, cmd.R*sy, func(col, row int) {
				buf.SetBgOnly(col, row, fg)
			})
		case sandbox.OpLine:
			x0, y0 := ctx.ToCell(cmd.X, cmd.Y)
			x1, y1 := ctx.ToCell(cmd.X2, cmd.Y2)
			drawLine(ctx, x0, y0, x1, y1, func(col, row int) {
				buf.SetFgOnly(col, row, '•', fg)
			})
		case sandbox.OpText:
			col, row := ctx.ToCell(cmd.X, cmd.Y)
			if row >= 0 && row < ctx.CanvasRows {
				for _, r := range cmd.Text {
					if col >= ctx.Cols {
						break
					}
					buf.SetFgOnly(col, row, r, fg)
					col++
				}
			}
		}
	}
}

// actorLayer draws each visible actor as a filled ellipse in paint order
type actorLayer struct{}

func (actorLayer) Render(ctx Context, scene Scene, buf *Buffer) {
	sx, sy := ctx.ScaleX(), ctx.ScaleY()
	for _, a := range scene.Actors {
		fg := ParseColor(a.Color, RGBWhite)
		fillEllipse(ctx, buf, a.X, a.Y, a.Radius()*sx, a.Radius()*sy, func(col, row int) {
			buf.SetFgOnly(col, row, actorRune, fg)
		})
		col, row := ctx.ToCell(a.X, a.Y)
		if row < 0 || row >= ctx.CanvasRows {
			continue
		}
		if a.Selected {
			buf.SetWithBg(col, row, selectedRune, RGBBlack, RGBSelection)
			continue
		}
		for _, r := range a.Name {
			buf.SetWithBg(col, row, r, RGBBlack, fg)
			break
		}
	}
}

// tetherLayer shows the physics grab spring
type tetherLayer struct{}

func (tetherLayer) Render(ctx Context, scene Scene, buf *Buffer) {
	t := scene.Tether
	if t == nil {
		return
	}
	x0, y0 := ctx.ToCell(t.FromX, t.FromY)
	x1, y1 := ctx.ToCell(t.ToX, t.ToY)
	drawLine(ctx, x0, y0, x1, y1, func(col, row int) {
		if !buf.Touched(col, row) || buf.Get(col, row).Rune == ' ' {
			buf.SetFgOnly(col, row, tetherRune, RGBTether)
		}
	})
}

// statusLayer prints frame and run state under the canvas
type statusLayer struct{}

func (statusLayer) Render(ctx Context, scene Scene, buf *Buffer) {
	row := ctx.StatusRow()
	w, _ := buf.Size()
	for col := 0; col < w; col++ {
		buf.SetWithBg(col, row, ' ', RGBWhite, RGBStatusBar)
	}
	state := "stopped"
	switch {
	case scene.Running:
		state = "running"
	case scene.Paused:
		state = "paused"
	}
	line := fmt.Sprintf(" %s  frame %d  actors %d", state, scene.Frame, len(scene.Actors))
	if scene.Status != "" {
		line += "  " + scene.Status
	}
	buf.SetString(0, row, line, RGBWhite, RGBStatusBar)
}

// fillEllipse visits canvas cells inside an ellipse with radii given in cells
func fillEllipse(ctx Context, buf *Buffer, cx, cy, rx, ry float64, plot func(col, row int)) {
	ccol, crow := cx*ctx.ScaleX(), cy*ctx.ScaleY()
	if rx < 0.5 || ry < 0.5 {
		col, row := int(math.Floor(ccol)), int(math.Floor(crow))
		if col >= 0 && col < ctx.Cols && row >= 0 && row < ctx.CanvasRows {
			plot(col, row)
		}
		return
	}
	for row := int(math.Floor(crow - ry)); row <= int(math.Ceil(crow+ry)); row++ {
		if row < 0 || row >= ctx.CanvasRows {
			continue
		}
		for col := int(math.Floor(ccol - rx)); col <= int(math.Ceil(ccol+rx)); col++ {
			if col < 0 || col >= ctx.Cols {
				continue
			}
			dx := (float64(col) + 0.5 - ccol) / rx
			dy := (float64(row) + 0.5 - crow) / ry
			if dx*dx+dy*dy <= 1 {
				plot(col, row)
			}
		}
	}
}

// drawLine rasterizes a cell line with Bresenham, clipped to the canvas rows
func drawLine(ctx Context, x0, y0, x1, y1 int, plot func(col, row int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < ctx.Cols && y0 >= 0 && y0 < ctx.CanvasRows {
			plot(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
