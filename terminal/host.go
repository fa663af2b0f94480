package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/spritestage/render"
)

// Pointer receives pointer events in canvas coordinates
type Pointer interface {
	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp(x, y float64)
}

// Host translates terminal events into pointer calls and commands
// Only the left button drives the pointer; a press outside the canvas is ignored
type Host struct {
	pointer   Pointer
	keymap    *Keymap
	tracker   MouseTracker
	canvasW   float64
	canvasH   float64
	onCommand func(Command) bool
	dragging  bool
	lastX     float64
	lastY     float64
}

// NewHost creates a host for a canvas of w x h units
// onCommand returns false to stop the host loop
func NewHost(p Pointer, w, h float64, keymap *Keymap, onCommand func(Command) bool) *Host {
	if keymap == nil {
		keymap = DefaultKeymap()
	}
	if onCommand == nil {
		onCommand = func(c Command) bool { return c != CmdQuit }
	}
	return &Host{
		pointer:   p,
		keymap:    keymap,
		canvasW:   w,
		canvasH:   h,
		onCommand: onCommand,
	}
}

// Handle dispatches one event against a screen of cols x rows cells
// Returns false when the host should exit
func (h *Host) Handle(ev tcell.Event, cols, rows int) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if cmd := h.keymap.Lookup(ev); cmd != CmdNone {
			return h.onCommand(cmd)
		}
	case *tcell.EventMouse:
		h.handleMouse(h.tracker.Translate(ev), render.NewContext(h.canvasW, h.canvasH, cols, rows))
	case *tcell.EventResize:
		return h.onCommand(CmdRedraw)
	case *tcell.EventFocus:
		if !ev.Focused && h.dragging {
			// The release will never arrive; end the drag where it stands
			h.tracker.Reset()
			h.dragging = false
			h.pointer.PointerUp(h.lastX, h.lastY)
		}
	}
	return true
}

func (h *Host) handleMouse(m MouseEvent, ctx render.Context) {
	if m.Button != MouseBtnLeft {
		return
	}
	x, y := pointAt(ctx, m.Col, m.Row)
	h.lastX, h.lastY = x, y

	switch m.Action {
	case MouseActionPress:
		if _, _, ok := ctx.ToCanvas(m.Col, m.Row); !ok {
			return
		}
		h.dragging = true
		h.pointer.PointerDown(x, y)
	case MouseActionDrag:
		if h.dragging {
			h.pointer.PointerMove(x, y)
		}
	case MouseActionRelease:
		if h.dragging {
			h.dragging = false
			h.pointer.PointerUp(x, y)
		}
	}
}

// pointAt maps a cell to canvas units without bounds checks; drags clamp later
func pointAt(ctx render.Context, col, row int) (float64, float64) {
	return (float64(col) + 0.5) / ctx.ScaleX(), (float64(row) + 0.5) / ctx.ScaleY()
}
