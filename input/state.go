package input

// DragState is the drag state machine position
type DragState uint8

const (
	DragIdle     DragState = iota // No pointer held over an actor
	DragPressed                   // Pointer held over an actor, movement still under threshold
	DragDragging                  // Movement exceeded threshold; release commits
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragPressed:
		return "pressed"
	case DragDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// ReleaseKind tells the engine what a pointer release amounted to
type ReleaseKind uint8

const (
	ReleaseNone   ReleaseKind = iota // No drag session was open
	ReleaseClick                     // Selection only, nothing to write
	ReleaseCommit                    // Final position must be written
)

func (k ReleaseKind) String() string {
	switch k {
	case ReleaseNone:
		return "none"
	case ReleaseClick:
		return "click"
	case ReleaseCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Session is the single open drag; at most one per Machine
type Session struct {
	ID       string
	OffsetX  float64 // Pointer minus displayed actor position at press
	OffsetY  float64
	OriginX  float64 // Pointer position at press
	OriginY  float64
	PreviewX float64 // Clamped live position, render only
	PreviewY float64
	Exceeded bool // Sticky once movement passes the threshold
}
