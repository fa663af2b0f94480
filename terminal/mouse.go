package terminal

import "github.com/gdamore/tcell/v2"

// MouseButton names the button behind a mouse event
type MouseButton uint8

const (
	MouseBtnNone MouseButton = iota
	MouseBtnLeft
	MouseBtnMiddle
	MouseBtnRight
	MouseBtnWheelUp
	MouseBtnWheelDown
)

// MouseAction is the transition a mouse event reports
type MouseAction uint8

const (
	MouseActionNone MouseAction = iota
	MouseActionPress
	MouseActionRelease
	MouseActionMove
	MouseActionDrag
)

var (
	buttonNames = [...]string{"None", "Left", "Middle", "Right", "WheelUp", "WheelDown"}
	actionNames = [...]string{"None", "Press", "Release", "Move", "Drag"}
)

func (b MouseButton) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return buttonNames[0]
}

func (a MouseAction) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return actionNames[0]
}

// MouseEvent is a transition-level mouse event in cell coordinates
type MouseEvent struct {
	Button MouseButton
	Action MouseAction
	Col    int
	Row    int
}

// MouseTracker turns tcell's button-state reports into press/drag/release transitions
// tcell reports which buttons are held on every event; the tracker remembers the last mask
type MouseTracker struct {
	held tcell.ButtonMask
}

// Translate converts one tcell mouse event; Action is None for unreported motion
func (t *MouseTracker) Translate(ev *tcell.EventMouse) MouseEvent {
	col, row := ev.Position()
	buttons := ev.Buttons()
	out := MouseEvent{Col: col, Row: row}

	switch {
	case buttons&tcell.WheelUp != 0:
		out.Button, out.Action = MouseBtnWheelUp, MouseActionPress
		return out
	case buttons&tcell.WheelDown != 0:
		out.Button, out.Action = MouseBtnWheelDown, MouseActionPress
		return out
	}

	buttons &= tcell.Button1 | tcell.Button2 | tcell.Button3
	prev := t.held
	t.held = buttons

	switch {
	case buttons != 0 && prev == 0:
		out.Button, out.Action = buttonOf(buttons), MouseActionPress
	case buttons == 0 && prev != 0:
		out.Button, out.Action = buttonOf(prev), MouseActionRelease
	case buttons != 0:
		out.Button, out.Action = buttonOf(buttons), MouseActionDrag
	default:
		out.Action = MouseActionMove
	}
	return out
}

// Held reports whether any button is currently down
func (t *MouseTracker) Held() bool {
	return t.held != 0
}

// Reset forgets held buttons, e.g. after focus loss
func (t *MouseTracker) Reset() {
	t.held = 0
}

func buttonOf(m tcell.ButtonMask) MouseButton {
	switch {
	case m&tcell.Button1 != 0:
		return MouseBtnLeft
	case m&tcell.Button2 != 0:
		// tcell numbers the right button 2 and the middle 3
		return MouseBtnRight
	case m&tcell.Button3 != 0:
		return MouseBtnMiddle
	default:
		return MouseBtnNone
	}
}
