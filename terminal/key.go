package terminal

import "github.com/gdamore/tcell/v2"

// Command is a host action bound to a key
type Command uint8

const (
	CmdNone Command = iota
	CmdToggleRun
	CmdReset
	CmdQuit
	CmdBackendDraw
	CmdBackendPhysics
	CmdReload
	CmdSave
	CmdRedraw
)

func (c Command) String() string {
	switch c {
	case CmdToggleRun:
		return "toggle"
	case CmdReset:
		return "reset"
	case CmdQuit:
		return "quit"
	case CmdBackendDraw:
		return "backend-draw"
	case CmdBackendPhysics:
		return "backend-physics"
	case CmdReload:
		return "reload"
	case CmdSave:
		return "save"
	case CmdRedraw:
		return "redraw"
	default:
		return "none"
	}
}

// Keymap binds runes and special keys to commands
type Keymap struct {
	runes map[rune]Command
	keys  map[tcell.Key]Command
}

// DefaultKeymap returns the stage bindings
func DefaultKeymap() *Keymap {
	return &Keymap{
		runes: map[rune]Command{
			' ': CmdToggleRun,
			'r': CmdReset,
			'q': CmdQuit,
			'd': CmdBackendDraw,
			'p': CmdBackendPhysics,
			'l': CmdReload,
			's': CmdSave,
		},
		keys: map[tcell.Key]Command{
			tcell.KeyEscape: CmdQuit,
			tcell.KeyCtrlC:  CmdQuit,
			tcell.KeyCtrlL:  CmdRedraw,
		},
	}
}

// Bind adds or replaces a rune binding
func (k *Keymap) Bind(r rune, c Command) {
	k.runes[r] = c
}

// Lookup returns the command for a key event, CmdNone when unbound
func (k *Keymap) Lookup(ev *tcell.EventKey) Command {
	if ev.Key() == tcell.KeyRune {
		return k.runes[ev.Rune()]
	}
	return k.keys[ev.Key()]
}
