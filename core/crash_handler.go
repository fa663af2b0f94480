package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

// Finalizer restores an output device before the crash report is printed
// tcell.Screen satisfies it
type Finalizer interface {
	Fini()
}

var (
	crashMu       sync.Mutex
	crashTerminal Finalizer
	crashOut      io.Writer = os.Stderr
	crashExit               = os.Exit
)

// RegisterCrashTerminal sets the screen restored on crash; nil clears it
func RegisterCrashTerminal(f Finalizer) {
	crashMu.Lock()
	crashTerminal = f
	crashMu.Unlock()
}

// SetCrashOutput redirects the crash report and exit, for tests
// Returns a function restoring the previous values
func SetCrashOutput(w io.Writer, exit func(int)) (restore func()) {
	crashMu.Lock()
	prevOut, prevExit := crashOut, crashExit
	crashOut, crashExit = w, exit
	crashMu.Unlock()
	return func() {
		crashMu.Lock()
		crashOut, crashExit = prevOut, prevExit
		crashMu.Unlock()
	}
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	term, out, exit := crashTerminal, crashOut, crashExit
	crashMu.Unlock()

	if term != nil {
		term.Fini()
	}

	fmt.Fprintf(out, "\n\x1b[31mCRASH DETECTED: %v\x1b[0m\n", r)
	fmt.Fprintf(out, "Stack Trace:\n%s\n", debug.Stack())

	exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
