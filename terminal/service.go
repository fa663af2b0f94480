package terminal

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/spritestage/core"
)

// TerminalService manages screen lifecycle and input polling
type TerminalService struct {
	screen  tcell.Screen
	eventCh chan tcell.Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewService wraps screen; nil creates the default terminal screen on Start
func NewService(screen tcell.Screen) *TerminalService {
	return &TerminalService{
		screen:  screen,
		eventCh: make(chan tcell.Event, 256),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Name implements service.Service
func (s *TerminalService) Name() string {
	return "terminal"
}

// Dependencies implements service.Service
func (s *TerminalService) Dependencies() []string {
	return nil
}

// Start initializes the screen, enables mouse reporting and launches input polling
func (s *TerminalService) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if s.screen == nil {
		scr, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal screen: %w", err)
		}
		s.screen = scr
	}
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	s.screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	s.screen.HideCursor()
	core.RegisterCrashTerminal(s.screen)

	s.running = true
	core.Go(s.pollLoop)
	return nil
}

// pollLoop reads input events until stop signal
func (s *TerminalService) pollLoop() {
	defer close(s.doneCh)

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok {
			select {
			case <-s.stopCh:
				return
			default:
			}
		}

		select {
		case s.eventCh <- ev:
		case <-s.stopCh:
			return
		}
	}
}

// Stop signals stop and restores the terminal
func (s *TerminalService) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)

	// Interrupt unblocks PollEvent
	_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	<-s.doneCh

	core.RegisterCrashTerminal(nil)
	s.screen.Fini()
	return nil
}

// Screen returns the wrapped screen
func (s *TerminalService) Screen() tcell.Screen {
	return s.screen
}

// Events returns the input event channel
func (s *TerminalService) Events() <-chan tcell.Event {
	return s.eventCh
}
