package service

import "context"

// Service defines the lifecycle interface for the stage's long-lived subsystems
// Services own background resources: the frame scheduler, audio output, the HTTP
// control surface, project file watching and autosave
//
// Lifecycle:
//  1. Construction (via factory)
//  2. Start(ctx) - launch background goroutines; ctx ends with the process
//  3. [runtime operation]
//  4. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Start before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Start begins service operation
	Start(ctx context.Context) error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}

// Func adapts a pair of closures into a Service
type Func struct {
	ID      string
	Deps    []string
	OnStart func(ctx context.Context) error
	OnStop  func() error
}

func (f *Func) Name() string           { return f.ID }
func (f *Func) Dependencies() []string { return f.Deps }

func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

func (f *Func) Stop() error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop()
}
