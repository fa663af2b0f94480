package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

var (
	ErrDuplicate = errors.New("service already registered")
	ErrUnknown   = errors.New("unregistered dependency")
	ErrCycle     = errors.New("circular dependency")
)

// Hub owns the process services, starting them dependencies first and stopping in reverse
type Hub struct {
	mu       sync.Mutex
	services map[string]Service
	order    []string // Cached start order; reset by Register
	running  []string // Started services, in start order
	logger   *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		services: make(map[string]Service),
		logger:   logger,
	}
}

// Register adds svc under its name
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, dup := h.services[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	h.services[name] = svc
	h.order = nil
	return nil
}

// Get looks up a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	svc, ok := h.services[name]
	return svc, ok
}

// StartAll starts every service in order; a failure stops whatever already started
func (h *Hub) StartAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	order, err := h.orderLocked()
	if err != nil {
		return err
	}
	h.running = h.running[:0]
	for _, name := range order {
		if err := h.services[name].Start(ctx); err != nil {
			h.stopRunningLocked()
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.running = append(h.running, name)
		h.logger.Debug("service started", "service", name)
	}
	return nil
}

// StopAll stops running services in reverse start order, logging failures
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopRunningLocked()
}

func (h *Hub) stopRunningLocked() {
	for _, name := range slices.Backward(h.running) {
		if err := h.services[name].Stop(); err != nil {
			h.logger.Warn("service stop failed", "service", name, "error", err)
		}
	}
	h.running = nil
}

// Order returns the start order
func (h *Hub) Order() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	order, err := h.orderLocked()
	return slices.Clone(order), err
}

func (h *Hub) orderLocked() ([]string, error) {
	if h.order != nil {
		return h.order, nil
	}
	order, err := h.resolve()
	if err != nil {
		return nil, err
	}
	h.order = order
	return order, nil
}

// resolve orders services depth-first so each follows its dependencies
// Names and dependency lists are visited sorted, making the order deterministic
func (h *Hub) resolve() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	mark := make(map[string]int, len(h.services))
	order := make([]string, 0, len(h.services))

	var visit func(name string) error
	visit = func(name string) error {
		switch mark[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w at %s", ErrCycle, name)
		}
		mark[name] = visiting
		deps := slices.Sorted(slices.Values(h.services[name].Dependencies()))
		for _, dep := range deps {
			if _, ok := h.services[dep]; !ok {
				return fmt.Errorf("service %s: %w: %s", name, ErrUnknown, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		mark[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(h.services)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
