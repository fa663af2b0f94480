package event

import (
	"sync/atomic"
	"time"

	"github.com/lixenwraith/spritestage/parameter"
)

// Severity classifies a diagnostic entry
type Severity uint8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// String returns the lowercase severity name
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets severities serialize by name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entry is a single diagnostic line; observability only, never control flow
type Entry struct {
	Frame    int64     `json:"frame"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Time     time.Time `json:"time"`
}

// Log is a lock-free MPSC ring buffer of diagnostics
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK
//   - Consume: Single consumer
//   - Peek: Read-only inspection, may miss slots still being written
//
// Overflow: Oldest entries overwritten when full
type Log struct {
	entries   [parameter.DiagnosticCapacity]Entry
	published [parameter.DiagnosticCapacity]atomic.Bool // True = slot fully written
	head      atomic.Uint64                             // Read index
	tail      atomic.Uint64                             // Write index
	dropped   atomic.Uint64                             // Entries overwritten before being read
}

func NewLog() *Log {
	return &Log{}
}

// Push adds an entry using lock-free CAS with published flags pattern
func (l *Log) Push(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	for {
		currentTail := l.tail.Load()
		nextTail := currentTail + 1

		if l.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & parameter.DiagnosticMask

			l.published[idx].Store(false)
			l.entries[idx] = e
			l.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread entries
			currentHead := l.head.Load()
			if nextTail-currentHead > parameter.DiagnosticCapacity {
				if l.head.CompareAndSwap(currentHead, nextTail-parameter.DiagnosticCapacity) {
					l.dropped.Add(nextTail - parameter.DiagnosticCapacity - currentHead)
				}
			}
			return
		}
	}
}

// Add is shorthand for Push with the current time
func (l *Log) Add(frame int64, sev Severity, msg string) {
	l.Push(Entry{Frame: frame, Message: msg, Severity: sev, Time: time.Now()})
}

// Consume returns all pending entries in FIFO order and advances head
func (l *Log) Consume() []Entry {
	for {
		currentHead := l.head.Load()
		currentTail := l.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		maxAvailable := currentTail - currentHead
		if maxAvailable > parameter.DiagnosticCapacity {
			maxAvailable = parameter.DiagnosticCapacity
			currentHead = currentTail - parameter.DiagnosticCapacity
		}

		result := make([]Entry, 0, maxAvailable)
		for i := uint64(0); i < maxAvailable; i++ {
			idx := (currentHead + i) & parameter.DiagnosticMask
			if !l.published[idx].Load() {
				break // Writer incomplete
			}
			result = append(result, l.entries[idx])
		}

		newHead := currentHead + uint64(len(result))
		if l.head.CompareAndSwap(currentHead, newHead) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Peek returns pending entries without consuming them
func (l *Log) Peek() []Entry {
	head := l.head.Load()
	tail := l.tail.Load()
	if tail <= head {
		return nil
	}
	n := tail - head
	if n > parameter.DiagnosticCapacity {
		head = tail - parameter.DiagnosticCapacity
		n = parameter.DiagnosticCapacity
	}

	result := make([]Entry, 0, n)
	for i := uint64(0); i < n; i++ {
		idx := (head + i) & parameter.DiagnosticMask
		if !l.published[idx].Load() {
			break
		}
		result = append(result, l.entries[idx])
	}
	return result
}

// Len returns approximate pending entry count
func (l *Log) Len() int {
	head := l.head.Load()
	tail := l.tail.Load()
	if tail <= head {
		return 0
	}
	diff := int(tail - head)
	if diff > parameter.DiagnosticCapacity {
		return parameter.DiagnosticCapacity
	}
	return diff
}

// Dropped returns how many entries were discarded by overflow
func (l *Log) Dropped() uint64 {
	return l.dropped.Load()
}

// Reset discards all pending entries
func (l *Log) Reset() {
	l.head.Store(l.tail.Load())
}
