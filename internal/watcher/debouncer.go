// Package watcher observes an analyzed root for filesystem events and
// drives incremental re-analysis. Debouncing is adapted from CodeMCP's
// BatchDebouncer: events are coalesced over a quiet window before the
// caller sees a batch, so a burst of saves (editor autosave, `go fmt`
// rewriting many files) triggers one re-index, not one per file.
package watcher

import (
	"sync"
	"time"
)

// EventType classifies a filesystem change.
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

// Event is one coalesced filesystem change.
type Event struct {
	Type EventType
	Path string
}

// BatchDebouncer collects events over a quiet window and emits them as one
// batch, deduplicating repeated events on the same path.
type BatchDebouncer struct {
	delay time.Duration
	emit  func([]Event)

	mu     sync.Mutex
	timer  *time.Timer
	events map[string]Event // path -> latest event, insertion order not preserved
	order  []string
}

// NewBatchDebouncer creates a debouncer that calls emit with the coalesced
// batch after delay has passed since the last Add.
func NewBatchDebouncer(delay time.Duration, emit func([]Event)) *BatchDebouncer {
	return &BatchDebouncer{
		delay:  delay,
		emit:   emit,
		events: make(map[string]Event),
	}
}

// Add records ev, resetting the quiet-window timer.
func (b *BatchDebouncer) Add(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, seen := b.events[ev.Path]; !seen {
		b.order = append(b.order, ev.Path)
	}
	b.events[ev.Path] = ev

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

func (b *BatchDebouncer) flush() {
	b.mu.Lock()
	order := b.order
	events := b.events
	b.order = nil
	b.events = make(map[string]Event)
	b.timer = nil
	b.mu.Unlock()

	if len(order) == 0 {
		return
	}
	batch := make([]Event, 0, len(order))
	for _, path := range order {
		batch = append(batch, events[path])
	}
	if b.emit != nil {
		b.emit(batch)
	}
}

// Flush immediately emits any pending batch rather than waiting for the
// quiet window to elapse, used on shutdown so no trailing change is lost.
func (b *BatchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()
	b.flush()
}

// Cancel discards any pending batch without emitting it.
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.order = nil
	b.events = make(map[string]Event)
}
