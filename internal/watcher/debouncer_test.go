package watcher

import (
	"sync"
	"testing"
	"time"
)

func TestBatchDebouncerCoalescesRepeatedPath(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event

	d := NewBatchDebouncer(20*time.Millisecond, func(b []Event) {
		mu.Lock()
		batches = append(batches, b)
		mu.Unlock()
	})

	d.Add(Event{Type: EventWrite, Path: "a.go"})
	d.Add(Event{Type: EventWrite, Path: "a.go"})
	d.Add(Event{Type: EventWrite, Path: "a.go"})

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected exactly one emitted batch, got %d", len(batches))
	}
	if len(batches[0]) != 1 {
		t.Fatalf("expected one coalesced event, got %d", len(batches[0]))
	}
}

func TestBatchDebouncerPreservesInsertionOrderAcrossDistinctPaths(t *testing.T) {
	var mu sync.Mutex
	var batch []Event

	d := NewBatchDebouncer(20*time.Millisecond, func(b []Event) {
		mu.Lock()
		batch = b
		mu.Unlock()
	})

	d.Add(Event{Type: EventCreate, Path: "c.go"})
	d.Add(Event{Type: EventWrite, Path: "a.go"})
	d.Add(Event{Type: EventRemove, Path: "b.go"})

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batch) != 3 {
		t.Fatalf("expected 3 events, got %d", len(batch))
	}
	want := []string{"c.go", "a.go", "b.go"}
	for i, ev := range batch {
		if ev.Path != want[i] {
			t.Errorf("event %d: expected path %s, got %s", i, want[i], ev.Path)
		}
	}
}

func TestBatchDebouncerFlushEmitsImmediately(t *testing.T) {
	var mu sync.Mutex
	var calls int

	d := NewBatchDebouncer(time.Hour, func(b []Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	d.Add(Event{Type: EventWrite, Path: "a.go"})
	d.Flush()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected Flush to emit immediately, got %d calls", calls)
	}
}

func TestBatchDebouncerCancelDiscardsPendingBatch(t *testing.T) {
	var mu sync.Mutex
	var calls int

	d := NewBatchDebouncer(20*time.Millisecond, func(b []Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	d.Add(Event{Type: EventWrite, Path: "a.go"})
	d.Cancel()

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Fatalf("expected Cancel to suppress emission, got %d calls", calls)
	}
}

func TestBatchDebouncerLatestEventWins(t *testing.T) {
	var mu sync.Mutex
	var batch []Event

	d := NewBatchDebouncer(20*time.Millisecond, func(b []Event) {
		mu.Lock()
		batch = b
		mu.Unlock()
	})

	d.Add(Event{Type: EventCreate, Path: "a.go"})
	d.Add(Event{Type: EventRemove, Path: "a.go"})

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batch) != 1 || batch[0].Type != EventRemove {
		t.Fatalf("expected latest event (Remove) to win, got %+v", batch)
	}
}
