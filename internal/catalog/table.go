package catalog

import "sync"

// Table is a sparse association table keyed by generational AssetID.
// Values for a retired generation are unreachable even before they are
// purged, because lookups check the stored generation against the key.
//
// Each category loader owns one Table for its aggregates and is the only
// writer; the lock exists for readers on other goroutines (the aggregator
// and downstream consumers after publication).
type Table[T any] struct {
	mu      sync.RWMutex
	entries map[uint32]tableEntry[T]
}

type tableEntry[T any] struct {
	gen   uint32
	value T
}

// NewTable creates an empty sparse table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{entries: make(map[uint32]tableEntry[T])}
}

// Put stores value under id, replacing any previous value for the slot
// regardless of generation. A slot holds at most one live entry.
func (t *Table[T]) Put(id AssetID, value T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[id.Slot] = tableEntry[T]{gen: id.Gen, value: value}
}

// Get returns the value stored for id. A mismatched generation reads as
// absent.
func (t *Table[T]) Get(id AssetID) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[id.Slot]
	if !ok || e.gen != id.Gen {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Delete removes the entry for id's slot if the generation matches.
func (t *Table[T]) Delete(id AssetID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[id.Slot]; ok && e.gen == id.Gen {
		delete(t.entries, id.Slot)
	}
}

// DeleteSlot removes whatever occupies id's slot, regardless of
// generation. Used when purging a retired asset whose id has already
// been bumped.
func (t *Table[T]) DeleteSlot(slot uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, slot)
}

// Len reports the number of stored entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
