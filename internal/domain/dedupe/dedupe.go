// Package dedupe tracks submission ids so a skill row is ingested at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50000

// Deduper records seen submission ids.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it can be submitted again. Used when a
	// submission was recorded but never reached the queue.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of ids currently remembered.
	Size() int64
}

// inMemoryDeduper remembers ids in a map. In bounded mode a FIFO ring of
// insertion order evicts the oldest id once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int // <= 0 means unbounded
	seen    map[string]int
	order   []string // ring of ids, "" marks a hole left by Unrecord
	head    int      // oldest slot
	used    int      // occupied slots, holes included
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.order = make([]string, d.maxSize)
	}
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[id] = -1
		return false
	}

	if d.used == d.maxSize {
		d.evictOldest()
	}
	slot := (d.head + d.used) % d.maxSize
	d.order[slot] = id
	d.seen[id] = slot
	d.used++
	return false
}

// Unrecord implements Deduper.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if slot >= 0 {
		d.order[slot] = ""
		d.compact()
	}
}

// Size implements Deduper.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// evictOldest drops the id at head. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	if d.live(d.head) {
		delete(d.seen, d.order[d.head])
	}
	d.order[d.head] = ""
	d.head = (d.head + 1) % d.maxSize
	d.used--
	d.compact()
}

// compact skips holes at both ends of the ring. Must be called with d.mu held.
func (d *inMemoryDeduper) compact() {
	for d.used > 0 {
		if d.live(d.head) {
			break
		}
		d.order[d.head] = ""
		d.head = (d.head + 1) % d.maxSize
		d.used--
	}
	for d.used > 0 {
		tail := (d.head + d.used - 1) % d.maxSize
		if d.live(tail) {
			break
		}
		d.order[tail] = ""
		d.used--
	}
}

// live reports whether slot still holds a remembered id.
func (d *inMemoryDeduper) live(slot int) bool {
	got, ok := d.seen[d.order[slot]]
	return ok && got == slot
}
