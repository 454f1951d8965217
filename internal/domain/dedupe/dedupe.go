// Package dedupe tracks which scenario hashes have already been built so
// identical requests resolve to the first stored scenario.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Index maps scenario hashes to the id of the scenario built for them.
type Index interface {
	// Lookup returns the scenario id recorded for hash.
	Lookup(ctx context.Context, hash string) (string, bool)

	// Record atomically stores hash -> id unless hash is already known.
	// When it is, the existing id is returned with seen set to true.
	Record(ctx context.Context, hash, id string) (existing string, seen bool)

	// Forget removes hash, for example after its scenario was deleted or
	// failed to persist.
	Forget(ctx context.Context, hash string)

	Size() int64
}

// node is one entry of the insertion-ordered list, newest first.
type node struct {
	hash string
	id   string
	next *node
}

func (n *node) reset() {
	n.hash = ""
	n.id = ""
	n.next = nil
}

// inMemoryIndex implements Index with a map and a singly linked list.
// Bounded mode (maxSize > 0) evicts the oldest hash when full and recycles
// nodes through a sync.Pool. Unbounded mode keeps only the map.
type inMemoryIndex struct {
	mu       sync.RWMutex
	entries  map[string]*node
	head     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryIndex creates a new in-memory index with configuration options.
func NewInMemoryIndex(opts ...Option) Index {
	d := &inMemoryIndex{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.entries = make(map[string]*node)
	d.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return d
}

func (d *inMemoryIndex) Lookup(_ context.Context, hash string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n, ok := d.entries[hash]
	if !ok {
		return "", false
	}
	return n.id, true
}

func (d *inMemoryIndex) Record(_ context.Context, hash, id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, exists := d.entries[hash]; exists {
		return n.id, true
	}

	if d.maxSize > 0 && len(d.entries) >= d.maxSize {
		d.evictOldest()
	}

	n := d.nodePool.Get().(*node)
	n.hash = hash
	n.id = id
	if d.maxSize > 0 {
		n.next = d.head
		d.head = n
	}
	d.entries[hash] = n
	d.size.Add(1)
	return id, false
}

func (d *inMemoryIndex) Forget(_ context.Context, hash string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.entries[hash]
	if !exists {
		return
	}
	delete(d.entries, hash)

	if d.maxSize > 0 {
		if d.head == n {
			d.head = n.next
		} else {
			current := d.head
			for current != nil && current.next != n {
				current = current.next
			}
			if current != nil {
				current.next = n.next
			}
		}
	}

	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}

// evictOldest removes the tail of the list. Must be called with d.mu held.
func (d *inMemoryIndex) evictOldest() {
	if d.head == nil {
		return
	}

	var prev *node
	current := d.head
	for current.next != nil {
		prev = current
		current = current.next
	}

	if prev == nil {
		d.head = nil
	} else {
		prev.next = nil
	}
	delete(d.entries, current.hash)
	current.reset()
	d.nodePool.Put(current)
	d.size.Add(-1)
}

func (d *inMemoryIndex) Size() int64 {
	return d.size.Load()
}
