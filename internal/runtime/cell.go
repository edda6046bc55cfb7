package runtime

import "sync/atomic"

// Cell is an atomically-swappable value for single-producer handoff:
// a background poller stores, the host's render call loads. No torn
// reads, no lock held across either side.
type Cell[T any] struct {
	p atomic.Pointer[T]
}

// Store publishes a new value.
func (c *Cell[T]) Store(v T) {
	c.p.Store(&v)
}

// Load returns the most recently stored value. ok is false before
// the first Store.
func (c *Cell[T]) Load() (v T, ok bool) {
	p := c.p.Load()
	if p == nil {
		return v, false
	}
	return *p, true
}
