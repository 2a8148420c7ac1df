package memory

import "sync/atomic"

// Retirer is a deleter that parks released values in a RetireRing
// instead of reusing them at once, so raw pointers taken inside a read
// section stay valid until the section ends.
//
// A value that does not fit in the ring is left to the garbage
// collector and counted as dropped.
type Retirer[T any] struct {
	ring    *RetireRing
	dropped atomic.Uint64
}

func NewRetirer[T any](ring *RetireRing) *Retirer[T] {
	return &Retirer[T]{ring: ring}
}

func (r *Retirer[T]) Delete(v *T) {
	if !r.ring.Enqueue(v) {
		r.dropped.Add(1)
	}
}

// Dropped reports how many values overflowed the ring.
func (r *Retirer[T]) Dropped() uint64 {
	return r.dropped.Load()
}
