package shared

// controlBlock is shared by every handle that co-owns one allocation.
// While live, p is non-nil and n >= 1.
type controlBlock[T any] struct {
	p *T
	n int
	d Deleter[T]
}

func newControlBlock[T any](p *T, d Deleter[T]) *controlBlock[T] {
	if p == nil {
		return nil
	}
	return &controlBlock[T]{p: p, n: 1, d: orDefault(d)}
}

func (cb *controlBlock[T]) retain() {
	cb.n++
}

// drop removes one reference. The last reference destroys the value
// before the block itself is cleared.
func (cb *controlBlock[T]) drop() {
	cb.n--
	switch {
	case cb.n > 0:
		return
	case cb.n < 0:
		panic("shared: control block released too many times")
	}
	cb.d.Delete(cb.p)
	cb.p, cb.d = nil, nil
}

// inlineBlock keeps the value next to its control block so that Make
// needs a single allocation.
type inlineBlock[T any] struct {
	controlBlock[T]
	value T
}
