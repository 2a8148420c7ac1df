package shared

import (
	"fmt"
	"reflect"
)

// noCopy lets go vet's copylocks check flag handles copied by value,
// which would bypass the count.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Handle is a shared-ownership handle to a value of type T.
//
// The zero value is an empty handle. Handles are used through pointers;
// copying a Handle struct by value is a bug, use Clone instead.
//
// A Handle is not safe for concurrent use, and neither is a set of
// handles sharing one value.
type Handle[T any] struct {
	_  noCopy
	cb *controlBlock[T]
}

// Empty returns a handle that owns nothing.
func Empty[T any]() *Handle[T] {
	return &Handle[T]{}
}

// New takes sole ownership of p, to be released with DefaultDeleter.
// A nil p yields an empty handle. The caller must not release p itself
// or pass it to another owning constructor.
func New[T any](p *T) *Handle[T] {
	return &Handle[T]{cb: newControlBlock[T](p, nil)}
}

// NewWithDeleter is like New but releases p with d. A nil d means
// DefaultDeleter.
func NewWithDeleter[T any](p *T, d Deleter[T]) *Handle[T] {
	return &Handle[T]{cb: newControlBlock(p, d)}
}

// Clone returns a new handle sharing h's value. Cloning an empty or nil
// handle gives an empty handle.
func (h *Handle[T]) Clone() *Handle[T] {
	if h == nil || h.cb == nil {
		return &Handle[T]{}
	}
	h.cb.retain()
	return &Handle[T]{cb: h.cb}
}

// Assign makes h share src's value, releasing whatever h held before.
// Assigning a handle to itself does nothing. A nil src is treated as
// empty. h must not be nil.
func (h *Handle[T]) Assign(src *Handle[T]) {
	if h == src {
		return
	}
	h.release()
	if src == nil || src.cb == nil {
		return
	}
	h.cb = src.cb
	h.cb.retain()
}

// Move transfers h's value to a new handle and leaves h empty. The count
// is unchanged. Moving from a nil handle gives an empty handle.
func (h *Handle[T]) Move() *Handle[T] {
	if h == nil {
		return &Handle[T]{}
	}
	cb := h.cb
	h.cb = nil
	return &Handle[T]{cb: cb}
}

// MoveFrom releases h, then takes over src's value and leaves src empty.
// Moving a handle into itself does nothing. A nil src is treated as
// empty. h must not be nil.
func (h *Handle[T]) MoveFrom(src *Handle[T]) {
	if h == src {
		return
	}
	h.release()
	if src == nil {
		return
	}
	h.cb, src.cb = src.cb, nil
}

// Reset releases h's value and leaves h empty.
func (h *Handle[T]) Reset() {
	h.release()
}

// ResetTo releases h's value and takes ownership of p with a fresh
// count of one. p is released with the deleter h already had, or with
// DefaultDeleter if h was empty. ResetTo(nil) is Reset.
func (h *Handle[T]) ResetTo(p *T) {
	var d Deleter[T]
	if h.cb != nil {
		d = h.cb.d
	}
	h.ResetWithDeleter(p, d)
}

// ResetWithDeleter is ResetTo with an explicit deleter for p.
func (h *Handle[T]) ResetWithDeleter(p *T, d Deleter[T]) {
	h.release()
	h.cb = newControlBlock(p, d)
}

// Swap exchanges the values of h and other. Counts are unchanged.
// Neither handle may be nil.
func (h *Handle[T]) Swap(other *Handle[T]) {
	h.cb, other.cb = other.cb, h.cb
}

// Get returns the managed pointer, or nil if h is empty. The pointer is
// valid while h, or another owner of the value, stays non-empty.
func (h *Handle[T]) Get() *T {
	if h == nil || h.cb == nil {
		return nil
	}
	return h.cb.p
}

// Deref returns the managed pointer, or ErrNullDereference if h is empty.
func (h *Handle[T]) Deref() (*T, error) {
	p := h.Get()
	if p == nil {
		return nil, ErrNullDereference
	}
	return p, nil
}

// Value returns a copy of the managed value.
func (h *Handle[T]) Value() (T, error) {
	p, err := h.Deref()
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// Count returns the number of handles sharing h's value, or 0 if h is
// empty.
func (h *Handle[T]) Count() int {
	if h == nil || h.cb == nil {
		return 0
	}
	return h.cb.n
}

// IsEmpty reports whether h owns nothing.
func (h *Handle[T]) IsEmpty() bool {
	return h.Get() == nil
}

// Release drops h's reference. The last reference destroys the value.
// Release leaves h empty and may be called again safely, also on a nil
// handle.
func (h *Handle[T]) Release() {
	h.release()
}

func (h *Handle[T]) String() string {
	name := reflect.TypeOf((*T)(nil)).Elem().String()
	if h.IsEmpty() {
		return fmt.Sprintf("Handle[%s](empty)", name)
	}
	return fmt.Sprintf("Handle[%s](count=%d)", name, h.Count())
}

func (h *Handle[T]) release() {
	if h == nil {
		return
	}
	cb := h.cb
	if cb == nil {
		return
	}
	h.cb = nil
	cb.drop()
}
