package shared

import (
	"io"

	"github.com/pkg/errors"
)

// Deleter releases a managed value once its last owner lets go of it.
// A deleter must accept every pointer the owning handle was built with.
type Deleter[T any] interface {
	Delete(p *T)
}

// DeleterFunc adapts a plain function to Deleter.
type DeleterFunc[T any] func(p *T)

func (f DeleterFunc[T]) Delete(p *T) { f(p) }

// Destroyer is implemented by values that need explicit teardown when
// released by DefaultDeleter.
type Destroyer interface {
	Destroy()
}

// DefaultDeleter calls Destroy if *T implements Destroyer, then zeroes
// the value so nothing it referenced is kept reachable through stale
// raw pointers.
type DefaultDeleter[T any] struct{}

func (DefaultDeleter[T]) Delete(p *T) {
	if d, ok := any(p).(Destroyer); ok {
		d.Destroy()
	}
	var zero T
	*p = zero
}

type closeDeleter[T any, P interface {
	*T
	io.Closer
}] struct {
	onErr func(error)
}

func (c closeDeleter[T, P]) Delete(p *T) {
	if err := P(p).Close(); err != nil && c.onErr != nil {
		c.onErr(errors.Wrapf(err, "close %T", p))
	}
}

// Closer returns a deleter that closes the managed value. Close errors
// are passed to onErr, which may be nil.
func Closer[T any, P interface {
	*T
	io.Closer
}](onErr func(error)) Deleter[T] {
	return closeDeleter[T, P]{onErr: onErr}
}

func orDefault[T any](d Deleter[T]) Deleter[T] {
	if d == nil {
		return DefaultDeleter[T]{}
	}
	return d
}
