package memory

import (
	"sync"
	"sync/atomic"
)

// Pool is a typed object pool.
// It is type-safe for normal use, but can also participate
// in epoch-based reclamation via PutAny.
type Pool[T any] struct {
	p     *sync.Pool
	reset func(*T)

	gets atomic.Uint64
	puts atomic.Uint64
}

// PoolStats counts traffic through a Pool.
type PoolStats struct {
	Gets uint64
	Puts uint64
}

// NewPool builds a pool that allocates with ctor. reset clears a value
// before it is pooled again; nil means zeroing it.
func NewPool[T any](ctor func() *T, reset func(*T)) *Pool[T] {
	if reset == nil {
		reset = func(v *T) {
			var zero T
			*v = zero
		}
	}
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() *T {
	p.gets.Add(1)
	return p.p.Get().(*T)
}

func (p *Pool[T]) Put(v *T) {
	p.reset(v)
	p.puts.Add(1)
	p.p.Put(v)
}

// PutAny allows Pool[T] to satisfy ReclaimablePool.
// This is an explicit, safe adapter between typed and erased worlds.
func (p *Pool[T]) PutAny(v any) {
	obj, ok := v.(*T)
	if !ok {
		panic("memory.Pool: PutAny received wrong type")
	}
	p.Put(obj)
}

// Delete lets the pool act as the deleter of handles built by Make.
func (p *Pool[T]) Delete(v *T) {
	p.Put(v)
}

func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{Gets: p.gets.Load(), Puts: p.puts.Load()}
}
