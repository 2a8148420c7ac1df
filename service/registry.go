package service

import (
	"sort"

	"github.com/pkg/errors"

	"sharedptr/shared"
)

// Opener creates the resource behind a registry key.
type Opener[T any] func(key string) (*shared.Handle[T], error)

// Registry hands out shared handles to named resources, opening each
// one on first use. It keeps its own reference to every open resource
// until Evict or Close, so borrowers can come and go without reopening.
//
// It is not safe for concurrent use.
type Registry[T any] struct {
	open    Opener[T]
	entries map[string]*shared.Handle[T]
}

func NewRegistry[T any](open Opener[T]) *Registry[T] {
	return &Registry[T]{
		open:    open,
		entries: make(map[string]*shared.Handle[T]),
	}
}

// Acquire returns a new handle to key's resource. The caller owns it and
// must Release it.
func (r *Registry[T]) Acquire(key string) (*shared.Handle[T], error) {
	h, ok := r.entries[key]
	if !ok {
		var err error
		h, err = r.open(key)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", key)
		}
		if h.IsEmpty() {
			return nil, errors.Errorf("open %s: no resource", key)
		}
		r.entries[key] = h
	}
	return h.Clone(), nil
}

// Owners returns how many handles share key's resource, the registry's
// own reference included. It is 0 for unknown keys.
func (r *Registry[T]) Owners(key string) int {
	return r.entries[key].Count()
}

// Evict drops the registry's reference to key. The resource is released
// once every borrower has released theirs.
func (r *Registry[T]) Evict(key string) bool {
	h, ok := r.entries[key]
	if !ok {
		return false
	}
	delete(r.entries, key)
	h.Release()
	return true
}

func (r *Registry[T]) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry[T]) Len() int {
	return len(r.entries)
}

// Close evicts every key.
func (r *Registry[T]) Close() {
	for _, k := range r.Keys() {
		r.Evict(k)
	}
}
