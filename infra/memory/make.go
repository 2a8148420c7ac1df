package memory

import "sharedptr/shared"

// Make takes a value from pool, lets init fill it in and returns a handle
// that puts the value back when its last owner releases it.
func Make[T any](pool *Pool[T], init func(*T)) *shared.Handle[T] {
	return MakeWithDeleter[T](pool, pool, init)
}

// MakeWithDeleter is Make with a different release policy, typically a
// Retirer feeding the same pool.
//
// Ownership of the pooled value starts as soon as it leaves the pool: if
// init panics, the value goes back before the panic continues.
func MakeWithDeleter[T any](pool *Pool[T], d shared.Deleter[T], init func(*T)) *shared.Handle[T] {
	v := pool.Get()
	owned := false
	defer func() {
		if !owned {
			pool.Put(v)
		}
	}()
	if init != nil {
		init(v)
	}
	owned = true
	return shared.NewWithDeleter(v, d)
}
