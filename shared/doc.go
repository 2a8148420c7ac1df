// Package shared provides Handle, a reference-counted shared-ownership
// handle for a heap-allocated value.
//
// Several handles may co-own one value. Each non-empty handle points at a
// control block holding the managed pointer, the strong count and the
// deleter that releases the value. The value is destroyed exactly once,
// when the last co-owner releases it.
//
// Go has no destructors, so every acquisition (New, Make, Clone, ...) is
// paired with a Release by its owner, usually through defer:
//
//	h := shared.Make(42)
//	defer h.Release()
//
// Handles are single-threaded: the count is a plain integer and none of
// the operations synchronize. Only strong references exist, so two values
// that hold handles to each other are never reclaimed.
package shared
