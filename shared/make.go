package shared

// Make returns a handle owning a heap copy of v, with a count of one.
func Make[T any](v T) *Handle[T] {
	return MakeWith(func(p *T) { *p = v })
}

// MakeWith allocates a zero T, lets init construct it in place and
// returns a handle owning it. A nil init keeps the zero value.
//
// The value and its control block share one allocation; the value is
// still released through DefaultDeleter before the block goes away.
func MakeWith[T any](init func(*T)) *Handle[T] {
	b := &inlineBlock[T]{}
	if init != nil {
		init(&b.value)
	}
	b.p = &b.value
	b.n = 1
	b.d = DefaultDeleter[T]{}
	return &Handle[T]{cb: &b.controlBlock}
}
