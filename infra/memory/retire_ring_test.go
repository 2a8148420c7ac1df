package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetireRingBasic(t *testing.T) {
	r := NewRetireRing(4)
	o1 := &slot{ID: 1}
	o2 := &slot{ID: 2}

	assert.True(t, r.Enqueue(o1))
	assert.True(t, r.Enqueue(o2))
	assert.Equal(t, 2, r.Len())
	assert.Same(t, o1, r.Dequeue())
	assert.Same(t, o2, r.Dequeue())
	assert.Nil(t, r.Dequeue())
}

func TestRetireRingFull(t *testing.T) {
	r := NewRetireRing(2)
	assert.True(t, r.Enqueue(1))
	assert.True(t, r.Enqueue(2))
	assert.False(t, r.Enqueue(3))
	assert.Equal(t, "RetireRing{len=2, cap=2}", r.String())
}

func TestRetireRingSizeMustBePowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { NewRetireRing(3) })
	assert.Panics(t, func() { NewRetireRing(0) })
}
