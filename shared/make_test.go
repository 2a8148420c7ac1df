package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeWith_ConstructsInPlace(t *testing.T) {
	alive := 0
	var seen *counter
	h := MakeWith(func(c *counter) {
		*c = newCounter(&alive, 11)
		seen = c
	})

	assert.Same(t, seen, h.Get())
	assert.Equal(t, 11, h.Get().v)
	assert.Equal(t, 1, h.Count())
	assert.Equal(t, 1, alive)

	h.Release()
	assert.Equal(t, 0, alive)
	requireEmpty(t, h)
}

func TestMakeWith_NilInit(t *testing.T) {
	h := MakeWith[struct{ A, B int }](nil)
	defer h.Release()
	require.NotNil(t, h.Get())
	assert.Zero(t, *h.Get())
}

func TestMakeWith_InitPanicOwnsNothing(t *testing.T) {
	assert.PanicsWithValue(t, "bad args", func() {
		MakeWith(func(*int) { panic("bad args") })
	})
}

func TestMake_SeparateAllocations(t *testing.T) {
	a := Make(1)
	defer a.Release()
	b := Make(1)
	defer b.Release()

	assert.NotSame(t, a.Get(), b.Get())
	*a.Get() = 2
	assert.Equal(t, 1, *b.Get())
}

func TestMake_CopiesArgument(t *testing.T) {
	v := 5
	h := Make(v)
	defer h.Release()
	v = 6
	assert.Equal(t, 5, *h.Get())
}
