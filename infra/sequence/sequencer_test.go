package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequencer_Monotonic(t *testing.T) {
	s := New(0)
	assert.Equal(t, uint64(1), s.Next())
	assert.Equal(t, uint64(2), s.Next())
	assert.Equal(t, uint64(2), s.Current())
}

func TestSequencer_Resume(t *testing.T) {
	s := New(5)
	s.Resume(3)
	assert.Equal(t, uint64(5), s.Current())
	s.Resume(10)
	assert.Equal(t, uint64(11), s.Next())
}
