package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_FIFO(t *testing.T) {
	b := NewRingBuffer(4)
	b.Write(1, 2, 3)

	out := make([]int16, 2)
	assert.Equal(t, 2, b.ReadInto(out))
	assert.Equal(t, []int16{1, 2}, out)

	// Wrap around the end of the backing array.
	b.Write(4, 5, 6)
	assert.Equal(t, 4, b.Available())

	out = make([]int16, 8)
	assert.Equal(t, 4, b.ReadInto(out))
	assert.Equal(t, []int16{3, 4, 5, 6}, out[:4])
	assert.Equal(t, 0, b.Available())
}

func TestRingBuffer_GrowPreservesOrder(t *testing.T) {
	b := NewRingBuffer(2)
	b.Write(1, 2)

	out := make([]int16, 1)
	b.ReadInto(out)
	b.Write(3)       // wrapped
	b.Write(4, 5, 6) // forces growth while wrapped

	out = make([]int16, 5)
	assert.Equal(t, 5, b.ReadInto(out))
	assert.Equal(t, []int16{2, 3, 4, 5, 6}, out)
}

func TestRingBuffer_Clear(t *testing.T) {
	b := NewRingBuffer(0)
	b.Write(1, 2, 3)
	b.Clear()
	assert.Equal(t, 0, b.Available())
	assert.Equal(t, 0, b.ReadInto(make([]int16, 3)))
}
