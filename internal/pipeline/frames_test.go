package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrames_Layout(t *testing.T) {
	raw := make([]byte, 9) // one trailing byte that is not a frame
	f := NewFrames(raw, 2)

	assert.Equal(t, 2, f.Len())

	n := f.Write(0, []int16{1, -2, 0x1234, -0x8000})
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x01, 0x00, 0xfe, 0xff, 0x34, 0x12, 0x00, 0x80}, raw[:8])
	assert.Equal(t, byte(0), raw[8])
}

func TestFrames_WriteAndReadAreBounded(t *testing.T) {
	f := newBuffer(4, 1)

	assert.Equal(t, 2, f.Write(2, []int16{7, 8, 9}))
	assert.Equal(t, 0, f.Write(4, []int16{1}))

	dst := make([]int16, 3)
	assert.Equal(t, 2, f.Read(2, 5, dst))
	assert.Equal(t, []int16{7, 8, 0}, dst)

	assert.Equal(t, 1, f.Read(0, 4, dst[:1]))
}

func TestFrames_Fill(t *testing.T) {
	f := newBuffer(3, 2)
	f.Fill(1, 2, []int16{5, -5})
	assert.Equal(t, []int16{0, 0, 5, -5, 5, -5}, readAll(f))
}

func TestFrames_ChannelsClamped(t *testing.T) {
	f := NewFrames(make([]byte, 4), 0)
	assert.Equal(t, 1, f.Channels())
	assert.Equal(t, 2, f.Len())
}
