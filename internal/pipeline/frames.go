// Package pipeline implements the buffer-level halves of a hardware
// conversion: filling DMA input buffers from a padded source stream and
// trimming converted output buffers into the caller's destination.
package pipeline

import "encoding/binary"

// Frames is a view of interleaved little-endian 16-bit frames over a byte
// buffer, typically one DMA buffer. Offsets and counts are in frames.
// Out-of-range access panics like any slice access.
type Frames struct {
	buf      []byte
	channels int
}

// NewFrames wraps buf as frames of the given channel count. Trailing bytes
// that do not make up a whole frame are ignored.
func NewFrames(buf []byte, channels int) Frames {
	if channels < minChannels {
		channels = minChannels
	}
	frameBytes := channels * bytesPerSample
	return Frames{
		buf:      buf[:len(buf)/frameBytes*frameBytes],
		channels: channels,
	}
}

// Len returns the capacity of the view in frames.
func (f Frames) Len() int {
	return len(f.buf) / f.frameBytes()
}

// Channels returns the number of samples per frame.
func (f Frames) Channels() int {
	return f.channels
}

// Fill writes n copies of frame starting at frame offset off.
func (f Frames) Fill(off, n int, frame []int16) {
	fb := f.frameBytes()
	region := f.buf[off*fb : (off+n)*fb]
	for i := 0; i < len(region); i += fb {
		for ch := 0; ch < f.channels; ch++ {
			binary.LittleEndian.PutUint16(region[i+ch*bytesPerSample:], uint16(frame[ch]))
		}
	}
}

// Write copies whole frames from the interleaved samples in src starting at
// frame offset off. It returns the number of frames written.
func (f Frames) Write(off int, src []int16) int {
	n := min(len(src)/f.channels, f.Len()-off)
	if n <= 0 {
		return 0
	}
	region := f.buf[off*f.frameBytes():]
	for i, s := range src[:n*f.channels] {
		binary.LittleEndian.PutUint16(region[i*bytesPerSample:], uint16(s))
	}
	return n
}

// Read copies n frames starting at frame offset off into dst as interleaved
// samples. It returns the number of frames read, bounded by dst.
func (f Frames) Read(off, n int, dst []int16) int {
	n = min(n, len(dst)/f.channels, f.Len()-off)
	if n <= 0 {
		return 0
	}
	region := f.buf[off*f.frameBytes():]
	for i := range n * f.channels {
		dst[i] = int16(binary.LittleEndian.Uint16(region[i*bytesPerSample:]))
	}
	return n
}

func (f Frames) frameBytes() int {
	return f.channels * bytesPerSample
}
