package pipeline

import (
	"sync"
)

// RingBuffer is a growable FIFO of 16-bit samples. The simulated converter
// keeps converted samples here until an output buffer is queued to take
// them.
type RingBuffer struct {
	mu   sync.Mutex
	data []int16
	head int // index of the oldest sample
	n    int // samples held
}

// NewRingBuffer creates a ring holding capacity samples before it grows.
// A non-positive capacity selects the default.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = defaultRingCapacity
	}
	return &RingBuffer{data: make([]int16, capacity)}
}

// Write appends samples, growing the ring when it is full.
func (b *RingBuffer) Write(samples ...int16) {
	if len(samples) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.n+len(samples) > len(b.data) {
		b.resize(b.n + len(samples))
	}

	tail := (b.head + b.n) % len(b.data)
	copied := copy(b.data[tail:], samples)
	copy(b.data, samples[copied:])
	b.n += len(samples)
}

// ReadInto moves up to len(dst) of the oldest samples into dst and returns
// how many were moved.
func (b *RingBuffer) ReadInto(dst []int16) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := min(len(dst), b.n)
	first := copy(dst[:k], b.data[b.head:])
	copy(dst[first:k], b.data)

	b.head = (b.head + k) % len(b.data)
	b.n -= k
	return k
}

// Available returns the number of samples held.
func (b *RingBuffer) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

// Clear drops every sample.
func (b *RingBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head, b.n = 0, 0
}

// resize moves the held samples to the front of a larger backing array.
// Callers hold b.mu.
func (b *RingBuffer) resize(need int) {
	size := len(b.data)
	for size < need {
		size *= bufferGrowthFactor
	}

	data := make([]int16, size)
	first := copy(data[:b.n], b.data[b.head:])
	copy(data[first:b.n], b.data)

	b.data = data
	b.head = 0
}
