// Package testutil provides reusable test helpers for converter tests.
package testutil

import (
	"fmt"

	"github.com/stretchr/testify/assert"
)

// TestingT is the subset of *testing.T the assertions need.
type TestingT interface {
	assert.TestingT
	Helper()
}

// Constant returns n samples all set to v.
func Constant(n int, v int16) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Ramp returns frames interleaved frames where every channel of frame i
// holds start+i.
func Ramp(frames, channels int, start int16) []int16 {
	s := make([]int16, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			s[i*channels+ch] = start + int16(i)
		}
	}
	return s
}

// AssertAllEqual verifies that every sample equals v.
func AssertAllEqual(t TestingT, s []int16, v int16, msgAndArgs ...any) bool {
	t.Helper()
	for i, got := range s {
		if got != v {
			return assert.Fail(t, fmt.Sprintf("sample mismatch: s[%d]=%d, want %d", i, got, v), msgAndArgs...)
		}
	}
	return true
}

// AssertNonDecreasing verifies that samples never step backwards.
func AssertNonDecreasing(t TestingT, s []int16, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, fmt.Sprintf("not monotonic: s[%d]=%d < s[%d]=%d", i, s[i], i-1, s[i-1]), msgAndArgs...)
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t TestingT, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, fmt.Sprintf("value %f is outside range [%f, %f]", value, minVal, maxVal), msgAndArgs...)
	}
	return true
}
