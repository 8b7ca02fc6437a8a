// Package simdops provides generic SIMD operations for float32 and float64 types.
// This enables a single codebase to support both precision levels without duplication.
//
// It also converts between 16-bit PCM and normalized floats, which is how
// samples enter and leave the float domain.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// PCM scaling constants
const (
	// int16FullScale maps int16 to [-1, 1).
	int16FullScale = 32768.0
	int16Max       = 32767
	int16Min       = -32768
)

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)
}

// Pre-instantiated operations for each float type.
var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
	}
)

// For returns the Ops instance for type F.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Float64Ops returns the float64 SIMD operations.
func Float64Ops() *Ops[float64] {
	return &ops64
}

// FromInt16 converts PCM samples to floats normalized to [-1, 1).
// dst must be at least len(src) long; the written prefix is returned.
func FromInt16[F Float](dst []F, src []int16) []F {
	dst = dst[:len(src)]
	for i, s := range src {
		dst[i] = F(s)
	}
	For[F]().Scale(dst, dst, F(1/int16FullScale))
	return dst
}

// ToInt16 converts normalized floats back to PCM, clamping out-of-range
// values. It returns the number of samples that had to be clamped.
func ToInt16[F Float](dst []int16, src []F) int {
	scaled := make([]F, min(len(src), len(dst)))
	For[F]().Scale(scaled, src[:len(scaled)], F(int16FullScale))

	clipped := 0
	for i, v := range scaled {
		s := float64(v)
		switch {
		case s > int16Max:
			dst[i] = int16Max
			clipped++
		case s < int16Min:
			dst[i] = int16Min
			clipped++
		case s >= 0:
			dst[i] = int16(s + 0.5)
		default:
			dst[i] = int16(s - 0.5)
		}
	}
	return clipped
}
