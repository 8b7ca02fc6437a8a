package simdops

import (
	"testing"

	"github.com/tphakala/simd/f64"
)

func benchPCM(n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(i*37) - 12000
	}
	return s
}

// BenchmarkDirectF64DotProduct measures direct SIMD call overhead.
func BenchmarkDirectF64DotProduct(b *testing.B) {
	a := FromInt16(make([]float64, 1024), benchPCM(1024))

	b.ReportAllocs()
	for b.Loop() {
		_ = f64.DotProductUnsafe(a, a)
	}
}

// BenchmarkIndirectF64DotProduct measures indirect call through Ops struct.
func BenchmarkIndirectF64DotProduct(b *testing.B) {
	ops := For[float64]()
	a := FromInt16(make([]float64, 1024), benchPCM(1024))

	b.ReportAllocs()
	for b.Loop() {
		_ = ops.DotProductUnsafe(a, a)
	}
}

// BenchmarkFromInt16 measures PCM to float64 conversion.
func BenchmarkFromInt16(b *testing.B) {
	src := benchPCM(4096)
	dst := make([]float64, len(src))

	b.ReportAllocs()
	for b.Loop() {
		_ = FromInt16(dst, src)
	}
}

// BenchmarkToInt16 measures float32 to PCM conversion.
func BenchmarkToInt16(b *testing.B) {
	src := FromInt16(make([]float32, 4096), benchPCM(4096))
	dst := make([]int16, len(src))

	b.ReportAllocs()
	for b.Loop() {
		_ = ToInt16(dst, src)
	}
}
