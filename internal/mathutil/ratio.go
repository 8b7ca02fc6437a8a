// Package mathutil provides the integer ratio and padding arithmetic used to
// size hardware conversions.
package mathutil

// GCD returns the greatest common divisor of x and y using the iterative
// Euclidean algorithm. GCD(x, 0) == x.
func GCD(x, y uint32) uint32 {
	for y != 0 {
		x, y = y, x%y
	}
	return x
}

// Ratio is an input/output rate pair reduced to lowest terms.
// Num corresponds to the input rate and Den to the output rate, so an input
// block of n frames yields n*Den/Num output frames.
type Ratio struct {
	Num uint32
	Den uint32
}

// ReduceRatio divides both rates by their greatest common divisor.
// Rates must be positive; equal rates reduce to 1:1.
func ReduceRatio(inRate, outRate uint32) Ratio {
	g := GCD(inRate, outRate)
	if g == 0 {
		return Ratio{Num: 1, Den: 1}
	}
	return Ratio{Num: inRate / g, Den: outRate / g}
}

// OutputFrames predicts how many output frames in input frames produce.
func (r Ratio) OutputFrames(in uint32) uint32 {
	if r.Num == 0 {
		return 0
	}
	return uint32(uint64(in) * uint64(r.Den) / uint64(r.Num))
}

// InputFrames predicts how many input frames are needed for out output frames.
func (r Ratio) InputFrames(out uint32) uint32 {
	if r.Den == 0 {
		return 0
	}
	return uint32(uint64(out) * uint64(r.Num) / uint64(r.Den))
}

// IsUnity reports whether the ratio describes a pass-through conversion.
func (r Ratio) IsUnity() bool {
	return r.Num == r.Den
}
