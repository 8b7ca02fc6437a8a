// Package analysis measures level and spectral content of 16-bit PCM, for
// conversion reports and for checking that a tone survives conversion.
package analysis

import (
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"

	"github.com/nxp-imx/go-asrc/internal/simdops"
)

// Analysis constants
const (
	// SilenceDBFS is reported for the level of an all-zero signal.
	SilenceDBFS = -120.0

	// maxFFTFrames bounds the spectrum to the first frames of a clip.
	maxFFTFrames = 1 << 16

	dbScale = 20.0
)

// Report summarises one clip.
type Report struct {
	Frames     int
	Channels   int
	SampleRate int
	Duration   time.Duration

	// Peak is the largest absolute sample over all channels.
	Peak     int
	PeakDBFS float64
	RMSDBFS  float64

	// DC is the mean of channel 0, normalized to full scale.
	DC     float64
	StdDev float64

	// Clipped counts samples at either int16 limit.
	Clipped int

	// DominantHz is the strongest non-DC frequency of channel 0.
	DominantHz float64
}

// Analyze computes a Report for interleaved samples.
func Analyze(samples []int16, channels, sampleRate int) Report {
	if channels < 1 {
		channels = 1
	}
	frames := len(samples) / channels
	samples = samples[:frames*channels]

	r := Report{
		Frames:     frames,
		Channels:   channels,
		SampleRate: sampleRate,
		PeakDBFS:   SilenceDBFS,
		RMSDBFS:    SilenceDBFS,
	}
	if sampleRate > 0 {
		r.Duration = time.Duration(frames) * time.Second / time.Duration(sampleRate)
	}
	if frames == 0 {
		return r
	}

	for _, s := range samples {
		a := int(s)
		if a < 0 {
			a = -a
		}
		r.Peak = max(r.Peak, a)
		if s == math.MaxInt16 || s == math.MinInt16 {
			r.Clipped++
		}
	}
	r.PeakDBFS = DBFS(float64(r.Peak) / 32768)

	all := simdops.FromInt16(make([]float64, len(samples)), samples)
	ops := simdops.Float64Ops()
	r.RMSDBFS = DBFS(math.Sqrt(ops.DotProductUnsafe(all, all) / float64(len(all))))

	ch0 := Channel(all, channels, 0)
	r.DC = stat.Mean(ch0, nil)
	if len(ch0) > 1 {
		r.StdDev = stat.StdDev(ch0, nil)
	}
	r.DominantHz = DominantFrequency(ch0, sampleRate)

	return r
}

// Channel extracts one channel from interleaved samples.
func Channel(samples []float64, channels, ch int) []float64 {
	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := range out {
		out[i] = samples[i*channels+ch]
	}
	return out
}

// DBFS converts a linear full-scale amplitude to decibels, flooring at
// SilenceDBFS.
func DBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return SilenceDBFS
	}
	return max(dbScale*math.Log10(amplitude), SilenceDBFS)
}

// DominantFrequency returns the frequency in Hz of the largest spectral peak
// of x, excluding DC. x is windowed after its mean is removed.
func DominantFrequency(x []float64, sampleRate int) float64 {
	n := min(len(x), maxFFTFrames)
	if n < 4 || sampleRate <= 0 {
		return 0
	}

	seq := make([]float64, n)
	copy(seq, x[:n])
	mean := simdops.Float64Ops().Sum(seq) / float64(n)
	for i := range seq {
		seq[i] -= mean
	}
	window.Hann(seq)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	best, bestMag := 0, 0.0
	for i := 1; i < len(coeffs); i++ {
		if m := cmplx.Abs(coeffs[i]); m > bestMag {
			best, bestMag = i, m
		}
	}
	if best == 0 {
		return 0
	}
	return fft.Freq(best) * float64(sampleRate)
}
