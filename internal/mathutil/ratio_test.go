package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGCD(t *testing.T) {
	tests := []struct {
		name     string
		x, y     uint32
		expected uint32
	}{
		{"Coprime", 147, 160, 1},
		{"Multiple", 48000, 16000, 16000},
		{"CD to DAT", 44100, 48000, 300},
		{"Equal", 48000, 48000, 48000},
		{"Zero second", 44100, 0, 44100},
		{"Swapped order", 16000, 48000, 16000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GCD(tt.x, tt.y))
		})
	}
}

func TestReduceRatio(t *testing.T) {
	tests := []struct {
		name            string
		inRate, outRate uint32
		expected        Ratio
	}{
		{"48k to 16k", 48000, 16000, Ratio{Num: 3, Den: 1}},
		{"44.1k to 48k", 44100, 48000, Ratio{Num: 147, Den: 160}},
		{"48k to 44.1k", 48000, 44100, Ratio{Num: 160, Den: 147}},
		{"Unity", 48000, 48000, Ratio{Num: 1, Den: 1}},
		{"8k to 96k", 8000, 96000, Ratio{Num: 1, Den: 12}},
		{"Odd rates", 11025, 22050, Ratio{Num: 1, Den: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ReduceRatio(tt.inRate, tt.outRate)
			assert.Equal(t, tt.expected, r)
			assert.Equal(t, uint32(1), GCD(r.Num, r.Den), "ratio not in lowest terms")
		})
	}
}

// TestReduceRatio_Property checks reduce(a,b) == (a/g, b/g) over a grid of
// common and awkward rates.
func TestReduceRatio_Property(t *testing.T) {
	rates := []uint32{5512, 8000, 11025, 16000, 22050, 32000, 44100, 48000, 64000, 88200, 96000, 176400, 192000}

	for _, a := range rates {
		for _, b := range rates {
			g := GCD(a, b)
			r := ReduceRatio(a, b)
			assert.Equal(t, a/g, r.Num, "num for %d/%d", a, b)
			assert.Equal(t, b/g, r.Den, "den for %d/%d", a, b)
			assert.Equal(t, uint64(a)*uint64(r.Den), uint64(b)*uint64(r.Num), "ratio changed value for %d/%d", a, b)
		}
	}
}

func TestRatio_Frames(t *testing.T) {
	down := ReduceRatio(48000, 16000)
	assert.Equal(t, uint32(100), down.OutputFrames(300))
	assert.Equal(t, uint32(300), down.InputFrames(100))
	assert.False(t, down.IsUnity())

	up := ReduceRatio(44100, 48000)
	assert.Equal(t, uint32(48000), up.OutputFrames(44100))
	assert.Equal(t, uint32(44100), up.InputFrames(48000))

	// Large inputs must not overflow the 32-bit intermediate.
	assert.Equal(t, uint32(32653061), up.OutputFrames(30000000))

	assert.True(t, ReduceRatio(48000, 48000).IsUnity())
	assert.Equal(t, uint32(0), Ratio{}.OutputFrames(10))
	assert.Equal(t, uint32(0), Ratio{}.InputFrames(10))
}
