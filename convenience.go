package asrc

import "fmt"

// Common sample rates the converter is used with.
const (
	// RateTelephony is the narrowband telephony sample rate.
	RateTelephony = 8000

	// RateVoIP is the wideband voice sample rate.
	RateVoIP = 16000

	// RateCD is the CD quality sample rate.
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000
)

// Process converts src and returns a newly allocated destination holding
// len(src)*OutRate/InRate frames.
func (p *Pair) Process(src []int16) ([]int16, error) {
	channels := int(p.cfg.Channels)
	if channels == 0 {
		return nil, ErrClosed
	}
	frames := uint32(len(src) / channels)
	dst := make([]int16, int(p.ratio.OutputFrames(frames))*channels)

	if err := p.Convert(src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// OutputFrames returns how many frames Convert produces from in input frames
// at the current rates.
func (p *Pair) OutputFrames(in int) int {
	return int(p.ratio.OutputFrames(uint32(max(in, 0))))
}

// Interleave merges per-channel sample slices into one interleaved slice.
// All channels must have the same length.
func Interleave(channels [][]int16) ([]int16, error) {
	if len(channels) == 0 {
		return nil, nil
	}

	n := len(channels[0])
	for ch, samples := range channels {
		if len(samples) != n {
			return nil, fmt.Errorf("%w: channel %d has %d samples, expected %d",
				ErrInvalidConfig, ch, len(samples), n)
		}
	}

	out := make([]int16, n*len(channels))
	for ch, samples := range channels {
		for i, s := range samples {
			out[i*len(channels)+ch] = s
		}
	}
	return out, nil
}

// Deinterleave splits interleaved frames into one slice per channel.
// A trailing partial frame is dropped.
func Deinterleave(samples []int16, channels int) [][]int16 {
	if channels < minChannels {
		return nil
	}

	frames := len(samples) / channels
	out := make([][]int16, channels)
	for ch := range out {
		out[ch] = make([]int16, frames)
		for i := range frames {
			out[ch][i] = samples[i*channels+ch]
		}
	}
	return out
}
