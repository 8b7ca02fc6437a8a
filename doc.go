// Package asrc drives the i.MX asynchronous sample rate converter (ASRC)
// through its kernel driver.
//
// The hardware converts 16-bit interleaved audio between two rates, but only
// through a small number of fixed-size DMA buffers. A [Pair] hides that: the
// caller hands over a block of any length at the input rate and a
// destination at the output rate, and Convert splits the source across as
// many buffer cycles as needed and reassembles the converted frames.
//
// # Features
//
//   - Arbitrary block lengths over a fixed pool of DMA buffers
//   - Edge padding so converter latency never lands on real audio
//   - Multi-channel support (1-10 interleaved channels)
//   - Runtime rate changes with automatic buffer remapping
//   - Simulated device for tests and dry runs (package driver/simdev)
//
// # Quick Start
//
//	p, err := asrc.Create(asrc.Config{
//	    Channels:       2,
//	    InPeriodFrames: 1024,
//	    InRate:         asrc.RateCD,
//	    OutRate:        asrc.RateDAT,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	out, err := p.Process(input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Padding
//
// Every conversion prepends copies of the first source frame and appends
// copies of the last one, at least one millisecond each, so that every DMA
// buffer is full. The converted padding is discarded before frames reach
// the destination.
//
// # Errors
//
// Errors wrap one of the sentinel values ([ErrInvalidConfig], [ErrDevice],
// [ErrDriver], [ErrNoBuffers], [ErrClosed], [ErrEmptySource]) and can be
// tested with errors.Is.
package asrc
