package asrc

import (
	"errors"
	"fmt"

	"github.com/nxp-imx/go-asrc/internal/pipeline"
)

// Config holds the stream layout a pair is created with.
type Config struct {
	// Channels is the number of interleaved channels per frame.
	Channels uint32

	// InPeriodFrames is the largest block, in frames, the caller intends to
	// convert in one call. It sizes the DMA buffers.
	InPeriodFrames uint32

	// OutPeriodFrames is the matching output block size. It is recorded for
	// SetRate change detection.
	OutPeriodFrames uint32

	// InRate is the sample rate of the source in Hz.
	InRate uint32

	// OutRate is the sample rate of the destination in Hz.
	OutRate uint32

	// Type is an opaque tag carried for the caller, e.g. to tell playback
	// and capture pairs apart in logs.
	Type int
}

// Common errors returned by a Pair.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid ASRC configuration")

	// ErrDevice indicates a resource could not be acquired from the driver:
	// the device node, a pair, its configuration or its buffer mappings.
	ErrDevice = errors.New("ASRC resource acquisition failed")

	// ErrDriver indicates a driver request failed while converting. The pair
	// remains usable.
	ErrDriver = errors.New("ASRC driver request failed")

	// ErrNoBuffers indicates the pair has no mapped buffers, which happens
	// when reconfiguration failed part way.
	ErrNoBuffers = errors.New("ASRC buffers not mapped")

	// ErrClosed indicates the pair has been closed.
	ErrClosed = errors.New("ASRC pair closed")

	// ErrEmptySource indicates a conversion was requested with no input frame.
	ErrEmptySource = pipeline.ErrEmptySource
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Channels < minChannels || c.Channels > maxChannels {
		return fmt.Errorf("%w: channels must be %d-%d", ErrInvalidConfig, minChannels, maxChannels)
	}

	return validateRate(c.InPeriodFrames, c.InRate, c.OutRate)
}

func validateRate(inPeriodFrames, inRate, outRate uint32) error {
	if inRate == 0 || outRate == 0 {
		return fmt.Errorf("%w: sample rates must be positive", ErrInvalidConfig)
	}

	if inPeriodFrames == 0 {
		return fmt.Errorf("%w: input period must be at least one frame", ErrInvalidConfig)
	}

	return nil
}

// Info is a snapshot of a pair's configuration and state.
type Info struct {
	// Index is the driver-assigned pair index.
	Index int

	Channels        uint32
	InRate          uint32
	OutRate         uint32
	InPeriodFrames  uint32
	OutPeriodFrames uint32

	// RatioNum and RatioDen are InRate:OutRate in lowest terms.
	RatioNum uint32
	RatioDen uint32

	// BufferBytes and BufferFrames give the size of one DMA buffer.
	BufferBytes  uint32
	BufferFrames uint32

	// BufferCount is the number of buffers in each direction.
	BufferCount uint32

	// Converting reports whether the converter is running.
	Converting bool

	// Mapped reports whether the buffer pool is usable.
	Mapped bool

	Type int
}
