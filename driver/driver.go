// Package driver defines the control protocol of the i.MX ASRC kernel driver
// and provides a Linux implementation over its character device.
//
// A Device hands out converter pairs, configures them, exposes their DMA
// buffers for memory mapping and moves buffers between the caller and the
// converter. Every pair-scoped request is addressed by the PairIndex returned
// from RequestPair.
package driver

import "errors"

// DefaultPath is the character device exposed by the ASRC driver.
const DefaultPath = "/dev/mxc_asrc"

// PairIndex identifies a converter pair. It mirrors enum asrc_pair_index.
type PairIndex int32

// Pair indices known to the driver.
const (
	PairInvalid PairIndex = -1
	PairA       PairIndex = 0
	PairB       PairIndex = 1
	PairC       PairIndex = 2
)

// Direction tells whether a dequeued buffer is an input buffer ready for
// refill or an output buffer holding converted samples.
type Direction int32

const (
	DirectionInput  Direction = 0
	DirectionOutput Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	default:
		return "unknown"
	}
}

// WordWidth is the sample width of a pair's input or output stream.
type WordWidth int32

const (
	Width24Bit WordWidth = 0
	Width16Bit WordWidth = 1
	Width8Bit  WordWidth = 2
)

// InputClock selects the clock that paces the pair's input side.
type InputClock int32

// OutputClock selects the clock that paces the pair's output side.
type OutputClock int32

// Clock selectors used for memory-to-memory conversion.
const (
	InputClockNone       InputClock  = 0x03
	OutputClockASRCK1Clk OutputClock = 0x0f
)

// PairConfig is the configuration applied to a requested pair.
type PairConfig struct {
	Pair        PairIndex
	Channels    uint32
	BufferCount uint32
	BufferBytes uint32
	InputRate   uint32
	OutputRate  uint32
	InputWidth  WordWidth
	OutputWidth WordWidth
	InputClock  InputClock
	OutputClock OutputClock
}

// Geometry describes where the input and output buffer regions of the
// configured pair live in the device's mmap space.
type Geometry struct {
	InputOffset  int64
	InputLength  uint32
	OutputOffset int64
	OutputLength uint32
}

// Buffer identifies one DMA buffer exchanged with the driver.
type Buffer struct {
	Index     uint32
	Length    uint32
	Direction Direction
}

// Mapper is the subset of Device needed to map and unmap buffer regions.
type Mapper interface {
	// QueryBuffer returns the geometry of the buffer at index.
	QueryBuffer(index uint32) (Geometry, error)

	// Mmap maps length bytes of the device at offset, shared and writable.
	Mmap(offset int64, length int) ([]byte, error)

	// Munmap releases a region returned by Mmap.
	Munmap(region []byte) error
}

// Device is the request surface of the ASRC driver.
type Device interface {
	Mapper

	// RequestPair acquires a pair able to carry channels channels.
	RequestPair(channels uint32) (PairIndex, error)

	// ConfigurePair applies rates, widths, clocks and buffer layout.
	ConfigurePair(cfg PairConfig) error

	// QueueInput hands a filled input buffer to the converter.
	QueueInput(buf Buffer) error

	// QueueOutput hands an empty output buffer to the converter.
	QueueOutput(buf Buffer) error

	// PollDequeue blocks until an input buffer is free or an output buffer
	// is full and returns it. There is no timeout.
	PollDequeue() (Buffer, error)

	StartConversion(pair PairIndex) error
	StopConversion(pair PairIndex) error

	// Flush drops all in-flight buffers of the pair.
	Flush(pair PairIndex) error

	ReleasePair(pair PairIndex) error

	// Close releases the device handle.
	Close() error
}

// ErrUnsupported is returned by Open on platforms without the ASRC driver.
var ErrUnsupported = errors.New("asrc driver not supported on this platform")
