// Package simdev provides an in-memory ASRC device for tests and dry runs.
//
// The simulated converter implements driver.Device with the same buffer
// discipline as the hardware: buffers must be queued before they are
// dequeued, conversion only progresses once started, and mmap regions alias
// the device's own buffer memory. Rate conversion is sample-and-hold over the
// reduced rate ratio, which is exact for constant signals and keeps frame
// counts identical to the hardware's.
//
// Where the hardware would block forever, PollDequeue returns ErrStalled.
package simdev

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nxp-imx/go-asrc/driver"
	"github.com/nxp-imx/go-asrc/internal/mathutil"
	"github.com/nxp-imx/go-asrc/internal/pipeline"
)

// Op names a device request, for call accounting and fault injection.
type Op string

const (
	OpRequestPair   Op = "RequestPair"
	OpConfigurePair Op = "ConfigurePair"
	OpQueryBuffer   Op = "QueryBuffer"
	OpMmap          Op = "Mmap"
	OpMunmap        Op = "Munmap"
	OpQueueInput    Op = "QueueInput"
	OpQueueOutput   Op = "QueueOutput"
	OpPollDequeue   Op = "PollDequeue"
	OpStart         Op = "StartConversion"
	OpStop          Op = "StopConversion"
	OpFlush         Op = "Flush"
	OpReleasePair   Op = "ReleasePair"
	OpClose         Op = "Close"
)

// Device limits
const (
	maxPairs       = 3
	maxChannels    = 10
	bytesPerSample = 2
)

var (
	// ErrStalled is returned by PollDequeue when no buffer can ever become
	// ready with the current queues.
	ErrStalled = errors.New("simdev: no buffer can become ready")

	// ErrClosed is returned for any request after Close.
	ErrClosed = errors.New("simdev: device closed")

	// ErrBusy is returned when a pair is reconfigured with buffers mapped.
	ErrBusy = errors.New("simdev: device busy")

	// ErrInvalid is returned for malformed requests.
	ErrInvalid = errors.New("simdev: invalid argument")

	// ErrInjected is the default error used by Fail.
	ErrInjected = errors.New("simdev: injected failure")
)

type fault struct {
	after int
	err   error
}

// Device is a simulated ASRC device. It is safe for concurrent use, although
// the protocol it models is single-threaded.
type Device struct {
	mu sync.Mutex

	closed   bool
	pairs    [maxPairs]bool
	cfg      driver.PairConfig
	ratio    mathutil.Ratio
	mem      []byte
	mapped   map[*byte]int
	inQueue  []driver.Buffer
	outQueue []driver.Buffer
	pending  *pipeline.RingBuffer
	acc      uint64
	started  bool
	warmup   int
	warmLeft int

	calls  []Op
	faults map[Op]*fault
}

var _ driver.Device = (*Device)(nil)

// Option configures a Device.
type Option func(*Device)

// WithWarmup delays the converted stream by frames of silence after every
// flush, like a filter filling its delay line.
func WithWarmup(frames int) Option {
	return func(d *Device) {
		d.warmup = max(frames, 0)
	}
}

// New creates a simulated device.
func New(opts ...Option) *Device {
	d := &Device{
		mapped:  make(map[*byte]int),
		pending: pipeline.NewRingBuffer(0),
		faults:  make(map[Op]*fault),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.warmLeft = d.warmup
	return d
}

// Fail makes the call to op following after successful calls return err.
// A nil err uses ErrInjected. Each registered fault fires once.
func (d *Device) Fail(op Op, after int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil {
		err = ErrInjected
	}
	d.faults[op] = &fault{after: after, err: err}
}

// Calls returns the requests issued so far, in order.
func (d *Device) Calls() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Op(nil), d.calls...)
}

// CallCount returns how many times op was issued.
func (d *Device) CallCount(op Op) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, c := range d.calls {
		if c == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the request log.
func (d *Device) ResetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

// Mapped returns the number of live mmap regions.
func (d *Device) Mapped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mapped)
}

// ActivePairs returns the number of pairs currently held.
func (d *Device) ActivePairs() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, held := range d.pairs {
		if held {
			n++
		}
	}
	return n
}

// Config returns the last applied pair configuration.
func (d *Device) Config() driver.PairConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Converting reports whether conversion is started.
func (d *Device) Converting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Closed reports whether Close has been called.
func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// enter records op and returns the error it must fail with, if any.
// Callers hold d.mu.
func (d *Device) enter(op Op) error {
	d.calls = append(d.calls, op)
	if d.closed {
		return ErrClosed
	}
	if f, ok := d.faults[op]; ok {
		if f.after == 0 {
			delete(d.faults, op)
			return f.err
		}
		f.after--
	}
	return nil
}

func (d *Device) checkPair(pair driver.PairIndex) error {
	if pair < 0 || int(pair) >= maxPairs || !d.pairs[pair] {
		return fmt.Errorf("%w: pair %d not held", ErrInvalid, pair)
	}
	return nil
}

// RequestPair implements driver.Device.
func (d *Device) RequestPair(channels uint32) (driver.PairIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpRequestPair); err != nil {
		return driver.PairInvalid, err
	}
	if channels == 0 || channels > maxChannels {
		return driver.PairInvalid, fmt.Errorf("%w: %d channels", ErrInvalid, channels)
	}
	for i, held := range d.pairs {
		if !held {
			d.pairs[i] = true
			return driver.PairIndex(i), nil
		}
	}
	return driver.PairInvalid, ErrBusy
}

// ConfigurePair implements driver.Device.
func (d *Device) ConfigurePair(cfg driver.PairConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpConfigurePair); err != nil {
		return err
	}
	if err := d.checkPair(cfg.Pair); err != nil {
		return err
	}
	if len(d.mapped) > 0 {
		return ErrBusy
	}
	if cfg.InputRate == 0 || cfg.OutputRate == 0 || cfg.BufferCount == 0 || cfg.Channels == 0 {
		return fmt.Errorf("%w: incomplete pair configuration", ErrInvalid)
	}
	if cfg.InputWidth != driver.Width16Bit || cfg.OutputWidth != driver.Width16Bit {
		return fmt.Errorf("%w: only 16-bit words are simulated", ErrInvalid)
	}
	if cfg.BufferBytes == 0 || cfg.BufferBytes > mathutil.MaxDMABytes {
		return fmt.Errorf("%w: buffer size %d", ErrInvalid, cfg.BufferBytes)
	}

	d.cfg = cfg
	d.ratio = mathutil.ReduceRatio(cfg.InputRate, cfg.OutputRate)
	d.mem = make([]byte, 2*int(cfg.BufferCount)*int(cfg.BufferBytes))
	d.resetStream()
	return nil
}

// QueryBuffer implements driver.Mapper. Input buffers occupy the start of
// the device memory and output buffers follow them.
func (d *Device) QueryBuffer(index uint32) (driver.Geometry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpQueryBuffer); err != nil {
		return driver.Geometry{}, err
	}
	if d.mem == nil || index >= d.cfg.BufferCount {
		return driver.Geometry{}, fmt.Errorf("%w: buffer %d", ErrInvalid, index)
	}

	size := int64(d.cfg.BufferBytes)
	return driver.Geometry{
		InputOffset:  int64(index) * size,
		InputLength:  d.cfg.BufferBytes,
		OutputOffset: int64(d.cfg.BufferCount)*size + int64(index)*size,
		OutputLength: d.cfg.BufferBytes,
	}, nil
}

// Mmap implements driver.Mapper. The returned region aliases device memory.
func (d *Device) Mmap(offset int64, length int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpMmap); err != nil {
		return nil, err
	}
	if length <= 0 || offset < 0 || offset+int64(length) > int64(len(d.mem)) {
		return nil, fmt.Errorf("%w: mmap [%d, %d) outside device memory", ErrInvalid, offset, offset+int64(length))
	}

	region := d.mem[offset : offset+int64(length) : offset+int64(length)]
	d.mapped[&region[0]] = length
	return region, nil
}

// Munmap implements driver.Mapper.
func (d *Device) Munmap(region []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpMunmap); err != nil {
		return err
	}
	if len(region) == 0 {
		return fmt.Errorf("%w: empty region", ErrInvalid)
	}
	if _, ok := d.mapped[&region[0]]; !ok {
		return fmt.Errorf("%w: region not mapped", ErrInvalid)
	}
	delete(d.mapped, &region[0])
	return nil
}

func (d *Device) checkBuffer(buf driver.Buffer) error {
	if d.mem == nil || buf.Index >= d.cfg.BufferCount {
		return fmt.Errorf("%w: buffer %d", ErrInvalid, buf.Index)
	}
	if buf.Length > d.cfg.BufferBytes {
		return fmt.Errorf("%w: buffer length %d exceeds %d", ErrInvalid, buf.Length, d.cfg.BufferBytes)
	}
	return nil
}

// QueueInput implements driver.Device.
func (d *Device) QueueInput(buf driver.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpQueueInput); err != nil {
		return err
	}
	if err := d.checkBuffer(buf); err != nil {
		return err
	}
	if buf.Length == 0 {
		buf.Length = d.cfg.BufferBytes
	}
	buf.Direction = driver.DirectionInput
	d.inQueue = append(d.inQueue, buf)
	return nil
}

// QueueOutput implements driver.Device.
func (d *Device) QueueOutput(buf driver.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpQueueOutput); err != nil {
		return err
	}
	if err := d.checkBuffer(buf); err != nil {
		return err
	}
	buf.Length = d.cfg.BufferBytes
	buf.Direction = driver.DirectionOutput
	d.outQueue = append(d.outQueue, buf)
	return nil
}

// PollDequeue implements driver.Device. A full output buffer is returned
// first; otherwise the oldest input buffer is converted and returned; when
// all input is consumed a partially filled output buffer is returned.
func (d *Device) PollDequeue() (driver.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpPollDequeue); err != nil {
		return driver.Buffer{}, err
	}
	if !d.started {
		return driver.Buffer{}, ErrStalled
	}

	capacity := int(d.cfg.BufferBytes) / d.frameBytes() * int(d.cfg.Channels)

	switch {
	case len(d.outQueue) > 0 && d.pending.Available() >= capacity:
		return d.emitOutput(), nil
	case len(d.inQueue) > 0:
		return d.consumeInput(), nil
	case len(d.outQueue) > 0 && d.pending.Available() > 0:
		return d.emitOutput(), nil
	default:
		return driver.Buffer{}, ErrStalled
	}
}

func (d *Device) frameBytes() int {
	return int(d.cfg.Channels) * bytesPerSample
}

// consumeInput converts the oldest queued input buffer into pending frames.
func (d *Device) consumeInput() driver.Buffer {
	buf := d.inQueue[0]
	d.inQueue = d.inQueue[1:]

	start := int(buf.Index) * int(d.cfg.BufferBytes)
	frames := pipeline.NewFrames(d.mem[start:start+int(buf.Length)], int(d.cfg.Channels))
	frame := make([]int16, d.cfg.Channels)

	if d.warmLeft > 0 {
		d.pending.Write(make([]int16, d.warmLeft*len(frame))...)
		d.warmLeft = 0
	}

	for i := 0; i < frames.Len(); i++ {
		frames.Read(i, 1, frame)
		d.acc += uint64(d.ratio.Den)
		for d.acc >= uint64(d.ratio.Num) {
			d.acc -= uint64(d.ratio.Num)
			d.pending.Write(frame...)
		}
	}

	return buf
}

// emitOutput fills the oldest queued output buffer from pending frames,
// zero-filling whatever pending frames cannot cover.
func (d *Device) emitOutput() driver.Buffer {
	buf := d.outQueue[0]
	d.outQueue = d.outQueue[1:]

	start := d.outputBase() + int(buf.Index)*int(d.cfg.BufferBytes)
	region := d.mem[start : start+int(buf.Length)]
	frames := pipeline.NewFrames(region, int(d.cfg.Channels))

	samples := make([]int16, frames.Len()*int(d.cfg.Channels))
	d.pending.ReadInto(samples)
	frames.Write(0, samples)

	return buf
}

func (d *Device) outputBase() int {
	return int(d.cfg.BufferCount) * int(d.cfg.BufferBytes)
}

// resetStream drops queued buffers and converter state. Callers hold d.mu.
func (d *Device) resetStream() {
	d.inQueue = nil
	d.outQueue = nil
	d.pending.Clear()
	d.acc = 0
	d.warmLeft = d.warmup
}

// StartConversion implements driver.Device.
func (d *Device) StartConversion(pair driver.PairIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpStart); err != nil {
		return err
	}
	if err := d.checkPair(pair); err != nil {
		return err
	}
	d.started = true
	return nil
}

// StopConversion implements driver.Device.
func (d *Device) StopConversion(pair driver.PairIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpStop); err != nil {
		return err
	}
	if err := d.checkPair(pair); err != nil {
		return err
	}
	d.started = false
	return nil
}

// Flush implements driver.Device.
func (d *Device) Flush(pair driver.PairIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpFlush); err != nil {
		return err
	}
	if err := d.checkPair(pair); err != nil {
		return err
	}
	d.resetStream()
	return nil
}

// ReleasePair implements driver.Device.
func (d *Device) ReleasePair(pair driver.PairIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enter(OpReleasePair); err != nil {
		return err
	}
	if err := d.checkPair(pair); err != nil {
		return err
	}
	d.pairs[pair] = false
	d.started = false
	d.resetStream()
	return nil
}

// Close implements driver.Device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.calls = append(d.calls, OpClose)
		return nil
	}
	if err := d.enter(OpClose); err != nil {
		return err
	}
	d.closed = true
	return nil
}
