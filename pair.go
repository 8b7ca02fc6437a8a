package asrc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nxp-imx/go-asrc/driver"
	"github.com/nxp-imx/go-asrc/internal/dma"
	"github.com/nxp-imx/go-asrc/internal/mathutil"
)

// Pair is one hardware converter pair with its mapped DMA buffers.
//
// A Pair is not safe for concurrent use.
type Pair struct {
	dev    driver.Device
	logger *slog.Logger
	index  driver.PairIndex

	cfg         Config
	ratio       mathutil.Ratio
	bufferBytes uint32
	bufferCount uint32
	pool        *dma.Pool

	converting bool
	closed     bool
}

// Create opens the device, requests a pair able to carry cfg.Channels,
// configures it for the given rates and maps its buffers.
//
// On failure every resource acquired so far is released in reverse order and
// the returned error wraps ErrDevice (or ErrInvalidConfig).
func Create(cfg Config, opts ...Option) (*Pair, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pair{
		logger:      logger,
		index:       driver.PairInvalid,
		bufferCount: o.bufferCount,
	}

	var unwind []func() error
	fail := func(op string, err error) (*Pair, error) {
		for i := len(unwind) - 1; i >= 0; i-- {
			if uerr := unwind[i](); uerr != nil {
				logger.Warn("release after failed create", "op", op, "err", uerr)
			}
		}
		logger.Error("create ASRC pair failed", "op", op, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrDevice, op, err)
	}

	p.dev = o.device
	if p.dev == nil {
		k, err := driver.Open(o.path)
		if err != nil {
			return fail("open "+o.path, err)
		}
		logger.Debug("opened ASRC device", "path", k.Path())
		p.dev = k
	}
	unwind = append(unwind, p.dev.Close)

	index, err := p.dev.RequestPair(cfg.Channels)
	if err != nil {
		return fail("request pair", err)
	}
	p.index = index
	p.logger = logger.With("pair", int(index))
	unwind = append(unwind, func() error { return p.dev.ReleasePair(index) })

	if err := p.configure(cfg); err != nil {
		return fail("configure pair", err)
	}
	p.cfg = cfg
	p.ratio = mathutil.ReduceRatio(cfg.InRate, cfg.OutRate)

	if err := p.mapBuffers(); err != nil {
		return fail("map buffers", err)
	}

	p.logger.Debug("ASRC pair created",
		"channels", cfg.Channels,
		"in_rate", cfg.InRate,
		"out_rate", cfg.OutRate,
		"buffer_bytes", p.bufferBytes,
		"buffer_count", p.bufferCount)

	return p, nil
}

// configure applies cfg to the held pair. The DMA size covers one input
// period plus padding at both ends.
func (p *Pair) configure(cfg Config) error {
	frameBytes := cfg.Channels * bytesPerSample
	size := mathutil.DMABufferBytes(cfg.InPeriodFrames, cfg.InRate, frameBytes)

	err := p.dev.ConfigurePair(driver.PairConfig{
		Pair:        p.index,
		Channels:    cfg.Channels,
		BufferCount: p.bufferCount,
		BufferBytes: size,
		InputRate:   cfg.InRate,
		OutputRate:  cfg.OutRate,
		InputWidth:  driver.Width16Bit,
		OutputWidth: driver.Width16Bit,
		InputClock:  driver.InputClockNone,
		OutputClock: driver.OutputClockASRCK1Clk,
	})
	if err != nil {
		return err
	}

	p.bufferBytes = size
	return nil
}

func (p *Pair) mapBuffers() error {
	pool, err := dma.Map(p.dev, int(p.bufferCount), int(p.bufferBytes))
	if err != nil {
		return err
	}
	p.pool = pool
	return nil
}

// Close unmaps the buffers, releases the pair and closes the device. Every
// step runs even if an earlier one fails. Calling Close again is a no-op.
func (p *Pair) Close() error {
	if p == nil || p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if err := p.stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop conversion: %w", err))
	}
	if err := p.pool.Unmap(); err != nil {
		errs = append(errs, fmt.Errorf("unmap buffers: %w", err))
	}
	p.pool = nil
	if err := p.dev.ReleasePair(p.index); err != nil {
		errs = append(errs, fmt.Errorf("release pair: %w", err))
	}
	if err := p.dev.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close device: %w", err))
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		p.logger.Warn("close ASRC pair", "err", err)
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}
	return nil
}

// Ratio returns InRate:OutRate reduced to lowest terms.
func (p *Pair) Ratio() (num, den uint32) {
	return p.ratio.Num, p.ratio.Den
}

// SetRate reconfigures the pair for new periods and rates. When nothing
// changed and the buffers are mapped it does nothing.
//
// If reconfiguration fails the previous rates are kept but the buffers stay
// unmapped: Convert returns ErrNoBuffers until a later SetRate succeeds.
func (p *Pair) SetRate(inPeriodFrames, outPeriodFrames, inRate, outRate uint32) error {
	if p.closed {
		return ErrClosed
	}
	if err := validateRate(inPeriodFrames, inRate, outRate); err != nil {
		return err
	}

	next := p.cfg
	next.InPeriodFrames = inPeriodFrames
	next.OutPeriodFrames = outPeriodFrames
	next.InRate = inRate
	next.OutRate = outRate

	if next == p.cfg && p.pool.Mapped() {
		return nil
	}

	if err := p.pool.Unmap(); err != nil {
		p.logger.Warn("unmap before reconfigure", "err", err)
	}
	p.pool = nil

	if err := p.configure(next); err != nil {
		p.logger.Error("reconfigure ASRC pair failed", "op", "configure", "err", err)
		return fmt.Errorf("%w: reconfigure pair: %w", ErrDevice, err)
	}
	p.cfg = next
	p.ratio = mathutil.ReduceRatio(inRate, outRate)

	if err := p.mapBuffers(); err != nil {
		p.logger.Error("reconfigure ASRC pair failed", "op", "map", "err", err)
		return fmt.Errorf("%w: map buffers: %w", ErrDevice, err)
	}

	p.logger.Debug("ASRC pair reconfigured",
		"in_rate", inRate,
		"out_rate", outRate,
		"buffer_bytes", p.bufferBytes)
	return nil
}

// Reset drops every buffer in flight in the converter.
func (p *Pair) Reset() error {
	if p.closed {
		return ErrClosed
	}
	if err := p.dev.Flush(p.index); err != nil {
		p.logger.Error("flush ASRC pair failed", "err", err)
		return fmt.Errorf("%w: flush: %w", ErrDriver, err)
	}
	return nil
}

// start begins conversion unless it is already running.
func (p *Pair) start() error {
	if p.converting {
		return nil
	}
	if err := p.dev.StartConversion(p.index); err != nil {
		return err
	}
	p.converting = true
	return nil
}

// stop ends conversion if it is running.
func (p *Pair) stop() error {
	if !p.converting {
		return nil
	}
	p.converting = false
	return p.dev.StopConversion(p.index)
}

// Info returns a snapshot of the pair's configuration and state.
func (p *Pair) Info() Info {
	frameBytes := p.cfg.Channels * bytesPerSample
	var frames uint32
	if frameBytes > 0 {
		frames = p.bufferBytes / frameBytes
	}

	return Info{
		Index:           int(p.index),
		Channels:        p.cfg.Channels,
		InRate:          p.cfg.InRate,
		OutRate:         p.cfg.OutRate,
		InPeriodFrames:  p.cfg.InPeriodFrames,
		OutPeriodFrames: p.cfg.OutPeriodFrames,
		RatioNum:        p.ratio.Num,
		RatioDen:        p.ratio.Den,
		BufferBytes:     p.bufferBytes,
		BufferFrames:    frames,
		BufferCount:     p.bufferCount,
		Converting:      p.converting,
		Mapped:          p.pool.Mapped(),
		Type:            p.cfg.Type,
	}
}
