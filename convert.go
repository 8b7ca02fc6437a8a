package asrc

import (
	"fmt"

	"github.com/nxp-imx/go-asrc/driver"
	"github.com/nxp-imx/go-asrc/internal/mathutil"
	"github.com/nxp-imx/go-asrc/internal/pipeline"
)

// Convert resamples the interleaved frames in src into dst.
//
// The source is padded at both ends by replicating its first and last
// frames, so that converter latency falls on padding rather than on audio.
// min(len(src)*OutRate/InRate, len(dst)) frames are produced and written to
// the end of dst; any frames before them are left untouched.
//
// A driver failure aborts the conversion with dst partially written and an
// error wrapping ErrDriver. The pair stays usable either way.
func (p *Pair) Convert(src, dst []int16) (err error) {
	if p.closed {
		return ErrClosed
	}
	if !p.pool.Mapped() {
		return ErrNoBuffers
	}

	channels := int(p.cfg.Channels)
	srcFrames := len(src) / channels
	dstFrames := len(dst) / channels

	capacity := int(p.bufferBytes) / (channels * bytesPerSample)
	plan := mathutil.PlanConversion(uint32(srcFrames), uint32(capacity), p.cfg.InRate)

	filler, err := pipeline.NewFiller(src, channels, plan)
	if err != nil {
		return err
	}

	outFrames := min(int(p.ratio.OutputFrames(uint32(srcFrames))), dstFrames)
	outPadding := int(p.ratio.OutputFrames(plan.HeadPadding))
	window := dst[(dstFrames-outFrames)*channels : dstFrames*channels]
	collector := pipeline.NewCollector(window, channels, outPadding)

	p.logger.Debug("convert",
		"src_frames", srcFrames,
		"out_frames", outFrames,
		"cycles", plan.Cycles,
		"head_padding", plan.HeadPadding,
		"tail_padding", plan.TailPadding,
		"out_padding", outPadding)

	if outFrames == 0 {
		return nil
	}

	defer func() {
		if ferr := p.finish(); ferr != nil && err == nil {
			err = ferr
		}
		if err != nil {
			p.logger.Warn("conversion aborted",
				"in_left", filler.Remaining(),
				"out_left", collector.Remaining(),
				"err", err)
		}
	}()

	count := p.pool.Count()
	for i := range int(plan.Prefill(uint32(count))) {
		if err := p.queueInput(filler, i); err != nil {
			return err
		}
	}
	for i := range count {
		if err := p.queueOutput(i); err != nil {
			return err
		}
	}

	if err := p.start(); err != nil {
		return p.driverError("start conversion", err)
	}

	for !collector.Done() {
		buf, err := p.dev.PollDequeue()
		if err != nil {
			return p.driverError("poll dequeue", err)
		}

		switch buf.Direction {
		case driver.DirectionInput:
			if filler.Done() {
				continue
			}
			if err := p.queueInput(filler, int(buf.Index)); err != nil {
				return err
			}
		case driver.DirectionOutput:
			view, err := p.pool.Output(int(buf.Index))
			if err != nil {
				return p.driverError("dequeue output", err)
			}
			span := collector.Collect(pipeline.NewFrames(view[:p.bufferBytes], channels))
			if span.Zone == pipeline.ZoneStraddle {
				p.logger.Debug("output straddles padding", "offset", span.Offset, "count", span.Count)
			}
			if err := p.queueOutput(int(buf.Index)); err != nil {
				return err
			}
		default:
			return p.driverError("poll dequeue", fmt.Errorf("unknown buffer direction %d", buf.Direction))
		}
	}

	return nil
}

// queueInput fills input buffer i from filler and hands it to the driver.
func (p *Pair) queueInput(filler *pipeline.Filler, i int) error {
	view, err := p.pool.Input(i)
	if err != nil {
		return p.driverError("queue input", err)
	}
	filler.Fill(pipeline.NewFrames(view[:p.bufferBytes], int(p.cfg.Channels)))

	err = p.dev.QueueInput(driver.Buffer{
		Index:     uint32(i),
		Length:    p.bufferBytes,
		Direction: driver.DirectionInput,
	})
	if err != nil {
		return p.driverError("queue input", err)
	}
	return nil
}

func (p *Pair) queueOutput(i int) error {
	err := p.dev.QueueOutput(driver.Buffer{
		Index:     uint32(i),
		Length:    p.bufferBytes,
		Direction: driver.DirectionOutput,
	})
	if err != nil {
		return p.driverError("queue output", err)
	}
	return nil
}

// finish stops the converter and drops anything still queued so the next
// conversion starts from empty queues.
func (p *Pair) finish() error {
	stopErr := p.stop()
	flushErr := p.dev.Flush(p.index)

	switch {
	case stopErr != nil:
		return p.driverError("stop conversion", stopErr)
	case flushErr != nil:
		return p.driverError("flush", flushErr)
	}
	return nil
}

func (p *Pair) driverError(op string, err error) error {
	p.logger.Error("ASRC conversion failed", "op", op, "err", err)
	return fmt.Errorf("%w: %s: %w", ErrDriver, op, err)
}
