package pipeline

import (
	"errors"

	"github.com/nxp-imx/go-asrc/internal/mathutil"
)

// ErrEmptySource is returned when a filler is built over a source with no
// complete frame, since padding replicates the first and last frames.
var ErrEmptySource = errors.New("source has no complete frame")

// FillStats reports how one buffer was filled, in frames.
type FillStats struct {
	Head int // replicated first-frame padding
	Data int // frames copied from the source
	Tail int // replicated last-frame padding
}

// Total returns the number of frames written.
func (s FillStats) Total() int {
	return s.Head + s.Data + s.Tail
}

// Filler feeds a padded source stream into fixed-capacity input buffers.
// The logical stream is HeadPadding copies of the first frame, the source,
// then TailPadding copies of the last frame.
type Filler struct {
	channels int
	src      []int16 // unconsumed source samples
	inLeft   int     // logical frames still to emit, padding included
	tail     int     // tail padding frames
	first    []int16
	last     []int16
}

// NewFiller creates a filler over the interleaved source samples using the
// padding split from plan.
func NewFiller(src []int16, channels int, plan mathutil.Plan) (*Filler, error) {
	if channels < minChannels {
		channels = minChannels
	}
	frames := len(src) / channels
	if frames == 0 {
		return nil, ErrEmptySource
	}
	src = src[:frames*channels]

	return &Filler{
		channels: channels,
		src:      src,
		inLeft:   int(plan.HeadPadding) + frames + int(plan.TailPadding),
		tail:     int(plan.TailPadding),
		first:    append([]int16(nil), src[:channels]...),
		last:     append([]int16(nil), src[len(src)-channels:]...),
	}, nil
}

// Remaining returns the logical frames, padding included, not yet emitted.
func (f *Filler) Remaining() int {
	return f.inLeft
}

// Done reports whether the whole padded stream has been emitted.
func (f *Filler) Done() bool {
	return f.inLeft == 0
}

// Fill writes the next part of the padded stream into buf, in head padding,
// data, tail padding order. It never writes past buf.Len().
func (f *Filler) Fill(buf Frames) FillStats {
	var stats FillStats
	space := buf.Len()
	pos := 0
	srcLeft := len(f.src) / f.channels

	if f.inLeft > srcLeft+f.tail {
		n := min(f.inLeft-srcLeft-f.tail, space)
		buf.Fill(pos, n, f.first)
		pos += n
		space -= n
		f.inLeft -= n
		stats.Head = n
	}

	if space == 0 {
		return stats
	}

	if f.inLeft <= srcLeft+f.tail && f.inLeft > f.tail {
		n := min(f.inLeft-f.tail, space)
		buf.Write(pos, f.src[:n*f.channels])
		f.src = f.src[n*f.channels:]
		pos += n
		space -= n
		f.inLeft -= n
		stats.Data = n
	}

	if space == 0 {
		return stats
	}

	if f.inLeft <= f.tail {
		n := min(f.inLeft, space)
		buf.Fill(pos, n, f.last)
		f.inLeft -= n
		stats.Tail = n
	}

	return stats
}
