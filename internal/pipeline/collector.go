package pipeline

// Zone classifies a converted output buffer against the frames still owed.
type Zone int

const (
	// ZoneValid means every frame in the buffer belongs to the destination.
	ZoneValid Zone = iota

	// ZonePadding means the whole buffer is converted padding and is skipped.
	ZonePadding

	// ZoneStraddle means the buffer begins with padding and ends with
	// destination frames.
	ZoneStraddle
)

// String returns the zone name.
func (z Zone) String() string {
	switch z {
	case ZoneValid:
		return "valid"
	case ZonePadding:
		return "padding"
	case ZoneStraddle:
		return "straddle"
	default:
		return "unknown"
	}
}

// Span is the part of one output buffer that is copied to the destination.
type Span struct {
	Zone   Zone
	Offset int // frames skipped at the start of the buffer
	Count  int // frames copied after Offset
}

// Trim applies the three-zone output arithmetic. left is the number of
// output frames still expected (destination frames plus unconsumed padding),
// want is the destination length and capacity the buffer size, all in frames.
// The caller subtracts Offset+Count from left afterwards.
func Trim(left, want, capacity int) Span {
	switch {
	case left <= want:
		return Span{Zone: ZoneValid, Offset: 0, Count: min(left, capacity)}
	case left >= want+capacity:
		return Span{Zone: ZonePadding, Offset: capacity, Count: 0}
	default:
		offset := left - want
		count := capacity - offset
		if capacity > left {
			count = left - offset
		}
		return Span{Zone: ZoneStraddle, Offset: offset, Count: count}
	}
}

// Collector drains converted output buffers into a destination, discarding
// the converted head padding that precedes the valid frames.
type Collector struct {
	channels int
	dst      []int16 // unwritten destination samples
	want     int
	left     int
	written  int
}

// NewCollector creates a collector that delivers len(dst)/channels frames
// after skipping padding converted frames.
func NewCollector(dst []int16, channels, padding int) *Collector {
	if channels < minChannels {
		channels = minChannels
	}
	want := len(dst) / channels
	return &Collector{
		channels: channels,
		dst:      dst[:want*channels],
		want:     want,
		left:     want + padding,
	}
}

// Remaining returns the output frames still expected, padding included.
func (c *Collector) Remaining() int {
	return c.left
}

// Written returns the number of frames delivered to the destination.
func (c *Collector) Written() int {
	return c.written
}

// Done reports whether the destination has been completely delivered.
func (c *Collector) Done() bool {
	return c.left == 0
}

// Collect consumes one converted buffer and returns the span it copied.
func (c *Collector) Collect(buf Frames) Span {
	span := Trim(c.left, c.want, buf.Len())
	if span.Count > 0 {
		n := buf.Read(span.Offset, span.Count, c.dst)
		c.dst = c.dst[n*c.channels:]
		c.written += n
	}
	c.left -= span.Offset + span.Count
	return span
}
