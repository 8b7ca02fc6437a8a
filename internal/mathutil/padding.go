package mathutil

// PaddingFrames returns the number of padding frames applied at each end of a
// conversion for the given input rate (rate * PaddingMS / 1000, truncated).
func PaddingFrames(rate uint32) uint32 {
	return uint32(uint64(rate) * PaddingMS / msPerSecond)
}

// DMABufferBytes returns the DMA buffer size to request for one period plus
// head and tail padding, capped at the largest whole number of frames that
// fits in MaxDMABytes.
func DMABufferBytes(periodFrames, inRate, frameBytes uint32) uint32 {
	if frameBytes == 0 {
		frameBytes = BytesPerSample
	}
	size := (uint64(periodFrames) + uint64(PaddingFrames(inRate))*paddingEnds) * uint64(frameBytes)
	if limit := uint64(MaxDMABytes / frameBytes * frameBytes); size > limit {
		return uint32(limit)
	}
	return uint32(size)
}

// Plan describes how one source block is tiled across hardware buffers.
type Plan struct {
	// Cycles is the number of hardware input buffers the padded block fills.
	Cycles uint32

	// HeadPadding and TailPadding are the replicated-sample frames placed
	// before and after the source. Their sum plus the source length equals
	// TotalFrames.
	HeadPadding uint32
	TailPadding uint32

	// TotalFrames is Cycles * buffer capacity.
	TotalFrames uint32
}

// PlanConversion computes the buffer cycles and padding split for srcFrames
// of input at inRate, given a buffer capacity in frames.
//
// At least PaddingFrames(inRate) frames are reserved at each end; whatever the
// last buffer has left over is split between head and tail so the padded
// stream exactly tiles Cycles buffers. An odd leftover frame goes to the tail.
func PlanConversion(srcFrames, capacity, inRate uint32) Plan {
	if capacity == 0 {
		return Plan{}
	}

	minPad := uint64(PaddingFrames(inRate))
	need := uint64(srcFrames) + minPad*paddingEnds
	cycles := (need + uint64(capacity) - 1) / uint64(capacity)
	total := cycles * uint64(capacity)
	head := (total - uint64(srcFrames)) / paddingEnds

	return Plan{
		Cycles:      uint32(cycles),
		HeadPadding: uint32(head),
		TailPadding: uint32(total - uint64(srcFrames) - head),
		TotalFrames: uint32(total),
	}
}

// Prefill returns how many of the planned buffers can be filled before the
// converter starts, bounded by the pool size.
func (p Plan) Prefill(poolSize uint32) uint32 {
	return min(p.Cycles, poolSize)
}
