//go:build linux && (amd64 || arm64 || riscv64 || 386 || arm)

package driver

// asrcReq mirrors struct asrc_req.
type asrcReq struct {
	ChnNum uint32
	Index  PairIndex
}

// asrcConfig mirrors struct asrc_config.
type asrcConfig struct {
	Pair             PairIndex
	ChannelNum       uint32
	BufferNum        uint32
	DMABufferSize    uint32
	InputSampleRate  uint32
	OutputSampleRate uint32
	InputWordWidth   WordWidth
	OutputWordWidth  WordWidth
	InClk            InputClock
	OutClk           OutputClock
}

// asrcQueryBuf mirrors struct asrc_querybuf. The offsets are unsigned long,
// so the layout differs between 32-bit and 64-bit kernels.
type asrcQueryBuf struct {
	BufferIndex  uint32
	InputLength  uint32
	OutputLength uint32
	InputOffset  culong
	OutputOffset culong
}

// asrcBuffer mirrors struct asrc_buffer.
type asrcBuffer struct {
	Index            uint32
	Length           uint32
	OutputLastLength uint32
	BufValid         int32
	Direction        Direction
}
