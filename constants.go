package asrc

// Channel constants
const (
	minChannels = 1
	maxChannels = 10 // Largest channel count one pair can carry
)

// Buffer pool constants
const (
	// DefaultBufferCount is the number of DMA buffers requested per direction.
	DefaultBufferCount = 2

	bytesPerSample = 2 // S16_LE
)
