package pipeline

// Sample layout constants
const (
	bytesPerSample = 2 // S16_LE, the only width the converter is driven at
	minChannels    = 1
)

// Ring buffer constants
const (
	defaultRingCapacity = 4096 // Initial ring capacity in samples
	bufferGrowthFactor  = 2    // Factor for buffer growth
)
