package mathutil

// Padding constants
const (
	// PaddingMS is the lead-in and lead-out padding applied around every
	// conversion, in milliseconds of input audio.
	PaddingMS = 1

	msPerSecond = 1000
	paddingEnds = 2 // head + tail
)

// DMA buffer constants
const (
	// MaxDMABytes caps the per-buffer DMA size requested from the driver.
	MaxDMABytes = 32768

	// BytesPerSample is the only sample width the converter is driven at.
	BytesPerSample = 2
)
