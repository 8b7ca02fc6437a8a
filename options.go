package asrc

import (
	"log/slog"

	"github.com/nxp-imx/go-asrc/driver"
)

type options struct {
	device      driver.Device
	path        string
	logger      *slog.Logger
	bufferCount uint32
}

func defaultOptions() options {
	return options{
		path:        driver.DefaultPath,
		bufferCount: DefaultBufferCount,
	}
}

// Option configures Create.
type Option func(*options)

// WithDevice uses an already opened device instead of opening the device
// node. The pair takes ownership and closes it on Close.
func WithDevice(d driver.Device) Option {
	return func(o *options) {
		o.device = d
	}
}

// WithDevicePath opens the ASRC device at path instead of driver.DefaultPath.
func WithDevicePath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithLogger sets the logger diagnostics are written to. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBufferCount sets how many DMA buffers are requested per direction.
func WithBufferCount(n uint32) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferCount = n
		}
	}
}
