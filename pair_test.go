package asrc

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxp-imx/go-asrc/driver"
	"github.com/nxp-imx/go-asrc/driver/simdev"
	"github.com/nxp-imx/go-asrc/internal/testutil"
)

// mappedRegions is the number of live mmap regions of a configured pair,
// one per direction.
const mappedRegions = 2

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPair(t *testing.T, cfg Config, devOpts ...simdev.Option) (*Pair, *simdev.Device) {
	t.Helper()
	dev := simdev.New(devOpts...)
	p, err := Create(cfg, WithDevice(dev), WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, dev
}

func monoConfig(inRate, outRate, period uint32) Config {
	return Config{
		Channels:        1,
		InPeriodFrames:  period,
		OutPeriodFrames: period * outRate / inRate,
		InRate:          inRate,
		OutRate:         outRate,
	}
}

func TestConfigValidate(t *testing.T) {
	valid := monoConfig(48000, 16000, 300)

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"max channels", func(c *Config) { c.Channels = maxChannels }, false},
		{"zero channels", func(c *Config) { c.Channels = 0 }, true},
		{"too many channels", func(c *Config) { c.Channels = maxChannels + 1 }, true},
		{"zero input rate", func(c *Config) { c.InRate = 0 }, true},
		{"zero output rate", func(c *Config) { c.OutRate = 0 }, true},
		{"zero period", func(c *Config) { c.InPeriodFrames = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreate_InvalidConfigTouchesNoDevice(t *testing.T) {
	dev := simdev.New()
	cfg := monoConfig(48000, 16000, 300)
	cfg.Channels = 0

	p, err := Create(cfg, WithDevice(dev), WithLogger(quietLogger()))
	assert.Nil(t, p)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Empty(t, dev.Calls())
}

func TestCreate_ConfiguresPair(t *testing.T) {
	cfg := Config{
		Channels:        2,
		InPeriodFrames:  1024,
		OutPeriodFrames: 1114,
		InRate:          44100,
		OutRate:         48000,
		Type:            7,
	}
	p, dev := newTestPair(t, cfg)

	applied := dev.Config()
	assert.Equal(t, uint32(2), applied.Channels)
	assert.Equal(t, uint32(DefaultBufferCount), applied.BufferCount)
	assert.Equal(t, uint32((1024+2*44)*4), applied.BufferBytes)
	assert.Equal(t, driver.Width16Bit, applied.InputWidth)
	assert.Equal(t, driver.Width16Bit, applied.OutputWidth)
	assert.Equal(t, driver.InputClockNone, applied.InputClock)
	assert.Equal(t, driver.OutputClockASRCK1Clk, applied.OutputClock)

	assert.Equal(t, mappedRegions, dev.Mapped())
	assert.Equal(t, 1, dev.ActivePairs())

	info := p.Info()
	assert.Equal(t, int(driver.PairA), info.Index)
	assert.Equal(t, uint32(147), info.RatioNum)
	assert.Equal(t, uint32(160), info.RatioDen)
	assert.Equal(t, applied.BufferBytes, info.BufferBytes)
	assert.Equal(t, uint32(1024+2*44), info.BufferFrames)
	assert.Equal(t, uint32(DefaultBufferCount), info.BufferCount)
	assert.True(t, info.Mapped)
	assert.False(t, info.Converting)
	assert.Equal(t, 7, info.Type)
}

func TestCreate_CapsBufferSize(t *testing.T) {
	p, dev := newTestPair(t, monoConfig(48000, 48000, 65536))

	assert.Equal(t, uint32(32768), dev.Config().BufferBytes)
	assert.Equal(t, uint32(16384), p.Info().BufferFrames)
}

func TestCreate_WithBufferCount(t *testing.T) {
	dev := simdev.New()
	p, err := Create(monoConfig(48000, 16000, 300),
		WithDevice(dev), WithLogger(quietLogger()), WithBufferCount(4))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, uint32(4), dev.Config().BufferCount)
	assert.Equal(t, uint32(4), p.Info().BufferCount)
	assert.Equal(t, mappedRegions, dev.Mapped(), "one region per direction whatever the count")
}

func TestCreate_UnwindsOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		op    simdev.Op
		after int
	}{
		{"request pair", simdev.OpRequestPair, 0},
		{"configure pair", simdev.OpConfigurePair, 0},
		{"query buffer", simdev.OpQueryBuffer, 0},
		{"map input", simdev.OpMmap, 0},
		{"map output", simdev.OpMmap, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := simdev.New()
			dev.Fail(tt.op, tt.after, nil)

			p, err := Create(monoConfig(48000, 16000, 300),
				WithDevice(dev), WithLogger(quietLogger()))
			assert.Nil(t, p)
			require.ErrorIs(t, err, ErrDevice)
			assert.ErrorIs(t, err, simdev.ErrInjected)

			assert.Zero(t, dev.ActivePairs(), "pair must be released")
			assert.Zero(t, dev.Mapped(), "no region may stay mapped")
			assert.True(t, dev.Closed(), "device must be closed")
		})
	}
}

func TestCreate_MissingDeviceNode(t *testing.T) {
	p, err := Create(monoConfig(48000, 16000, 300),
		WithDevicePath(t.TempDir()+"/mxc_asrc"), WithLogger(quietLogger()))
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrDevice)
}

func TestClose(t *testing.T) {
	dev := simdev.New()
	p, err := Create(monoConfig(48000, 16000, 300), WithDevice(dev), WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.Zero(t, dev.Mapped())
	assert.Zero(t, dev.ActivePairs())
	assert.True(t, dev.Closed())

	dev.ResetCalls()
	assert.NoError(t, p.Close())
	assert.Empty(t, dev.Calls(), "second Close must not reach the device")

	assert.ErrorIs(t, p.Convert([]int16{1}, make([]int16, 1)), ErrClosed)
	assert.ErrorIs(t, p.SetRate(300, 100, 48000, 16000), ErrClosed)
	assert.ErrorIs(t, p.Reset(), ErrClosed)
}

func TestClose_RunsEveryStep(t *testing.T) {
	dev := simdev.New()
	p, err := Create(monoConfig(48000, 16000, 300), WithDevice(dev), WithLogger(quietLogger()))
	require.NoError(t, err)

	dev.Fail(simdev.OpReleasePair, 0, nil)
	err = p.Close()
	require.ErrorIs(t, err, ErrDevice)
	assert.ErrorIs(t, err, simdev.ErrInjected)

	assert.Zero(t, dev.Mapped())
	assert.True(t, dev.Closed())
}

func TestStartStopIdempotent(t *testing.T) {
	p, dev := newTestPair(t, monoConfig(48000, 16000, 300))

	require.NoError(t, p.start())
	require.NoError(t, p.start())
	assert.Equal(t, 1, dev.CallCount(simdev.OpStart))
	assert.True(t, p.Info().Converting)

	require.NoError(t, p.stop())
	require.NoError(t, p.stop())
	assert.Equal(t, 1, dev.CallCount(simdev.OpStop))
	assert.False(t, p.Info().Converting)
}

func TestRatio(t *testing.T) {
	tests := []struct {
		in, out  uint32
		num, den uint32
	}{
		{48000, 16000, 3, 1},
		{44100, 48000, 147, 160},
		{8000, 48000, 1, 6},
		{48000, 48000, 1, 1},
	}

	for _, tt := range tests {
		p, _ := newTestPair(t, monoConfig(tt.in, tt.out, 256))
		num, den := p.Ratio()
		assert.Equal(t, tt.num, num, "%d->%d", tt.in, tt.out)
		assert.Equal(t, tt.den, den, "%d->%d", tt.in, tt.out)
	}
}

func TestSetRate_UnchangedIsNoop(t *testing.T) {
	cfg := monoConfig(48000, 16000, 300)
	p, dev := newTestPair(t, cfg)
	dev.ResetCalls()

	require.NoError(t, p.SetRate(cfg.InPeriodFrames, cfg.OutPeriodFrames, cfg.InRate, cfg.OutRate))
	assert.Empty(t, dev.Calls())
}

func TestSetRate_Remaps(t *testing.T) {
	p, dev := newTestPair(t, monoConfig(44100, 48000, 441))
	num, den := p.Ratio()
	assert.Equal(t, uint32(147), num)
	assert.Equal(t, uint32(160), den)

	require.NoError(t, p.SetRate(480, 480, 48000, 48000))

	num, den = p.Ratio()
	assert.Equal(t, uint32(1), num)
	assert.Equal(t, uint32(1), den)
	assert.Equal(t, mappedRegions, dev.Mapped())
	assert.Equal(t, uint32(48000), dev.Config().InputRate)
	assert.Equal(t, uint32((480+2*48)*2), dev.Config().BufferBytes)

	out, err := p.Process(testutil.Constant(480, 1234))
	require.NoError(t, err)
	assert.Len(t, out, 480)

	require.NoError(t, p.Close())
	assert.Zero(t, dev.Mapped())
}

func TestSetRate_InvalidRate(t *testing.T) {
	p, dev := newTestPair(t, monoConfig(48000, 16000, 300))
	dev.ResetCalls()

	assert.ErrorIs(t, p.SetRate(300, 100, 0, 16000), ErrInvalidConfig)
	assert.ErrorIs(t, p.SetRate(0, 100, 48000, 16000), ErrInvalidConfig)
	assert.Empty(t, dev.Calls())
	assert.True(t, p.Info().Mapped)
}

func TestSetRate_ReconfigureFailureKeepsOldRates(t *testing.T) {
	p, dev := newTestPair(t, monoConfig(48000, 16000, 300))

	dev.Fail(simdev.OpConfigurePair, 0, nil)
	err := p.SetRate(441, 480, 44100, 48000)
	require.ErrorIs(t, err, ErrDevice)

	num, den := p.Ratio()
	assert.Equal(t, uint32(3), num)
	assert.Equal(t, uint32(1), den)
	assert.False(t, p.Info().Mapped)
	assert.Zero(t, dev.Mapped())

	err = p.Convert(testutil.Constant(300, 1), make([]int16, 100))
	assert.ErrorIs(t, err, ErrNoBuffers)

	// The same request retries once the pool is gone.
	require.NoError(t, p.SetRate(441, 480, 44100, 48000))
	assert.True(t, p.Info().Mapped)
	out, err := p.Process(testutil.Constant(441, 9))
	require.NoError(t, err)
	assert.Len(t, out, 480)
}

func TestReset(t *testing.T) {
	p, dev := newTestPair(t, monoConfig(48000, 16000, 300))

	require.NoError(t, p.Reset())
	assert.Equal(t, 1, dev.CallCount(simdev.OpFlush))

	dev.Fail(simdev.OpFlush, 0, errors.New("flush refused"))
	assert.ErrorIs(t, p.Reset(), ErrDriver)
}
