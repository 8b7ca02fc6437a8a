package main

import (
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxp-imx/go-asrc/driver"
	"github.com/nxp-imx/go-asrc/internal/analysis"
	"github.com/nxp-imx/go-asrc/internal/audiofile"
)

func parseFlags(t *testing.T, args ...string) (options, error) {
	t.Helper()
	fs, configFile := newFlagSet()
	fs.SetOutput(io.Discard)
	require.NoError(t, fs.Parse(args))
	return loadConfig(*configFile, fs)
}

func TestLoadConfig_Defaults(t *testing.T) {
	opts, err := parseFlags(t, "in.wav", "out.wav")
	require.NoError(t, err)

	assert.Equal(t, 48000, opts.rate)
	assert.Equal(t, driver.DefaultPath, opts.device)
	assert.Equal(t, defaultPeriodFrames, opts.period)
	assert.Equal(t, 2, opts.buffers)
	assert.False(t, opts.dryRun)
	assert.Equal(t, defaultLogLevel, opts.logLevel)
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate: 16000\nperiod: 256\ndryrun: true\nloglevel: debug\n"), 0o600))

	opts, err := parseFlags(t, "-config", path, "-period", "512", "in.wav", "out.wav")
	require.NoError(t, err)

	assert.Equal(t, 16000, opts.rate, "from file")
	assert.Equal(t, 512, opts.period, "flag wins over file")
	assert.True(t, opts.dryRun)
	assert.Equal(t, "debug", opts.logLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := parseFlags(t, "-rate", "0", "in.wav", "out.wav")
	assert.Error(t, err)

	_, err = parseFlags(t, "-period", "-1", "in.wav", "out.wav")
	assert.Error(t, err)

	_, err = parseFlags(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "in.wav", "out.wav")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist, "a named config file must exist")
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestConfigureLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	f, err := configureLogger("none", "", slog.HandlerOptions{})
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = configureLogger("loud", "", slog.HandlerOptions{})
	assert.ErrorIs(t, err, errLogLevel)

	path := filepath.Join(t.TempDir(), "asrc.log")
	f, err = configureLogger("info", path, slog.HandlerOptions{})
	require.NoError(t, err)
	require.NotNil(t, f)
	slog.Info("hello", "k", 1)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func writeTone(t *testing.T, path string, rate, channels, frames int, freq float64) {
	t.Helper()
	samples := make([]int16, frames*channels)
	for i := range frames {
		v := int16(10000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		for ch := range channels {
			samples[i*channels+ch] = v
		}
	}
	require.NoError(t, audiofile.WriteWAV(path, &audiofile.Clip{
		Samples:    samples,
		Channels:   channels,
		SampleRate: rate,
	}))
}

func TestConvertFile_DryRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tone.wav")
	out := filepath.Join(dir, "tone_48k.wav")
	writeTone(t, in, 44100, 2, 44100, 1000)

	opts := options{
		rate:    48000,
		period:  1024,
		buffers: 2,
		dryRun:  true,
		warmup:  16,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stats, err := convertFile(in, out, opts, logger)
	require.NoError(t, err)

	// 43 full blocks of 1114 frames and a 68-frame tail giving 74.
	assert.Equal(t, 44, stats.blocks)
	assert.Equal(t, 43*1114+74, stats.outputFrames)
	assert.Equal(t, uint32(147), stats.ratioNum)
	assert.Equal(t, uint32(160), stats.ratioDen)

	clip, err := audiofile.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 48000, clip.SampleRate)
	assert.Equal(t, 2, clip.Channels)
	assert.Equal(t, stats.outputFrames, clip.Frames())

	report := analysis.Analyze(clip.Samples, clip.Channels, clip.SampleRate)
	assert.InDelta(t, 1000, report.DominantHz, 5)
	assert.InDelta(t, stats.inputReport.RMSDBFS, report.RMSDBFS, 1)
}

func TestConvertFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := convertFile(filepath.Join(dir, "nope.wav"), filepath.Join(dir, "out.wav"),
		options{rate: 48000, period: 1024, buffers: 2, dryRun: true},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_InsufficientArgs(t *testing.T) {
	assert.Error(t, run([]string{"-dry-run", "only-one.wav"}))
}
