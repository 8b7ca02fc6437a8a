package main

import (
	"fmt"
	"log/slog"

	"github.com/nxp-imx/go-asrc"
	"github.com/nxp-imx/go-asrc/driver/simdev"
	"github.com/nxp-imx/go-asrc/internal/analysis"
	"github.com/nxp-imx/go-asrc/internal/audiofile"
)

// Progress reporting
const (
	progressInterval = 10 // Log progress every N%
	percentScale     = 100
)

type convertStats struct {
	inputRate    int
	outputRate   int
	channels     int
	ratioNum     uint32
	ratioDen     uint32
	inputFrames  int
	outputFrames int
	blocks       int
	inputReport  analysis.Report
	outputReport analysis.Report
}

// progressTracker handles progress reporting.
type progressTracker struct {
	logger       *slog.Logger
	totalFrames  int
	lastProgress int
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int) {
	if p.totalFrames == 0 {
		return
	}

	progress := currentFrames * percentScale / p.totalFrames
	if progress >= p.lastProgress+progressInterval {
		p.logger.Info("progress", "percent", progress)
		p.lastProgress = progress
	}
}

// openPair creates a converter pair on the device or, for dry runs, on a
// simulated device.
func openPair(cfg asrc.Config, opts options, logger *slog.Logger) (*asrc.Pair, error) {
	pairOpts := []asrc.Option{
		asrc.WithLogger(logger),
		asrc.WithBufferCount(uint32(opts.buffers)),
	}
	if opts.dryRun {
		pairOpts = append(pairOpts, asrc.WithDevice(simdev.New(simdev.WithWarmup(opts.warmup))))
	} else {
		pairOpts = append(pairOpts, asrc.WithDevicePath(opts.device))
	}
	return asrc.Create(cfg, pairOpts...)
}

// convertFile decodes inputPath, converts it block by block and writes the
// result to outputPath as 16-bit WAV.
func convertFile(inputPath, outputPath string, opts options, logger *slog.Logger) (stats *convertStats, err error) {
	clip, err := audiofile.Decode(inputPath)
	if err != nil {
		return nil, err
	}
	logger.Info("input decoded",
		"format", clip.Format,
		"rate", clip.SampleRate,
		"channels", clip.Channels,
		"frames", clip.Frames())

	cfg := asrc.Config{
		Channels:        uint32(clip.Channels),
		InPeriodFrames:  uint32(opts.period),
		OutPeriodFrames: uint32(opts.period * opts.rate / clip.SampleRate),
		InRate:          uint32(clip.SampleRate),
		OutRate:         uint32(opts.rate),
	}
	pair, err := openPair(cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := pair.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	num, den := pair.Ratio()
	stats = &convertStats{
		inputRate:   clip.SampleRate,
		outputRate:  opts.rate,
		channels:    clip.Channels,
		ratioNum:    num,
		ratioDen:    den,
		inputFrames: clip.Frames(),
	}
	progress := &progressTracker{logger: logger, totalFrames: clip.Frames()}

	blockSamples := opts.period * clip.Channels
	out := make([]int16, 0, pair.OutputFrames(clip.Frames())*clip.Channels)

	for off := 0; off < len(clip.Samples); off += blockSamples {
		block := clip.Samples[off:min(off+blockSamples, len(clip.Samples))]

		converted, err := pair.Process(block)
		if err != nil {
			return nil, fmt.Errorf("conversion failed at frame %d: %w", off/clip.Channels, err)
		}
		out = append(out, converted...)
		stats.blocks++

		progress.reportIfNeeded(off/clip.Channels + len(block)/clip.Channels)
	}

	result := &audiofile.Clip{
		Samples:    out,
		Channels:   clip.Channels,
		SampleRate: opts.rate,
	}
	if err := audiofile.WriteWAV(outputPath, result); err != nil {
		return nil, err
	}

	stats.outputFrames = result.Frames()
	stats.inputReport = analysis.Analyze(clip.Samples, clip.Channels, clip.SampleRate)
	stats.outputReport = analysis.Analyze(result.Samples, result.Channels, result.SampleRate)
	return stats, nil
}

func printReport(label string, r analysis.Report) {
	fmt.Printf("  %s: %.2fs, peak %.1f dBFS, RMS %.1f dBFS, DC %.4f, dominant %.1f Hz",
		label, r.Duration.Seconds(), r.PeakDBFS, r.RMSDBFS, r.DC, r.DominantHz)
	if r.Clipped > 0 {
		fmt.Printf(", %d clipped", r.Clipped)
	}
	fmt.Println()
}
