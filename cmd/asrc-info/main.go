// Command asrc-info shows how a converter pair is laid out for a given rate
// pair and how a block is split into hardware buffer cycles.
//
// Usage:
//
//	asrc-info -input-rate 44100 -output-rate 48000 -channels 2 -block 4410
//	asrc-info -dry-run -demo
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/nxp-imx/go-asrc"
	"github.com/nxp-imx/go-asrc/driver"
	"github.com/nxp-imx/go-asrc/driver/simdev"
	"github.com/nxp-imx/go-asrc/internal/mathutil"
)

func main() {
	// Command-line flags
	var (
		inputRate  = flag.Uint("input-rate", defaultInputRate, "Input sample rate in Hz")
		outputRate = flag.Uint("output-rate", defaultOutputRate, "Output sample rate in Hz")
		channels   = flag.Uint("channels", defaultChannels, "Number of audio channels")
		period     = flag.Uint("period", defaultPeriod, "Input frames per conversion block")
		block      = flag.Uint("block", 0, "Convert a test tone of this many frames (0 = period)")
		device     = flag.String("device", driver.DefaultPath, "ASRC device node")
		dryRun     = flag.Bool("dry-run", false, "Use the simulated converter instead of the device")
		demo       = flag.Bool("demo", false, "Run a demonstration")
	)
	flag.Parse()

	open := func(cfg asrc.Config) (*asrc.Pair, error) {
		if *dryRun {
			return asrc.Create(cfg, asrc.WithDevice(simdev.New()))
		}
		return asrc.Create(cfg, asrc.WithDevicePath(*device))
	}

	if *demo {
		runDemo(open)
		return
	}

	cfg := asrc.Config{
		Channels:        uint32(*channels),
		InPeriodFrames:  uint32(*period),
		OutPeriodFrames: uint32(*period * *outputRate / max(*inputRate, 1)),
		InRate:          uint32(*inputRate),
		OutRate:         uint32(*outputRate),
	}

	pair, err := open(cfg)
	if err != nil {
		log.Fatalf("Failed to create pair: %v", err)
	}
	defer pair.Close()

	info := pair.Info()
	fmt.Printf("Pair created:\n")
	fmt.Printf("  Index: %d\n", info.Index)
	fmt.Printf("  Ratio: %d:%d (%d Hz -> %d Hz)\n", info.RatioNum, info.RatioDen, info.InRate, info.OutRate)
	fmt.Printf("  Buffers: %d x %d frames (%.2f KB each direction)\n",
		info.BufferCount, info.BufferFrames,
		float64(info.BufferCount*info.BufferBytes)/bytesPerKilobyte)
	fmt.Printf("  Padding: %d frames per edge\n", mathutil.PaddingFrames(info.InRate))

	frames := *block
	if frames == 0 {
		frames = *period
	}
	printPlan(info, uint32(frames))

	fmt.Println("\nProcessing test signal...")
	testSignal := generateTestSignal(int(frames), int(info.Channels), float64(info.InRate))
	output, err := pair.Process(testSignal)
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}

	fmt.Printf("Input frames: %d\n", frames)
	fmt.Printf("Output frames: %d\n", len(output)/int(info.Channels))
}

func printPlan(info asrc.Info, frames uint32) {
	plan := mathutil.PlanConversion(frames, info.BufferFrames, info.InRate)
	ratio := mathutil.ReduceRatio(info.InRate, info.OutRate)

	fmt.Printf("\nBlock of %d frames:\n", frames)
	fmt.Printf("  Cycles: %d (%d prefilled)\n", plan.Cycles, plan.Prefill(info.BufferCount))
	fmt.Printf("  Head padding: %d frames, tail padding: %d frames\n", plan.HeadPadding, plan.TailPadding)
	fmt.Printf("  Output: %d frames after skipping %d padding frames\n",
		ratio.OutputFrames(frames), ratio.OutputFrames(plan.HeadPadding))
	if ratio.IsUnity() {
		fmt.Println("  Pass-through: input and output rates match")
		return
	}
	fmt.Printf("  Input per output period: %d frames\n", ratio.InputFrames(info.OutPeriodFrames))
}

func generateTestSignal(frames, channels int, sampleRate float64) []int16 {
	signal := make([]int16, frames*channels)

	// Generate a 1kHz sine wave
	omega := 2 * math.Pi * testSignalFrequency / sampleRate

	for i := range frames {
		v := int16(testSignalAmplitude * math.Sin(omega*float64(i)))
		for ch := range channels {
			signal[i*channels+ch] = v
		}
	}

	return signal
}

func runDemo(open func(asrc.Config) (*asrc.Pair, error)) {
	fmt.Println("=== ASRC Pair Layout Demo ===")

	// Demo 1: Common rate pairs
	fmt.Println("1. Common Rate Pairs")
	fmt.Println("--------------------")

	testRatios := []struct {
		from, to uint32
		name     string
	}{
		{sampleRateCD, sampleRateDAT, "CD to DAT"},
		{sampleRateDAT, sampleRateCD, "DAT to CD"},
		{sampleRateDAT, sampleRateVoIP, "DAT to VoIP"},
		{sampleRateHiRes, sampleRateDAT, "Hi-res to DAT"},
	}

	for _, r := range testRatios {
		pair, err := open(asrc.Config{
			Channels:       stereoChannels,
			InPeriodFrames: defaultPeriod,
			InRate:         r.from,
			OutRate:        r.to,
		})
		if err != nil {
			fmt.Printf("  %s: Error - %v\n", r.name, err)
			continue
		}

		info := pair.Info()
		fmt.Printf("  %s (%d Hz -> %d Hz): ratio %d:%d, %d frames per buffer\n",
			r.name, r.from, r.to, info.RatioNum, info.RatioDen, info.BufferFrames)
		_ = pair.Close()
	}

	// Demo 2: Channel counts
	fmt.Println("\n2. Multi-channel Buffers")
	fmt.Println("------------------------")

	channelCounts := []uint32{monoChannels, stereoChannels, surround5_1, surround7_1}

	for _, ch := range channelCounts {
		pair, err := open(asrc.Config{
			Channels:       ch,
			InPeriodFrames: defaultPeriod,
			InRate:         sampleRateDAT,
			OutRate:        sampleRateCD,
		})
		if err != nil {
			fmt.Printf("  %d channels: Error - %v\n", ch, err)
			continue
		}

		info := pair.Info()
		fmt.Printf("  %d channels: %d frames per buffer, %.1f KB per buffer\n",
			ch, info.BufferFrames, float64(info.BufferBytes)/bytesPerKilobyte)
		_ = pair.Close()
	}

	fmt.Println("\n=== Demo Complete ===")
}
