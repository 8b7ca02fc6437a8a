// Package audiofile decodes WAV, MP3 and Ogg Vorbis files to interleaved
// 16-bit PCM and writes 16-bit WAV files.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/nxp-imx/go-asrc/internal/simdops"
)

// Format constants
const (
	bitDepth16     = 16
	bytesPerSample = 2
	pcmFormat      = 1 // WAVE_FORMAT_PCM

	// go-mp3 always decodes to interleaved stereo.
	mp3Channels = 2
)

var (
	// ErrUnsupportedFormat is returned for unknown extensions and for WAV
	// sample widths that cannot be reduced to 16 bits.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFile is returned when a file cannot be decoded or holds no
	// audio.
	ErrInvalidFile = errors.New("invalid audio file")
)

// Clip is decoded audio as interleaved 16-bit samples.
type Clip struct {
	Samples    []int16
	Channels   int
	SampleRate int

	// Format is the container the clip was decoded from: "wav", "mp3" or "ogg".
	Format string
}

// Frames returns the number of complete frames in the clip.
func (c *Clip) Frames() int {
	if c.Channels < 1 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Decode reads the file at path, choosing the decoder by extension.
func Decode(path string) (*Clip, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "oga" {
		format = "ogg"
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	clip, err := DecodeReader(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return clip, nil
}

// DecodeReader decodes r as format ("wav", "mp3" or "ogg").
func DecodeReader(r io.ReadSeeker, format string) (*Clip, error) {
	var (
		clip *Clip
		err  error
	)
	switch format {
	case "wav", "wave":
		clip, err = decodeWAV(r)
	case "mp3":
		clip, err = decodeMP3(r)
	case "ogg":
		clip, err = decodeOgg(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if clip.Frames() == 0 || clip.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: no audio frames", ErrInvalidFile)
	}
	clip.Samples = clip.Samples[:clip.Frames()*clip.Channels]
	return clip, nil
}

func decodeWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	depth := int(decoder.BitDepth)
	shift := depth - bitDepth16
	if shift < 0 || depth%8 != 0 {
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, depth)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v >> shift)
	}

	return &Clip{
		Samples:    samples,
		Channels:   int(decoder.NumChans),
		SampleRate: int(decoder.SampleRate),
		Format:     "wav",
	}, nil
}

func decodeMP3(r io.Reader) (*Clip, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	samples := make([]int16, len(pcm)/bytesPerSample)
	for i := range samples {
		samples[i] = int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
	}

	return &Clip{
		Samples:    samples,
		Channels:   mp3Channels,
		SampleRate: dec.SampleRate(),
		Format:     "mp3",
	}, nil
}

func decodeOgg(r io.Reader) (*Clip, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	samples := make([]int16, len(data))
	simdops.ToInt16(samples, data)

	return &Clip{
		Samples:    samples,
		Channels:   format.Channels,
		SampleRate: format.SampleRate,
		Format:     "ogg",
	}, nil
}

// WriteWAV writes clip to path as a 16-bit PCM WAV file.
func WriteWAV(path string, clip *Clip) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	return EncodeWAV(f, clip)
}

// EncodeWAV writes clip to w as a 16-bit PCM WAV stream.
func EncodeWAV(w io.WriteSeeker, clip *Clip) error {
	if clip.Channels < 1 || clip.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, clip.Channels, clip.SampleRate)
	}

	enc := wav.NewEncoder(w, clip.SampleRate, bitDepth16, clip.Channels, pcmFormat)

	data := make([]int, len(clip.Samples))
	for i, s := range clip.Samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: clip.Channels,
			SampleRate:  clip.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	return nil
}
