//go:build linux && (amd64 || arm64 || riscv64 || 386 || arm)

package driver

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Kernel is a Device backed by the ASRC character device.
type Kernel struct {
	file *os.File
	path string
}

var _ Device = (*Kernel)(nil)

// Open opens the ASRC character device at path for reading and writing.
func Open(path string) (*Kernel, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open ASRC device %s: %w", path, err)
	}

	return &Kernel{file: file, path: path}, nil
}

// Path returns the device path this handle was opened from.
func (k *Kernel) Path() string {
	return k.path
}

// ioctl issues a request, retrying when a signal interrupts the call.
// The Go runtime preempts goroutines with signals, so EINTR is routine while
// PollDequeue waits.
func (k *Kernel) ioctl(req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, k.file.Fd(), req, uintptr(arg))
		switch {
		case errno == 0:
			return nil
		case errno == unix.EINTR:
			continue
		default:
			return errno
		}
	}
}

// RequestPair implements Device.
func (k *Kernel) RequestPair(channels uint32) (PairIndex, error) {
	req := asrcReq{ChnNum: channels}
	if err := k.ioctl(reqPair, unsafe.Pointer(&req)); err != nil {
		return PairInvalid, fmt.Errorf("ioctl ASRC_REQ_PAIR failed: %w", err)
	}
	return req.Index, nil
}

// ConfigurePair implements Device.
func (k *Kernel) ConfigurePair(cfg PairConfig) error {
	c := asrcConfig{
		Pair:             cfg.Pair,
		ChannelNum:       cfg.Channels,
		BufferNum:        cfg.BufferCount,
		DMABufferSize:    cfg.BufferBytes,
		InputSampleRate:  cfg.InputRate,
		OutputSampleRate: cfg.OutputRate,
		InputWordWidth:   cfg.InputWidth,
		OutputWordWidth:  cfg.OutputWidth,
		InClk:            cfg.InputClock,
		OutClk:           cfg.OutputClock,
	}
	if err := k.ioctl(reqConfigPair, unsafe.Pointer(&c)); err != nil {
		return fmt.Errorf("ioctl ASRC_CONFIG_PAIR failed for pair %d: %w", cfg.Pair, err)
	}
	return nil
}

// QueryBuffer implements Mapper.
func (k *Kernel) QueryBuffer(index uint32) (Geometry, error) {
	q := asrcQueryBuf{BufferIndex: index}
	if err := k.ioctl(reqQueryBuf, unsafe.Pointer(&q)); err != nil {
		return Geometry{}, fmt.Errorf("ioctl ASRC_QUERYBUF failed: %w", err)
	}
	return Geometry{
		InputOffset:  int64(q.InputOffset),
		InputLength:  q.InputLength,
		OutputOffset: int64(q.OutputOffset),
		OutputLength: q.OutputLength,
	}, nil
}

// Mmap implements Mapper.
func (k *Kernel) Mmap(offset int64, length int) ([]byte, error) {
	region, err := unix.Mmap(int(k.file.Fd()), offset, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap of %d bytes at offset %#x failed: %w", length, offset, err)
	}
	return region, nil
}

// Munmap implements Mapper.
func (k *Kernel) Munmap(region []byte) error {
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("munmap failed: %w", err)
	}
	return nil
}

// QueueInput implements Device.
func (k *Kernel) QueueInput(buf Buffer) error {
	b := asrcBuffer{Index: buf.Index, Length: buf.Length, Direction: DirectionInput}
	if err := k.ioctl(reqQInBuf, unsafe.Pointer(&b)); err != nil {
		return fmt.Errorf("ioctl ASRC_Q_INBUF failed for buffer %d: %w", buf.Index, err)
	}
	return nil
}

// QueueOutput implements Device.
func (k *Kernel) QueueOutput(buf Buffer) error {
	b := asrcBuffer{Index: buf.Index, Length: buf.Length, Direction: DirectionOutput}
	if err := k.ioctl(reqQOutBuf, unsafe.Pointer(&b)); err != nil {
		return fmt.Errorf("ioctl ASRC_Q_OUTBUF failed for buffer %d: %w", buf.Index, err)
	}
	return nil
}

// PollDequeue implements Device.
func (k *Kernel) PollDequeue() (Buffer, error) {
	var b asrcBuffer
	if err := k.ioctl(reqPollDQ, unsafe.Pointer(&b)); err != nil {
		return Buffer{}, fmt.Errorf("ioctl ASRC_POLL_DQ failed: %w", err)
	}
	return Buffer{Index: b.Index, Length: b.Length, Direction: b.Direction}, nil
}

// StartConversion implements Device.
func (k *Kernel) StartConversion(pair PairIndex) error {
	return k.pairRequest(reqStartConv, "ASRC_START_CONV", pair)
}

// StopConversion implements Device.
func (k *Kernel) StopConversion(pair PairIndex) error {
	return k.pairRequest(reqStopConv, "ASRC_STOP_CONV", pair)
}

// Flush implements Device.
func (k *Kernel) Flush(pair PairIndex) error {
	return k.pairRequest(reqFlush, "ASRC_FLUSH", pair)
}

// ReleasePair implements Device.
func (k *Kernel) ReleasePair(pair PairIndex) error {
	return k.pairRequest(reqReleasePair, "ASRC_RELEASE_PAIR", pair)
}

func (k *Kernel) pairRequest(req uintptr, name string, pair PairIndex) error {
	if err := k.ioctl(req, unsafe.Pointer(&pair)); err != nil {
		return fmt.Errorf("ioctl %s failed for pair %d: %w", name, pair, err)
	}
	return nil
}

// Close implements Device. Closing twice is a no-op.
func (k *Kernel) Close() error {
	if k.file == nil {
		return nil
	}
	err := k.file.Close()
	k.file = nil
	return err
}
