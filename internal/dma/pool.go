// Package dma owns the memory-mapped DMA buffers of a converter pair.
//
// The driver exposes all input buffers as one contiguous region and all
// output buffers as another. A Pool maps each region once and slices it into
// uniform per-index views; the views never outlive the mapping they came
// from.
package dma

import (
	"errors"
	"fmt"

	"github.com/nxp-imx/go-asrc/driver"
)

var (
	// ErrBufferTooSmall is returned when the driver reports buffers shorter
	// than the configured DMA size.
	ErrBufferTooSmall = errors.New("driver buffers smaller than configured size")

	// ErrUnmapped is returned when a buffer is requested from a pool that has
	// been unmapped.
	ErrUnmapped = errors.New("buffer pool is not mapped")
)

// Region is one mapped area of device memory, released exactly once.
type Region struct {
	mem    []byte
	stride int
}

// views slices the region into count buffers of stride bytes.
func (r *Region) views(count int) [][]byte {
	out := make([][]byte, count)
	for i := range out {
		start := i * r.stride
		out[i] = r.mem[start : start+r.stride : start+r.stride]
	}
	return out
}

// Pool holds the mapped input and output buffers of one pair.
type Pool struct {
	mapper driver.Mapper
	input  *Region
	output *Region
	in     [][]byte
	out    [][]byte
}

// Map queries buffer geometry from m and maps count input and count output
// buffers. Each buffer must hold at least need bytes. On failure nothing is
// left mapped.
func Map(m driver.Mapper, count, need int) (*Pool, error) {
	if count < 1 {
		return nil, fmt.Errorf("invalid buffer count %d", count)
	}

	g, err := m.QueryBuffer(0)
	if err != nil {
		return nil, fmt.Errorf("query ASRC buffers failed: %w", err)
	}
	if int(g.InputLength) < need || int(g.OutputLength) < need {
		return nil, fmt.Errorf("%w: input %d, output %d, need %d",
			ErrBufferTooSmall, g.InputLength, g.OutputLength, need)
	}

	p := &Pool{mapper: m}

	input, err := mapRegion(m, g.InputOffset, int(g.InputLength), count)
	if err != nil {
		return nil, fmt.Errorf("mmap ASRC input buffers failed: %w", err)
	}
	p.input = input

	output, err := mapRegion(m, g.OutputOffset, int(g.OutputLength), count)
	if err != nil {
		_ = p.Unmap()
		return nil, fmt.Errorf("mmap ASRC output buffers failed: %w", err)
	}
	p.output = output

	p.in = input.views(count)
	p.out = output.views(count)
	return p, nil
}

func mapRegion(m driver.Mapper, offset int64, stride, count int) (*Region, error) {
	mem, err := m.Mmap(offset, stride*count)
	if err != nil {
		return nil, err
	}
	return &Region{mem: mem, stride: stride}, nil
}

// Unmap releases both regions and drops every view. It is safe to call more
// than once; the first unmap error is returned.
func (p *Pool) Unmap() error {
	if p == nil {
		return nil
	}

	var errs []error
	for _, r := range []**Region{&p.input, &p.output} {
		if *r == nil {
			continue
		}
		if err := p.mapper.Munmap((*r).mem); err != nil {
			errs = append(errs, err)
		}
		*r = nil
	}
	p.in = nil
	p.out = nil

	return errors.Join(errs...)
}

// Mapped reports whether the pool still holds its regions.
func (p *Pool) Mapped() bool {
	return p != nil && p.input != nil && p.output != nil
}

// Count returns the number of buffers in each direction.
func (p *Pool) Count() int {
	if p == nil {
		return 0
	}
	return len(p.in)
}

// Input returns input buffer i.
func (p *Pool) Input(i int) ([]byte, error) {
	return p.buffer(driver.DirectionInput, i)
}

// Output returns output buffer i.
func (p *Pool) Output(i int) ([]byte, error) {
	return p.buffer(driver.DirectionOutput, i)
}

func (p *Pool) buffer(dir driver.Direction, i int) ([]byte, error) {
	if !p.Mapped() {
		return nil, ErrUnmapped
	}
	views := p.in
	if dir == driver.DirectionOutput {
		views = p.out
	}
	if i < 0 || i >= len(views) {
		return nil, fmt.Errorf("%s buffer index %d out of range [0, %d)", dir, i, len(views))
	}
	return views[i], nil
}
