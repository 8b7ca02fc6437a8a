//go:build !(linux && (amd64 || arm64 || riscv64 || 386 || arm))

package driver

// Open reports ErrUnsupported; the ASRC driver exists only on Linux for the
// architectures whose ioctl encoding and struct layout are known.
func Open(path string) (Device, error) {
	return nil, ErrUnsupported
}
