//go:build linux && (amd64 || arm64 || riscv64)

package driver

// culong is the C `unsigned long` type on 64-bit systems.
type culong = uint64
