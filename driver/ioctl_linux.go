//go:build linux && (amd64 || arm64 || riscv64 || 386 || arm)

package driver

import "unsafe"

// ioctl request encoding (asm-generic/ioctl.h), shared by arm, arm64 and x86.
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2

	asrcIOCMagic = 'C'
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<iocDirShift | asrcIOCMagic<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

func iow(nr, size uintptr) uintptr  { return ioc(iocWrite, nr, size) }
func iowr(nr, size uintptr) uintptr { return ioc(iocRead|iocWrite, nr, size) }

// ASRC requests, numbered as in linux/mxc_asrc.h.
var (
	reqPair        = iowr(0, unsafe.Sizeof(asrcReq{}))
	reqConfigPair  = iowr(1, unsafe.Sizeof(asrcConfig{}))
	reqQueryBuf    = iowr(2, unsafe.Sizeof(asrcQueryBuf{}))
	reqQInBuf      = iowr(3, unsafe.Sizeof(asrcBuffer{}))
	reqQOutBuf     = iowr(5, unsafe.Sizeof(asrcBuffer{}))
	reqStartConv   = iow(7, unsafe.Sizeof(PairIndex(0)))
	reqStopConv    = iow(8, unsafe.Sizeof(PairIndex(0)))
	reqReleasePair = iow(9, unsafe.Sizeof(PairIndex(0)))
	reqFlush       = iow(11, unsafe.Sizeof(PairIndex(0)))
	reqPollDQ      = iowr(12, unsafe.Sizeof(asrcBuffer{}))
)
