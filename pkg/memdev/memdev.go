package memdev

import (
	"io"

	"github.com/pkg/errors"
)

var (
	_ io.ReaderAt = &MemDev{}
	_ io.WriterAt = &MemDev{}
)

// ErasedByte is the value of every byte of the fresh device, matching erased EEPROM cells.
const ErasedByte = 0xff

// ErrUnavailable is returned by all the operations while the device is disconnected.
var ErrUnavailable = errors.New("device is unavailable")

// MemDev simulates device io operations in memory.
type MemDev struct {
	size         int64
	data         []byte
	disconnected bool
	nReads       int
	nWrites      int
}

// New returns new memdev with all the bytes set to ErasedByte.
func New(size int64) *MemDev {
	md := &MemDev{
		size: size,
		data: make([]byte, size),
	}
	md.Erase(ErasedByte)
	return md
}

// Erase sets all the bytes of the device to the provided value.
func (md *MemDev) Erase(value byte) {
	for i := range md.data {
		md.data[i] = value
	}
}

// Disconnect makes all the subsequent operations fail with ErrUnavailable until Connect is called.
func (md *MemDev) Disconnect() {
	md.disconnected = true
}

// Connect reverts Disconnect.
func (md *MemDev) Connect() {
	md.disconnected = false
}

// ReadAt reads data from the memdev.
func (md *MemDev) ReadAt(p []byte, offset int64) (int, error) {
	if md.disconnected {
		return 0, errors.WithStack(ErrUnavailable)
	}
	if offset < 0 || offset > md.size {
		return 0, errors.Errorf("invalid offset: %d", offset)
	}
	md.nReads++
	n := copy(p, md.data[offset:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt writes data to the memdev.
func (md *MemDev) WriteAt(p []byte, offset int64) (int, error) {
	if md.disconnected {
		return 0, errors.WithStack(ErrUnavailable)
	}
	if offset < 0 || offset > md.size {
		return 0, errors.Errorf("invalid offset: %d", offset)
	}
	md.nWrites++
	n := copy(md.data[offset:], p)
	if n < len(p) {
		return n, errors.WithStack(io.ErrShortWrite)
	}
	return n, nil
}

// Sync does nothing, memdev has no buffers.
func (md *MemDev) Sync() error {
	if md.disconnected {
		return errors.WithStack(ErrUnavailable)
	}
	return nil
}

// Size returns the byte size of the memdev.
func (md *MemDev) Size() int64 {
	return md.size
}

// Transfers returns the number of read and write operations executed so far.
func (md *MemDev) Transfers() (int, int) {
	return md.nReads, md.nWrites
}
