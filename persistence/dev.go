package persistence

import (
	"io"

	"github.com/pkg/errors"

	"github.com/outofforest/chunkstore/types"
)

// Dev is the interface required from the device.
type Dev interface {
	io.ReaderAt
	io.WriterAt
	Sync() error
	Size() int64
}

// ErrInvalidDevice is returned if device can't be addressed by the store.
var ErrInvalidDevice = errors.New("invalid device")

func validateDev(dev Dev) error {
	size := dev.Size()
	if size <= 0 {
		return errors.Wrapf(ErrInvalidDevice, "device is empty")
	}
	if size > types.MaxDeviceSize {
		return errors.Wrapf(ErrInvalidDevice, "device is too large, maximum size is: %d bytes, provided: %d",
			types.MaxDeviceSize, size)
	}
	return nil
}
