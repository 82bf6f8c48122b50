package memdev

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewDeviceIsErased(t *testing.T) {
	assertT := assert.New(t)

	dev := New(4)
	assertT.EqualValues(4, dev.Size())
	assertT.Equal([]byte{ErasedByte, ErasedByte, ErasedByte, ErasedByte}, dev.data)

	dev.Erase(0x00)
	assertT.Equal([]byte{0x00, 0x00, 0x00, 0x00}, dev.data)
}

func TestReadAt(t *testing.T) {
	assertT := assert.New(t)

	dev := newDev()

	n, err := dev.ReadAt(nil, 0)
	assertT.NoError(err)
	assertT.EqualValues(0, n)

	buf := make([]byte, 3)
	n, err = dev.ReadAt(buf, 0)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x00, 0x01, 0x02}, buf)

	n, err = dev.ReadAt(buf, 1)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x01, 0x02, 0x03}, buf)

	n, err = dev.ReadAt(buf, 7)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x07, 0x08, 0x09}, buf)

	n, err = dev.ReadAt(buf, 9)
	assertT.ErrorIs(err, io.EOF)
	assertT.EqualValues(1, n)
	assertT.EqualValues([]byte{0x09, 0x08, 0x09}, buf)

	n, err = dev.ReadAt(buf, 10)
	assertT.ErrorIs(err, io.EOF)
	assertT.EqualValues(0, n)

	_, err = dev.ReadAt(buf, 11)
	assertT.Error(err)

	_, err = dev.ReadAt(buf, -1)
	assertT.Error(err)
}

func TestWriteAt(t *testing.T) {
	assertT := assert.New(t)

	dev := newDev()

	n, err := dev.WriteAt(nil, 0)
	assertT.NoError(err)
	assertT.EqualValues(0, n)

	buf := []byte{0x10, 0x11, 0x12}
	n, err = dev.WriteAt(buf, 0)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x10, 0x11, 0x12, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}, dev.data)

	n, err = dev.WriteAt(buf, 1)
	assertT.NoError(err)
	assertT.EqualValues(3, n)
	assertT.EqualValues([]byte{0x10, 0x10, 0x11, 0x12, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}, dev.data)

	n, err = dev.WriteAt(buf, 9)
	assertT.ErrorIs(err, io.ErrShortWrite)
	assertT.EqualValues(1, n)
	assertT.EqualValues([]byte{0x10, 0x10, 0x11, 0x12, 0x04, 0x05, 0x06, 0x07, 0x08, 0x10}, dev.data)

	_, err = dev.WriteAt(buf, 11)
	assertT.Error(err)
}

func TestDisconnect(t *testing.T) {
	assertT := assert.New(t)

	dev := newDev()
	dev.Disconnect()

	buf := make([]byte, 1)
	_, err := dev.ReadAt(buf, 0)
	assertT.True(errors.Is(err, ErrUnavailable))
	_, err = dev.WriteAt(buf, 0)
	assertT.True(errors.Is(err, ErrUnavailable))
	assertT.ErrorIs(dev.Sync(), ErrUnavailable)

	dev.Connect()

	_, err = dev.WriteAt([]byte{0xaa}, 0)
	assertT.NoError(err)
	_, err = dev.ReadAt(buf, 0)
	assertT.NoError(err)
	assertT.Equal([]byte{0xaa}, buf)
}

func TestTransfers(t *testing.T) {
	assertT := assert.New(t)

	dev := newDev()
	_, _ = dev.ReadAt(make([]byte, 2), 0)
	_, _ = dev.ReadAt(make([]byte, 2), 2)
	_, _ = dev.WriteAt(make([]byte, 2), 0)

	nReads, nWrites := dev.Transfers()
	assertT.Equal(2, nReads)
	assertT.Equal(1, nWrites)
}

func TestSync(t *testing.T) {
	assert.NoError(t, newDev().Sync())
}

func newDev() *MemDev {
	const size = 10

	dev := New(size)
	for i := 0; i < size; i++ {
		dev.data[i] = byte(i)
	}

	return dev
}
