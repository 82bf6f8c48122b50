package filedev

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

var (
	_ io.ReaderAt = &FileDev{}
	_ io.WriterAt = &FileDev{}
)

// FileDev uses file handle as a device.
type FileDev struct {
	file *os.File
	size int64
}

// New returns new filedev. Size of the device is the size of the file.
func New(file *os.File) (*FileDev, error) {
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &FileDev{
		file: file,
		size: size,
	}, nil
}

// Create creates the image file of the requested size with all the bytes set to fill.
func Create(path string, size int64, fill byte) (*FileDev, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	buf := make([]byte, size)
	for i := range buf {
		buf[i] = fill
	}
	if _, err := file.WriteAt(buf, 0); err != nil {
		_ = file.Close()
		return nil, errors.WithStack(err)
	}

	return &FileDev{
		file: file,
		size: size,
	}, nil
}

// Open opens existing image file.
func Open(path string) (*FileDev, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fd, err := New(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return fd, nil
}

// ReadAt reads data from the file.
func (fd *FileDev) ReadAt(p []byte, offset int64) (int, error) {
	n, err := fd.file.ReadAt(p, offset)
	if err != nil {
		return n, errors.WithStack(err)
	}
	return n, nil
}

// WriteAt writes data to the file.
func (fd *FileDev) WriteAt(p []byte, offset int64) (int, error) {
	if offset+int64(len(p)) > fd.size {
		return 0, errors.Errorf("write of %d bytes at offset %d exceeds device size %d", len(p), offset, fd.size)
	}
	n, err := fd.file.WriteAt(p, offset)
	if err != nil {
		return n, errors.WithStack(err)
	}
	return n, nil
}

// Sync syncs data to the file.
func (fd *FileDev) Sync() error {
	if err := fd.file.Sync(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Size returns the byte size of the file.
func (fd *FileDev) Size() int64 {
	return fd.size
}

// Close closes the file.
func (fd *FileDev) Close() error {
	return errors.WithStack(fd.file.Close())
}
