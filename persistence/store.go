package persistence

import (
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/outofforest/chunkstore/pkg/logger"
	"github.com/outofforest/chunkstore/types"
)

// PageSize is the size of the transfer used by bulk operations.
const PageSize = 128

var log = logger.Get("persistence")

// Store gives bounded access to the raw bytes of the device.
type Store struct {
	dev  Dev
	size int64
}

// OpenStore opens the persistent store.
func OpenStore(dev Dev) (*Store, error) {
	if err := validateDev(dev); err != nil {
		return nil, err
	}

	return &Store{
		dev:  dev,
		size: dev.Size(),
	}, nil
}

// Size returns the size of the device.
func (s *Store) Size() int64 {
	return s.size
}

// Read reads len(p) bytes starting at address.
func (s *Store) Read(address types.AbsoluteAddress, p []byte) error {
	if err := s.validateTransfer(address, p); err != nil {
		return err
	}
	if _, err := s.dev.ReadAt(p, int64(address)); err != nil {
		log.WithField("address", address).Debugf("read of %d bytes failed: %s", len(p), err)
		return errors.WithStack(err)
	}
	return nil
}

// Write writes p starting at address.
func (s *Store) Write(address types.AbsoluteAddress, p []byte) error {
	if err := s.validateTransfer(address, p); err != nil {
		return err
	}
	if _, err := s.dev.WriteAt(p, int64(address)); err != nil {
		log.WithField("address", address).Debugf("write of %d bytes failed: %s", len(p), err)
		return errors.WithStack(err)
	}
	return nil
}

// Sync forces data to be written to the dev.
func (s *Store) Sync() error {
	return errors.WithStack(s.dev.Sync())
}

// Export copies the whole content of the device to w, page by page, and returns the xxhash digest of the image.
// Nothing else may access the device until it returns.
func (s *Store) Export(w io.Writer) (uint64, error) {
	hasher := xxhash.New()
	mw := io.MultiWriter(w, hasher)
	page := make([]byte, PageSize)
	for offset := int64(0); offset < s.size; offset += PageSize {
		p := page
		if rest := s.size - offset; rest < PageSize {
			p = page[:rest]
		}
		if err := s.Read(types.AbsoluteAddress(offset), p); err != nil {
			return 0, err
		}
		if _, err := mw.Write(p); err != nil {
			return 0, errors.WithStack(err)
		}
	}
	return hasher.Sum64(), nil
}

// Import overwrites the whole content of the device with the image read from r.
// The image must be exactly as large as the device. Nothing is written if it is not.
func (s *Store) Import(r io.Reader) error {
	image := make([]byte, s.size+1)
	n, err := io.ReadFull(r, image)
	switch {
	case err == nil:
		return errors.Errorf("image is larger than the device of %d bytes", s.size)
	case !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF):
		return errors.WithStack(err)
	case int64(n) != s.size:
		return errors.Errorf("image of %d bytes is shorter than the device of %d bytes", n, s.size)
	}

	for offset := int64(0); offset < s.size; offset += PageSize {
		end := offset + PageSize
		if end > s.size {
			end = s.size
		}
		if err := s.Write(types.AbsoluteAddress(offset), image[offset:end]); err != nil {
			return err
		}
	}
	return s.Sync()
}

// Digest returns the xxhash digest of the device content.
func (s *Store) Digest() (uint64, error) {
	return s.Export(io.Discard)
}

func (s *Store) validateTransfer(address types.AbsoluteAddress, p []byte) error {
	if len(p) == 0 {
		return errors.Errorf("invalid size of buffer: %d", len(p))
	}
	if int64(address)+int64(len(p)) > s.size {
		return errors.Errorf("transfer of %d bytes at address %d exceeds device size %d", len(p), address, s.size)
	}
	return nil
}
