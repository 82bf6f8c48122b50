package history

import (
	"io"

	"github.com/pkg/errors"

	"github.com/outofforest/chunkstore/chunktable"
	"github.com/outofforest/chunkstore/pkg/logger"
	"github.com/outofforest/chunkstore/types"
)

var log = logger.Get("history")

// Codec converts records to and from bytes.
type Codec[T any] interface {
	Serialize(record T) ([]byte, error)
	Deserialize(r io.ByteReader) (T, error)
}

// Store keeps variable-length records under dense indices, in chunks allocated from the table.
type Store[T any] struct {
	table *chunktable.Table
	codec Codec[T]
}

// New returns new record store.
func New[T any](table *chunktable.Table, codec Codec[T]) *Store[T] {
	return &Store[T]{
		table: table,
		codec: codec,
	}
}

// Read returns the record stored under the index. Record which can't be decoded is reported as missing.
func (s *Store[T]) Read(index types.ChunkIndex) (T, bool, error) {
	var t T

	address, exists, err := s.table.ChunkForIndex(index)
	if !exists || err != nil {
		return t, false, err
	}

	r := s.table.Bytes(address)
	record, err := s.codec.Deserialize(r)
	if err != nil {
		if r.Err() != nil {
			return t, false, r.Err()
		}
		log.WithField("index", index).Debugf("record can't be decoded: %s", err)
		return t, false, nil
	}
	return record, true, nil
}

// ReadAll returns records stored under indices 0, 1, 2, ... up to the first index which can't be read.
func (s *Store[T]) ReadAll() ([]T, error) {
	records := []T{}
	for index := uint32(0); index < uint32(s.table.Chunks()); index++ {
		record, exists, err := s.Read(types.ChunkIndex(index))
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		records = append(records, record)
	}
	return records, nil
}

// Len returns the number of records stored under consecutive indices starting from 0.
func (s *Store[T]) Len() (types.ChunkIndex, error) {
	for index := uint32(0); index < uint32(s.table.Chunks()); index++ {
		_, exists, err := s.table.ChunkForIndex(types.ChunkIndex(index))
		if err != nil {
			return 0, err
		}
		if !exists {
			return types.ChunkIndex(index), nil
		}
	}
	return types.ChunkIndex(s.table.Chunks()), nil
}

// Extent returns the address of the first chunk of the record and the number of chunks it occupies.
// The length is not stored, so the record is decoded again to find where it ends.
func (s *Store[T]) Extent(index types.ChunkIndex) (types.ChunkAddress, uint16, bool, error) {
	address, exists, err := s.table.ChunkForIndex(index)
	if !exists || err != nil {
		return 0, 0, false, err
	}

	r := s.table.Bytes(address)
	if _, err := s.codec.Deserialize(r); err != nil {
		if r.Err() != nil {
			return 0, 0, false, r.Err()
		}
		return 0, 0, false, nil
	}
	return address, uint16(r.Chunk()-address) + 1, true, nil
}

// Write stores the record under the index, replacing the previous one.
//
// Chunks of the previous record are freed before the new ones are allocated, and the map is updated before the data
// are written, so if anything fails in the middle, the index may point to freed or partially written chunks.
func (s *Store[T]) Write(index types.ChunkIndex, record T) error {
	if uint32(index) >= uint32(s.table.Chunks()) {
		return errors.Errorf("index %d is out of range, number of indices: %d", index, s.table.Chunks())
	}

	data, err := s.codec.Serialize(record)
	if err != nil {
		return err
	}
	if len(data) > int(s.table.Chunks())*types.ChunkSize {
		return errors.Wrapf(chunktable.ErrOutOfSpace, "record of %d bytes is larger than the heap", len(data))
	}

	oldAddress, oldLength, exists, err := s.Extent(index)
	if err != nil {
		return err
	}
	if exists {
		if err := s.table.FreeChunks(oldAddress, oldLength); err != nil {
			return err
		}
	}

	if len(data) == 0 {
		data = []byte{0x00}
	}
	length := chunktable.ChunksRequiredForBytes(len(data))
	address, err := s.table.AllocateChunks(length)
	if err != nil {
		return err
	}
	if err := s.table.SetChunkForIndex(index, address); err != nil {
		return err
	}
	return s.table.WriteBytes(address, data)
}

// Append stores the record under the first free index and returns that index.
func (s *Store[T]) Append(record T) (types.ChunkIndex, error) {
	index, err := s.Len()
	if err != nil {
		return 0, err
	}
	if err := s.Write(index, record); err != nil {
		return 0, err
	}
	return index, nil
}

// Clear drops all the records.
func (s *Store[T]) Clear() error {
	return s.table.Clear(false)
}
