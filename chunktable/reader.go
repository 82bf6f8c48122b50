package chunktable

import (
	"io"

	"github.com/outofforest/chunkstore/types"
)

var _ io.ByteReader = &Reader{}

// Reader reads bytes stored in consecutive chunks of the heap. It buffers one chunk at a time and fetches the next one
// only when the buffered one is exhausted, so after decoding a value Chunk tells where the value ends.
// It returns io.EOF after the last chunk of the heap.
type Reader struct {
	t       *Table
	next    types.ChunkAddress
	current types.ChunkAddress
	buf     types.Chunk
	pos     int
	err     error
}

func newReader(t *Table, address types.ChunkAddress) *Reader {
	return &Reader{
		t:       t,
		next:    address,
		current: address,
		pos:     types.ChunkSize,
	}
}

// ReadByte returns next byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.pos == types.ChunkSize {
		if uint32(r.next) >= uint32(r.t.chunks) {
			return 0, io.EOF
		}
		chunk, err := r.t.ReadChunk(r.next)
		if err != nil {
			r.err = err
			return 0, err
		}
		r.buf = chunk
		r.pos = 0
		r.current = r.next
		r.next++
	}

	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Read reads len(p) bytes into p.
func (r *Reader) Read(p []byte) (int, error) {
	for i := range p {
		b, err := r.ReadByte()
		if err != nil {
			return i, err
		}
		p[i] = b
	}
	return len(p), nil
}

// Chunk returns the address of the chunk containing the last byte returned.
func (r *Reader) Chunk() types.ChunkAddress {
	return r.current
}

// Err returns the device error which stopped the reader, if any.
func (r *Reader) Err() error {
	return r.err
}
