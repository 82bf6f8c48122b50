package chunktable

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/outofforest/chunkstore/addressspace"
	"github.com/outofforest/chunkstore/pkg/logger"
	"github.com/outofforest/chunkstore/types"
)

var log = logger.Get("chunktable")

// ErrOutOfSpace is returned if there is no run of free chunks long enough to satisfy the allocation.
var ErrOutOfSpace = errors.New("no run of free chunks is long enough")

// Device is the interface required from the raw storage.
type Device interface {
	Read(address types.AbsoluteAddress, p []byte) error
	Write(address types.AbsoluteAddress, p []byte) error
}

// Table allocates chunks of the heap and keeps the map from indices to chunk addresses.
type Table struct {
	dev    Device
	chunks uint16
	layout Layout
}

// New returns new chunk table placed at base. The table is not formatted, call Clear to do it.
func New(dev Device, base types.AbsoluteAddress, chunks uint16) *Table {
	return &Table{
		dev:    dev,
		chunks: chunks,
		layout: NewLayout(base, chunks),
	}
}

// Chunks returns the number of chunks in the table, including the reserved chunk 0.
func (t *Table) Chunks() uint16 {
	return t.chunks
}

// Layout returns the layout of the table.
func (t *Table) Layout() Layout {
	return t.layout
}

// ChunkForIndex returns the address of the first chunk assigned to the index.
func (t *Table) ChunkForIndex(index types.ChunkIndex) (types.ChunkAddress, bool, error) {
	if uint32(index) >= uint32(t.chunks) {
		return 0, false, nil
	}
	address, ok := t.layout.Map.TranslateRange(mapOffset(index), types.ChunkAddressSize)
	if !ok {
		return 0, false, nil
	}

	var buf [types.ChunkAddressSize]byte
	if err := t.dev.Read(address, buf[:]); err != nil {
		return 0, false, err
	}

	chunk := types.ChunkAddress(binary.BigEndian.Uint16(buf[:]))
	if chunk == types.NullChunkAddress {
		return 0, false, nil
	}
	return chunk, true, nil
}

// SetChunkForIndex assigns the chunk address to the index.
func (t *Table) SetChunkForIndex(index types.ChunkIndex, chunk types.ChunkAddress) error {
	address, ok := t.layout.Map.TranslateRange(mapOffset(index), types.ChunkAddressSize)
	if !ok || uint32(index) >= uint32(t.chunks) {
		return errors.Errorf("index %d is out of range, number of indices: %d", index, t.chunks)
	}

	var buf [types.ChunkAddressSize]byte
	binary.BigEndian.PutUint16(buf[:], uint16(chunk))
	return t.dev.Write(address, buf[:])
}

// ReadChunk reads the chunk. It panics if address is outside the heap.
func (t *Table) ReadChunk(address types.ChunkAddress) (types.Chunk, error) {
	var chunk types.Chunk
	if err := t.dev.Read(t.heapAddress(address), chunk[:]); err != nil {
		return types.Chunk{}, err
	}
	return chunk, nil
}

// WriteChunk writes the chunk. It panics if address is outside the heap.
func (t *Table) WriteChunk(address types.ChunkAddress, chunk types.Chunk) error {
	return t.dev.Write(t.heapAddress(address), chunk[:])
}

// WriteBytes writes data to consecutive chunks starting at address. The last chunk is padded with zeros.
func (t *Table) WriteBytes(address types.ChunkAddress, data []byte) error {
	for offset := 0; offset < len(data); offset += types.ChunkSize {
		var chunk types.Chunk
		copy(chunk[:], data[offset:])
		if err := t.WriteChunk(address, chunk); err != nil {
			return err
		}
		address++
	}
	return nil
}

// Bytes returns the reader producing bytes stored in the heap starting at the first byte of the chunk.
func (t *Table) Bytes(address types.ChunkAddress) *Reader {
	return newReader(t, address)
}

// AllocateChunks finds the first run of length free chunks, marks it as allocated and returns the address
// of the first chunk in the run.
func (t *Table) AllocateChunks(length uint16) (types.ChunkAddress, error) {
	if length == 0 {
		return 0, errors.New("cannot allocate zero chunks")
	}

	var runStart types.ChunkAddress
	var runLength uint16

	var found bool
	err := t.scanBitmap(func(chunk types.ChunkAddress, allocated bool) bool {
		// Chunk 0 is reserved, so it always behaves as allocated.
		if allocated || chunk == types.NullChunkAddress {
			runLength = 0
			return true
		}
		if runLength == 0 {
			runStart = chunk
		}
		runLength++
		if runLength == length {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		log.Debugf("allocation of %d chunks failed", length)
		return 0, errors.WithStack(ErrOutOfSpace)
	}

	if err := t.updateBitmap(runStart, length, true); err != nil {
		return 0, err
	}
	return runStart, nil
}

// FreeChunks marks the run of length chunks starting at address as free.
// The run must be contiguous, just like the one returned by AllocateChunks.
func (t *Table) FreeChunks(address types.ChunkAddress, length uint16) error {
	if length == 0 {
		return nil
	}
	return t.updateBitmap(address, length, false)
}

// CountFree returns the number of chunks which are free to allocate.
func (t *Table) CountFree() (uint16, error) {
	var free uint16
	err := t.scanBitmap(func(chunk types.ChunkAddress, allocated bool) bool {
		if !allocated && chunk != types.NullChunkAddress {
			free++
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	return free, nil
}

// Clear zeroes the map and the bitmap, making all the records unreachable and all the chunks free.
// If hard is true, the heap is zeroed too.
func (t *Table) Clear(hard bool) error {
	spaces := []addressspace.Space{t.layout.Map, t.layout.Bitmap}
	if hard {
		spaces = append(spaces, t.layout.Heap)
	}
	for _, space := range spaces {
		if err := t.zero(space); err != nil {
			return err
		}
	}
	return nil
}

// ChunksRequiredForBytes returns the number of chunks required to store n bytes.
func ChunksRequiredForBytes(n int) uint16 {
	return uint16((n + types.ChunkSize - 1) / types.ChunkSize)
}

func (t *Table) heapAddress(address types.ChunkAddress) types.AbsoluteAddress {
	if uint32(address) >= uint32(t.chunks) {
		panic(errors.Errorf("chunk address %d exceeds the number of chunks %d", address, t.chunks))
	}
	a, ok := t.layout.Heap.TranslateRange(types.RelativeAddress(uint32(address)*types.ChunkSize), types.ChunkSize)
	if !ok {
		panic(errors.Errorf("chunk %d is outside the heap", address))
	}
	return a
}

// scanBitmap reads the bitmap window by window and calls fn for every chunk, in order, until fn returns false.
func (t *Table) scanBitmap(fn func(chunk types.ChunkAddress, allocated bool) bool) error {
	var window [types.ChunkSize]byte
	length := t.layout.Bitmap.Length
	for offset := uint32(0); offset < length; offset += types.ChunkSize {
		buf := window[:]
		if rest := length - offset; rest < types.ChunkSize {
			buf = window[:rest]
		}
		address, ok := t.layout.Bitmap.TranslateRange(types.RelativeAddress(offset), len(buf))
		if !ok {
			panic("bitmap window is outside the bitmap")
		}
		if err := t.dev.Read(address, buf); err != nil {
			return err
		}

		for i, b := range buf {
			for bit := uint32(0); bit < 8; bit++ {
				chunk := types.ChunkAddress((offset+uint32(i))*8 + bit)
				if !fn(chunk, b&(0x80>>bit) != 0) {
					return nil
				}
			}
		}
	}
	return nil
}

// updateBitmap sets or clears bits of the contiguous run of chunks. All the bitmap bytes covering the run are read,
// modified and written back in one transfer each way. It works only because the bytes covering the contiguous run
// are contiguous themselves.
func (t *Table) updateBitmap(address types.ChunkAddress, length uint16, allocated bool) error {
	first := uint32(address)
	last := first + uint32(length) - 1
	if last >= uint32(t.chunks) {
		panic(errors.Errorf("chunks %d-%d exceed the number of chunks %d", first, last, t.chunks))
	}

	firstByte := first / 8
	nBytes := int(last/8 - firstByte + 1)
	bitmapAddress, ok := t.layout.Bitmap.TranslateRange(types.RelativeAddress(firstByte), nBytes)
	if !ok {
		panic("bitmap window is outside the bitmap")
	}

	buf := make([]byte, nBytes)
	if err := t.dev.Read(bitmapAddress, buf); err != nil {
		return err
	}
	for chunk := first; chunk <= last; chunk++ {
		mask := byte(0x80) >> (chunk % 8)
		if allocated {
			buf[chunk/8-firstByte] |= mask
		} else {
			buf[chunk/8-firstByte] &^= mask
		}
	}
	return t.dev.Write(bitmapAddress, buf)
}

func (t *Table) zero(space addressspace.Space) error {
	var zeros [types.ChunkSize]byte
	for offset := uint32(0); offset < space.Length; offset += types.ChunkSize {
		buf := zeros[:]
		if rest := space.Length - offset; rest < types.ChunkSize {
			buf = zeros[:rest]
		}
		address, ok := space.TranslateRange(types.RelativeAddress(offset), len(buf))
		if !ok {
			panic("zeroed window is outside the space")
		}
		if err := t.dev.Write(address, buf); err != nil {
			return err
		}
	}
	return nil
}

func mapOffset(index types.ChunkIndex) types.RelativeAddress {
	return types.RelativeAddress(uint32(index) * types.ChunkAddressSize)
}
