package chunktable

import (
	"github.com/outofforest/chunkstore/addressspace"
	"github.com/outofforest/chunkstore/types"
)

// Layout describes the three regions of the chunk table, placed one after another:
// [map: ChunkAddressSize * chunks][heap: ChunkSize * chunks][bitmap: chunks / 8].
type Layout struct {
	Map    addressspace.Space
	Heap   addressspace.Space
	Bitmap addressspace.Space
}

// NewLayout computes the layout of the table starting at base and containing the requested number of chunks.
// Layout is the configuration, so it panics if chunks is not a positive multiple of 8 or if the table does not fit
// into the device address range.
func NewLayout(base types.AbsoluteAddress, chunks uint16) Layout {
	if chunks == 0 || chunks%8 != 0 {
		panic("number of chunks must be a positive multiple of 8")
	}

	mapLength := uint32(chunks) * types.ChunkAddressSize
	heapLength := uint32(chunks) * types.ChunkSize
	bitmapLength := uint32(chunks) / 8

	if uint32(base)+mapLength+heapLength+bitmapLength > types.MaxDeviceSize {
		panic("chunk table exceeds the device address range")
	}

	mapSpace := addressspace.New(base, mapLength)
	heapSpace := addressspace.New(types.AbsoluteAddress(mapSpace.End()), heapLength)
	bitmapSpace := addressspace.New(types.AbsoluteAddress(heapSpace.End()), bitmapLength)

	return Layout{
		Map:    mapSpace,
		Heap:   heapSpace,
		Bitmap: bitmapSpace,
	}
}

// Start returns the first device address used by the table.
func (l Layout) Start() types.AbsoluteAddress {
	return l.Map.Start
}

// End returns the first device offset following the table.
func (l Layout) End() uint32 {
	return l.Bitmap.End()
}

// Space returns the space covering all the regions.
func (l Layout) Space() addressspace.Space {
	return addressspace.New(l.Start(), l.End()-uint32(l.Start()))
}
