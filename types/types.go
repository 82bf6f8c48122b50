package types

const (
	// ChunkSize is the size of the data unit used by the chunk table.
	ChunkSize = 16

	// ChunkAddressSize is the size of each entry in the chunk map.
	ChunkAddressSize = 2

	// MaxDeviceSize is the size of the address space reachable by the 16-bit device addresses.
	MaxDeviceSize = 1 << 16
)

// RelativeAddress is the offset of the byte inside one storage region.
type RelativeAddress uint16

// AbsoluteAddress is the address of the byte on the device.
type AbsoluteAddress uint16

// ChunkAddress is the number of the chunk in the heap. Chunk 0 is reserved to mean "unassigned".
type ChunkAddress uint16

// NullChunkAddress is the sentinel stored in the map for indices having no chunk assigned.
const NullChunkAddress ChunkAddress = 0

// ChunkIndex is the number of the logical slot in the chunk map.
type ChunkIndex uint16

// Chunk represents the raw data bytes of the chunk.
type Chunk [ChunkSize]byte
