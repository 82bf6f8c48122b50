package history

import (
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/chunkstore/calculation"
	"github.com/outofforest/chunkstore/chunktable"
	"github.com/outofforest/chunkstore/persistence"
	"github.com/outofforest/chunkstore/pkg/memdev"
	"github.com/outofforest/chunkstore/types"
)

const devSize = 4096

// textCodec stores ASCII strings terminated by zero byte.
type textCodec struct{}

func (textCodec) Serialize(s string) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, errors.New("zero byte in text")
	}
	return append([]byte(s), 0), nil
}

func (textCodec) Deserialize(r io.ByteReader) (string, error) {
	b := &strings.Builder{}
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if c == 0 {
			return b.String(), nil
		}
		if c > 0x7f {
			return "", errors.Errorf("invalid character 0x%02x", c)
		}
		b.WriteByte(c)
	}
}

func TestWriteRead(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 64)
	store := New[calculation.Calculation](table, calculation.Codec{})

	result := 3.0
	c := calculation.New(calculation.Expression{
		calculation.Token('1'), calculation.Token('+'), calculation.Token('2'),
	}, &result)
	requireT.NoError(store.Write(0, c))

	c2, exists, err := store.Read(0)
	requireT.NoError(err)
	requireT.True(exists)
	requireT.Equal(c, c2)

	_, exists, err = store.Read(1)
	requireT.NoError(err)
	requireT.False(exists)
}

func TestReadAllStopsAtHole(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 64)
	store := New[string](table, textCodec{})

	records, err := store.ReadAll()
	requireT.NoError(err)
	requireT.Empty(records)

	requireT.NoError(store.Write(0, "a"))
	requireT.NoError(store.Write(1, "b"))
	requireT.NoError(store.Write(3, "d"))

	records, err = store.ReadAll()
	requireT.NoError(err)
	requireT.Equal([]string{"a", "b"}, records)

	n, err := store.Len()
	requireT.NoError(err)
	requireT.EqualValues(2, n)
}

func TestExtent(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 64)
	store := New[string](table, textCodec{})

	_, _, exists, err := store.Extent(0)
	requireT.NoError(err)
	requireT.False(exists)

	requireT.NoError(store.Write(0, strings.Repeat("a", 15)))
	requireT.NoError(store.Write(1, strings.Repeat("b", 16)))
	requireT.NoError(store.Write(2, strings.Repeat("c", 40)))

	for i, expected := range []struct {
		address types.ChunkAddress
		length  uint16
	}{
		{address: 1, length: 1},
		{address: 2, length: 2},
		{address: 4, length: 3},
	} {
		address, length, exists, err := store.Extent(types.ChunkIndex(i))
		requireT.NoError(err)
		requireT.True(exists)
		requireT.Equal(expected.address, address)
		requireT.Equal(expected.length, length)
	}
}

func TestUpdateWithLongerRecord(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 64)
	store := New[string](table, textCodec{})

	requireT.NoError(store.Write(0, "short"))
	requireT.NoError(store.Write(1, "neighbour"))

	free, err := table.CountFree()
	requireT.NoError(err)
	requireT.EqualValues(61, free)

	long := strings.Repeat("x", 40)
	requireT.NoError(store.Write(0, long))

	address, length, exists, err := store.Extent(0)
	requireT.NoError(err)
	requireT.True(exists)
	requireT.EqualValues(3, address)
	requireT.EqualValues(3, length)

	free, err = table.CountFree()
	requireT.NoError(err)
	requireT.EqualValues(59, free)

	records, err := store.ReadAll()
	requireT.NoError(err)
	requireT.Equal([]string{long, "neighbour"}, records)

	// Chunk 1 freed by the update is reused.
	requireT.NoError(store.Write(2, "new"))
	address, _, _, err = store.Extent(2)
	requireT.NoError(err)
	requireT.EqualValues(1, address)
}

func TestUpdateWithShorterRecord(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 64)
	store := New[string](table, textCodec{})

	requireT.NoError(store.Write(0, strings.Repeat("x", 40)))
	requireT.NoError(store.Write(0, "y"))

	address, length, exists, err := store.Extent(0)
	requireT.NoError(err)
	requireT.True(exists)
	requireT.EqualValues(1, address)
	requireT.EqualValues(1, length)

	free, err := table.CountFree()
	requireT.NoError(err)
	requireT.EqualValues(62, free)
}

func TestMalformedRecordIsMissing(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 64)
	store := New[string](table, textCodec{})

	requireT.NoError(table.WriteBytes(5, []byte{'a', 0xff, 0x00}))
	requireT.NoError(table.SetChunkForIndex(0, 5))

	_, exists, err := store.Read(0)
	requireT.NoError(err)
	requireT.False(exists)

	_, _, exists, err = store.Extent(0)
	requireT.NoError(err)
	requireT.False(exists)

	records, err := store.ReadAll()
	requireT.NoError(err)
	requireT.Empty(records)
}

func TestRecordRunningOffTheHeapIsMissing(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 16)
	store := New[string](table, textCodec{})

	requireT.NoError(table.WriteBytes(15, []byte(strings.Repeat("a", 16))))
	requireT.NoError(table.SetChunkForIndex(0, 15))

	_, exists, err := store.Read(0)
	requireT.NoError(err)
	requireT.False(exists)
}

func TestOutOfSpace(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 16)
	store := New[string](table, textCodec{})

	requireT.ErrorIs(store.Write(0, strings.Repeat("a", 16*16)), chunktable.ErrOutOfSpace)
	requireT.NoError(store.Write(0, strings.Repeat("a", 15*16-1)))
	requireT.ErrorIs(store.Write(1, "b"), chunktable.ErrOutOfSpace)

	requireT.Error(store.Write(16, "c"))
}

// largeCodec produces records larger than any heap.
type largeCodec struct{}

func (largeCodec) Serialize(string) ([]byte, error) {
	return make([]byte, types.MaxDeviceSize*types.ChunkSize+types.ChunkSize), nil
}

func (largeCodec) Deserialize(r io.ByteReader) (string, error) {
	return textCodec{}.Deserialize(r)
}

func TestRecordLargerThanHeap(t *testing.T) {
	requireT := require.New(t)

	table, dev := newTable(t, 64)
	requireT.NoError(New[string](table, textCodec{}).Write(0, "a"))
	_, writes := dev.Transfers()

	store := New[string](table, largeCodec{})
	requireT.ErrorIs(store.Write(0, "x"), chunktable.ErrOutOfSpace)
	requireT.ErrorIs(store.Write(1, "x"), chunktable.ErrOutOfSpace)

	_, writes2 := dev.Transfers()
	requireT.Equal(writes, writes2)

	record, exists, err := store.Read(0)
	requireT.NoError(err)
	requireT.True(exists)
	requireT.Equal("a", record)

	free, err := table.CountFree()
	requireT.NoError(err)
	requireT.EqualValues(62, free)
}

func TestDeviceFailure(t *testing.T) {
	requireT := require.New(t)

	table, dev := newTable(t, 64)
	store := New[string](table, textCodec{})
	requireT.NoError(store.Write(0, "a"))

	dev.Disconnect()

	_, _, err := store.Read(0)
	requireT.ErrorIs(err, memdev.ErrUnavailable)
	_, err = store.ReadAll()
	requireT.ErrorIs(err, memdev.ErrUnavailable)
	_, _, _, err = store.Extent(0)
	requireT.ErrorIs(err, memdev.ErrUnavailable)
	requireT.ErrorIs(store.Write(0, "b"), memdev.ErrUnavailable)
	_, err = store.Append("c")
	requireT.ErrorIs(err, memdev.ErrUnavailable)

	dev.Connect()

	record, exists, err := store.Read(0)
	requireT.NoError(err)
	requireT.True(exists)
	requireT.Equal("a", record)
}

func TestAppendAndClear(t *testing.T) {
	requireT := require.New(t)

	table, _ := newTable(t, 64)
	store := New[string](table, textCodec{})

	for i, s := range []string{"a", "b", "c"} {
		index, err := store.Append(s)
		requireT.NoError(err)
		requireT.EqualValues(i, index)
	}

	records, err := store.ReadAll()
	requireT.NoError(err)
	requireT.Equal([]string{"a", "b", "c"}, records)

	requireT.NoError(store.Clear())

	records, err = store.ReadAll()
	requireT.NoError(err)
	requireT.Empty(records)

	free, err := table.CountFree()
	requireT.NoError(err)
	requireT.EqualValues(63, free)
}

func newTable(t *testing.T, chunks uint16) (*chunktable.Table, *memdev.MemDev) {
	dev := memdev.New(devSize)
	s, err := persistence.OpenStore(dev)
	require.NoError(t, err)

	table := chunktable.New(s, 0, chunks)
	require.NoError(t, table.Clear(false))
	return table, dev
}
