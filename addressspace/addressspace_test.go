package addressspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/chunkstore/types"
)

func TestTranslate(t *testing.T) {
	requireT := require.New(t)

	s := New(100, 10)

	a, ok := s.Translate(0)
	requireT.True(ok)
	requireT.EqualValues(100, a)

	a, ok = s.Translate(9)
	requireT.True(ok)
	requireT.EqualValues(109, a)

	_, ok = s.Translate(10)
	requireT.False(ok)

	_, ok = s.Translate(0xffff)
	requireT.False(ok)
}

func TestTranslateEmpty(t *testing.T) {
	_, ok := New(5, 0).Translate(0)
	require.False(t, ok)
}

func TestTranslateRange(t *testing.T) {
	requireT := require.New(t)

	s := New(100, 10)

	a, ok := s.TranslateRange(0, 10)
	requireT.True(ok)
	requireT.EqualValues(100, a)

	a, ok = s.TranslateRange(8, 2)
	requireT.True(ok)
	requireT.EqualValues(108, a)

	_, ok = s.TranslateRange(8, 3)
	requireT.False(ok)

	_, ok = s.TranslateRange(0, 0)
	requireT.False(ok)

	_, ok = s.TranslateRange(0xffff, 2)
	requireT.False(ok)

	_, ok = s.TranslateRange(9, math.MaxInt)
	requireT.False(ok)

	full := New(0, types.MaxDeviceSize)
	a, ok = full.TranslateRange(0xffff, 1)
	requireT.True(ok)
	requireT.EqualValues(0xffff, a)

	_, ok = full.TranslateRange(0xffff, 2)
	requireT.False(ok)
}

func TestSpaceAtTheEndOfDevice(t *testing.T) {
	requireT := require.New(t)

	s := New(0xfff0, 0x10)
	requireT.EqualValues(types.MaxDeviceSize, s.End())

	a, ok := s.Translate(0x0f)
	requireT.True(ok)
	requireT.EqualValues(0xffff, a)

	requireT.Panics(func() {
		New(0xfff0, 0x11)
	})
}

func TestOverlaps(t *testing.T) {
	requireT := require.New(t)

	requireT.True(New(0, 10).Overlaps(New(9, 10)))
	requireT.True(New(9, 10).Overlaps(New(0, 10)))
	requireT.False(New(0, 10).Overlaps(New(10, 10)))
	requireT.False(New(10, 10).Overlaps(New(0, 10)))
	requireT.False(New(0, 0).Overlaps(New(0, 10)))
}
