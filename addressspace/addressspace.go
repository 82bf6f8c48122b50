package addressspace

import (
	"github.com/outofforest/chunkstore/types"
)

// Space is a window of the device address space starting at Start and spanning Length bytes.
// It is the only place where relative offsets are turned into device addresses.
type Space struct {
	Start  types.AbsoluteAddress
	Length uint32
}

// New returns new address space. It panics if the space does not fit into the device address range.
func New(start types.AbsoluteAddress, length uint32) Space {
	if uint32(start)+length > types.MaxDeviceSize {
		panic("address space exceeds the device address range")
	}
	return Space{
		Start:  start,
		Length: length,
	}
}

// Translate returns the device address of the relative offset.
func (s Space) Translate(relative types.RelativeAddress) (types.AbsoluteAddress, bool) {
	if uint32(relative) >= s.Length {
		return 0, false
	}
	return s.Start + types.AbsoluteAddress(relative), true
}

// TranslateRange returns the device address of the first byte in the window of n bytes starting at relative,
// provided that the whole window fits into the space.
func (s Space) TranslateRange(relative types.RelativeAddress, n int) (types.AbsoluteAddress, bool) {
	if n <= 0 || uint64(relative)+uint64(n) > uint64(s.Length) {
		return 0, false
	}
	return s.Start + types.AbsoluteAddress(relative), true
}

// End returns the first device offset following the space.
func (s Space) End() uint32 {
	return uint32(s.Start) + s.Length
}

// Overlaps tells if two spaces share any byte.
func (s Space) Overlaps(s2 Space) bool {
	if s.Length == 0 || s2.Length == 0 {
		return false
	}
	return uint32(s.Start) < s2.End() && uint32(s2.Start) < s.End()
}
