package chunkstore

import (
	"github.com/pkg/errors"

	"github.com/outofforest/chunkstore/addressspace"
	"github.com/outofforest/chunkstore/chunktable"
	"github.com/outofforest/chunkstore/settings"
	"github.com/outofforest/chunkstore/types"
)

const (
	// DefaultDeviceSize is the size of the EEPROM mounted in the calculator.
	DefaultDeviceSize = 64 * 1024

	// DefaultSettingsBase is the address of the settings.
	DefaultSettingsBase = 0x0000

	// DefaultSettingsLength is the number of bytes reserved for the settings.
	DefaultSettingsLength = 0x0100

	// DefaultTableBase is the address of the chunk table.
	DefaultTableBase = 0x0100

	// DefaultChunks is the number of chunks in the chunk table.
	DefaultChunks = 2048
)

// Config describes where the components are placed on the device.
type Config struct {
	SettingsBase   types.AbsoluteAddress
	SettingsLength uint32
	TableBase      types.AbsoluteAddress
	Chunks         uint16
}

// DefaultConfig returns the layout used by the calculator. Bytes following the chunk table belong to the mass storage
// image.
func DefaultConfig() Config {
	return Config{
		SettingsBase:   DefaultSettingsBase,
		SettingsLength: DefaultSettingsLength,
		TableBase:      DefaultTableBase,
		Chunks:         DefaultChunks,
	}
}

// Validate verifies that the layout fits into the device of the provided size and components don't overlap.
func (c Config) Validate(devSize int64) error {
	if c.Chunks == 0 || c.Chunks%8 != 0 {
		return errors.Errorf("number of chunks must be a positive multiple of 8, got %d", c.Chunks)
	}
	if uint32(c.SettingsLength) < uint32(settings.Size) {
		return errors.Errorf("settings require %d bytes, %d reserved", settings.Size, c.SettingsLength)
	}
	if int64(c.SettingsBase)+int64(c.SettingsLength) > devSize {
		return errors.Errorf("settings exceed the device of %d bytes", devSize)
	}

	tableLength := int64(c.Chunks)*(types.ChunkAddressSize+types.ChunkSize) + int64(c.Chunks)/8
	if int64(c.TableBase)+tableLength > devSize {
		return errors.Errorf("chunk table of %d bytes at 0x%04x exceeds the device of %d bytes",
			tableLength, c.TableBase, devSize)
	}

	if c.settingsSpace().Overlaps(c.tableLayout().Space()) {
		return errors.New("settings overlap the chunk table")
	}
	return nil
}

func (c Config) settingsSpace() addressspace.Space {
	return addressspace.New(c.SettingsBase, c.SettingsLength)
}

func (c Config) tableLayout() chunktable.Layout {
	return chunktable.NewLayout(c.TableBase, c.Chunks)
}
