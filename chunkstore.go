package chunkstore

import (
	"github.com/outofforest/chunkstore/calculation"
	"github.com/outofforest/chunkstore/chunktable"
	"github.com/outofforest/chunkstore/history"
	"github.com/outofforest/chunkstore/persistence"
	"github.com/outofforest/chunkstore/settings"
)

// Storage gives access to everything the calculator keeps on its EEPROM.
type Storage struct {
	Store    *persistence.Store
	Table    *chunktable.Table
	History  *history.Store[calculation.Calculation]
	Settings *settings.Store
}

// Open opens the storage on the device and loads the settings.
func Open(dev persistence.Dev, config Config) (*Storage, error) {
	store, err := persistence.OpenStore(dev)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(store.Size()); err != nil {
		return nil, err
	}

	table := chunktable.New(store, config.TableBase, config.Chunks)
	s, err := settings.Load(store, config.settingsSpace())
	if err != nil {
		return nil, err
	}

	return &Storage{
		Store:    store,
		Table:    table,
		History:  history.New[calculation.Calculation](table, calculation.Codec{}),
		Settings: s,
	}, nil
}

// Format clears the chunk table and stores default settings. If hard is true, the heap is zeroed too.
func (s *Storage) Format(hard bool) error {
	if err := s.Table.Clear(hard); err != nil {
		return err
	}
	s.Settings.Reset()
	if err := s.Settings.Save(); err != nil {
		return err
	}
	return s.Store.Sync()
}

// Sync forces data to be written to the device.
func (s *Storage) Sync() error {
	return s.Store.Sync()
}
