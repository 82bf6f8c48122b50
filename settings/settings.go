package settings

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/outofforest/chunkstore/addressspace"
	"github.com/outofforest/chunkstore/pkg/logger"
	"github.com/outofforest/chunkstore/types"
)

// Booleans are stored as sentinel bytes, different from 0x00 and 0xff, so erased or never written bytes are not
// mistaken for a stored value.
const (
	TrueByte  byte = 0xac
	FalseByte byte = 0xdc
)

var log = logger.Get("settings")

// Device is the interface required from the raw storage.
type Device interface {
	Read(address types.AbsoluteAddress, p []byte) error
	Write(address types.AbsoluteAddress, p []byte) error
}

// Values holds the settings of the calculator.
type Values struct {
	ShowFrameTime   bool
	ShowHeapUsage   bool
	ShowBattery     bool
	FractionResults bool
}

type flag struct {
	Name    string
	Default bool
	Value   func(v *Values) *bool
}

// flags are stored one byte each, in this order, starting at the beginning of the settings space.
var flags = []flag{
	{Name: "show_frame_time", Default: false, Value: func(v *Values) *bool { return &v.ShowFrameTime }},
	{Name: "show_heap_usage", Default: false, Value: func(v *Values) *bool { return &v.ShowHeapUsage }},
	{Name: "show_battery", Default: true, Value: func(v *Values) *bool { return &v.ShowBattery }},
	{Name: "fraction_results", Default: false, Value: func(v *Values) *bool { return &v.FractionResults }},
}

// Size is the number of bytes used by the settings.
var Size = len(flags)

// ErrUnknownSetting is returned if there is no setting with the requested name.
var ErrUnknownSetting = errors.New("unknown setting")

// Defaults returns the default values.
func Defaults() Values {
	var v Values
	for _, f := range flags {
		*f.Value(&v) = f.Default
	}
	return v
}

// Store keeps the settings in memory and persists them on request.
type Store struct {
	dev   Device
	space addressspace.Space

	Values Values
}

// Load reads the settings stored in the space. Bytes not holding a sentinel value are replaced with defaults.
func Load(dev Device, space addressspace.Space) (*Store, error) {
	address, ok := space.TranslateRange(0, Size)
	if !ok {
		return nil, errors.Errorf("settings require %d bytes, space has %d", Size, space.Length)
	}

	buf := make([]byte, Size)
	if err := dev.Read(address, buf); err != nil {
		return nil, err
	}

	s := &Store{
		dev:   dev,
		space: space,
	}
	for i, f := range flags {
		value, ok := decode(buf[i])
		if !ok {
			log.WithField("setting", f.Name).Debugf("byte 0x%02x is not a stored value, default is used", buf[i])
			value = f.Default
		}
		*f.Value(&s.Values) = value
	}
	return s, nil
}

// Save writes all the settings to the device.
func (s *Store) Save() error {
	address, ok := s.space.TranslateRange(0, Size)
	if !ok {
		return errors.Errorf("settings require %d bytes, space has %d", Size, s.space.Length)
	}

	buf := make([]byte, Size)
	for i, f := range flags {
		buf[i] = encode(*f.Value(&s.Values))
	}
	return s.dev.Write(address, buf)
}

// Reset restores default values in memory.
func (s *Store) Reset() {
	s.Values = Defaults()
}

// Names returns sorted names of the settings.
func Names() []string {
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// Get returns the value of the setting.
func (s *Store) Get(name string) (bool, error) {
	f, err := lookup(name)
	if err != nil {
		return false, err
	}
	return *f.Value(&s.Values), nil
}

// Set sets the value of the setting in memory.
func (s *Store) Set(name string, value bool) error {
	f, err := lookup(name)
	if err != nil {
		return err
	}
	*f.Value(&s.Values) = value
	return nil
}

func lookup(name string) (flag, error) {
	for _, f := range flags {
		if f.Name == name {
			return f, nil
		}
	}
	return flag{}, errors.Wrapf(ErrUnknownSetting, "setting %q", name)
}

func encode(value bool) byte {
	if value {
		return TrueByte
	}
	return FalseByte
}

func decode(b byte) (bool, bool) {
	switch b {
	case TrueByte:
		return true, true
	case FalseByte:
		return false, true
	default:
		return false, false
	}
}
