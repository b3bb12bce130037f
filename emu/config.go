package emu

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"

	"symbus/emu/log"
)

// Config describes a machine: its bus, its cpu and the devices mapped on the
// bus. It's usually loaded from a TOML file:
//
//	[bus]
//	start = 0x0000
//	end = 0xFFFF
//
//	[cpu]
//	pc = 0x0200
//
//	[[device]]
//	name = "ram"
//	kind = "ram"
//	start = 0x0000
//	end = 0x7FFF
//
//	[[device]]
//	name = "rom"
//	kind = "rom"
//	start = 0x8000
//	end = 0xFFFF
//	file = "rom.bin"
type Config struct {
	Bus     BusConfig      `toml:"bus"`
	CPU     CPUConfig      `toml:"cpu"`
	Devices []DeviceConfig `toml:"device"`

	// Directory relative paths are resolved against.
	Dir string `toml:"-"`
}

type BusConfig struct {
	Name  string `toml:"name"`
	Start uint32 `toml:"start"`
	End   uint32 `toml:"end"` // defaults to 0xFFFF

	// Building the machine fails if some bus addresses are not mapped.
	RequireComplete bool `toml:"require_complete"`
}

type CPUConfig struct {
	PC    uint32 `toml:"pc"`    // defaults to hwio.DefaultLoadAddress
	Reset bool   `toml:"reset"` // load PC from the reset vector instead
}

type DeviceConfig struct {
	Name  string `toml:"name"`
	Kind  Kind   `toml:"kind"`
	Start uint32 `toml:"start"`
	End   uint32 `toml:"end"`

	Size   int    `toml:"size"`   // ram/rom: physical size, mirrored over the range
	Fill   uint8  `toml:"fill"`   // ram: initial value of each byte
	File   string `toml:"file"`   // ram/rom: image loaded at offset 0
	Script string `toml:"script"` // lua: script path
}

// LoadConfig loads and validates the machine configuration at path.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	cfg.Dir = filepath.Dir(path)
	if err := cfg.check(md); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	log.ModCfg.DebugZ("loaded config").
		String("path", path).
		Int("devices", len(cfg.Devices)).
		End()
	return cfg, nil
}

// ParseConfig parses and validates a machine configuration. Relative paths
// found in it are resolved against dir.
func ParseConfig(src, dir string) (*Config, error) {
	cfg := defaultConfig()
	md, err := toml.Decode(src, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Dir = dir
	if err := cfg.check(md); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Bus: BusConfig{
			Name:  "bus",
			Start: 0x0000,
			End:   0xFFFF,
		},
		CPU: CPUConfig{
			PC: 0x0200,
		},
	}
}

func (cfg *Config) check(md toml.MetaData) error {
	if keys := md.Undecoded(); len(keys) != 0 {
		var names []string
		for _, k := range keys {
			names = append(names, k.String())
		}
		sort.Strings(names)
		return errors.Errorf("unknown keys: %s", strings.Join(names, ", "))
	}

	if cfg.Bus.Start > cfg.Bus.End {
		return errors.Errorf("bus start $%04X is greater than bus end $%04X", cfg.Bus.Start, cfg.Bus.End)
	}

	names := make(map[string]bool)
	for i := range cfg.Devices {
		dc := &cfg.Devices[i]
		if dc.Name == "" {
			dc.Name = dc.Kind.String() + "#" + strconv.Itoa(i)
		}
		if names[dc.Name] {
			return errors.Errorf("duplicate device name %q", dc.Name)
		}
		names[dc.Name] = true

		if err := dc.check(); err != nil {
			return errors.Wrapf(err, "device %q", dc.Name)
		}
	}
	return nil
}

func (dc *DeviceConfig) check() error {
	switch dc.Kind {
	case KindNone:
		return errors.New("missing kind")
	case KindLua:
		if dc.Script == "" {
			return errors.New("lua device requires a script")
		}
	case KindRAM, KindROM:
		if dc.Script != "" {
			return errors.Errorf("%s device can't have a script", dc.Kind)
		}
	}
	if dc.Start > dc.End {
		return errors.Errorf("start $%04X is greater than end $%04X", dc.Start, dc.End)
	}
	return nil
}

// path resolves p against the config directory.
func (cfg *Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Dir, p)
}
