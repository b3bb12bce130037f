package emu

import (
	"github.com/go-faster/errors"

	"symbus/emu/log"
	"symbus/hw"
	"symbus/hw/hwio"
	"symbus/hw/luadev"
)

// ErrIncomplete is returned when building a machine whose configuration
// requires a fully mapped bus, and some addresses are left unmapped.
var ErrIncomplete = errors.New("incomplete memory map")

// Machine is a bus populated with devices, and a cpu attached to it.
type Machine struct {
	Bus *hwio.Bus
	CPU *hw.CPU

	closers []func()
}

// NewMachine builds the machine described by cfg.
func NewMachine(cfg *Config) (*Machine, error) {
	m := &Machine{
		Bus: hwio.NewBus(cfg.Bus.Start, cfg.Bus.End),
		CPU: hw.NewCPU(),
	}
	m.Bus.Name = cfg.Bus.Name

	for i := range cfg.Devices {
		dc := &cfg.Devices[i]
		dev, err := m.newDevice(cfg, dc)
		if err == nil {
			err = m.Bus.AddDevice(dev)
		}
		if err != nil {
			m.Close()
			return nil, errors.Wrapf(err, "device %q", dc.Name)
		}
	}

	if cfg.Bus.RequireComplete {
		if err := CheckComplete(m.Bus); err != nil {
			m.Close()
			return nil, err
		}
	}

	m.Bus.AttachCPU(m.CPU)
	if cfg.CPU.Reset {
		if err := m.CPU.Reset(); err != nil {
			m.Close()
			return nil, err
		}
	} else {
		m.CPU.SetPC(cfg.CPU.PC)
	}

	log.ModCfg.DebugZ("machine built").
		String("bus", m.Bus.Name).
		Int("devices", len(cfg.Devices)).
		Bool("complete", m.Bus.IsComplete()).
		Addr("pc", m.CPU.PC()).
		End()
	return m, nil
}

// CheckComplete returns an error matching ErrIncomplete, describing why bus
// isn't fully mapped, or nil if it is.
func CheckComplete(bus *hwio.Bus) error {
	if bus.IsComplete() {
		return nil
	}
	gaps := bus.Gaps()
	if len(gaps) == 0 {
		return errors.Wrap(ErrIncomplete, "devices are mapped outside of the bus")
	}
	return errors.Wrapf(ErrIncomplete, "%d unmapped region(s), first at %s", len(gaps), gaps[0])
}

func (m *Machine) newDevice(cfg *Config, dc *DeviceConfig) (hwio.Device, error) {
	switch dc.Kind {
	case KindRAM, KindROM:
		flags := hwio.MemFlagReadWrite
		if dc.Kind == KindROM {
			flags = hwio.MemFlag8ReadOnly
		}
		mem, err := hwio.NewMem(dc.Name, dc.Start, dc.End, dc.Size, flags)
		if err != nil {
			return nil, err
		}
		mem.Fill(dc.Fill)
		if dc.File != "" {
			if err := mem.LoadFile(cfg.path(dc.File)); err != nil {
				return nil, err
			}
		}
		return mem, nil

	case KindLua:
		dev, err := luadev.NewFromFile(dc.Name, dc.Start, dc.End, cfg.path(dc.Script))
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, dev.Close)
		return dev, nil
	}
	return nil, errors.Errorf("unsupported device kind %s", dc.Kind)
}

// LoadProgram writes program in memory, at the cpu program counter.
func (m *Machine) LoadProgram(program []byte) error {
	return m.Bus.LoadProgram(program...)
}

// Close releases the resources held by the machine devices.
func (m *Machine) Close() {
	for _, c := range m.closers {
		c()
	}
	m.closers = nil
}
