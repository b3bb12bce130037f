package hwio

import (
	"math"

	"github.com/go-faster/errors"

	"symbus/emu/log"
)

// DefaultLoadAddress is the address programs are usually loaded at.
const DefaultLoadAddress = 0x0200

// CPU is the processor side of a bus. The bus only needs to know the
// processor's program counter.
type CPU interface {
	PC() uint32
	SetBus(b *Bus)
}

// Bus routes reads and writes to the devices mapped in its address space,
// [StartAddr(), EndAddr()].
//
// A Bus is not safe for concurrent use.
type Bus struct {
	Name string

	start, end uint32
	devices    Registry
	cpu        CPU
}

// NewBus creates an empty bus spanning [start, end].
func NewBus(start, end uint32) *Bus {
	if start > end {
		panic("bus start address is greater than end address")
	}
	return &Bus{Name: "bus", start: start, end: end}
}

// NewBusSize creates an empty bus spanning [0, size-1].
func NewBusSize(size uint64) *Bus {
	if size == 0 || size > 1<<32 {
		panic("invalid bus size")
	}
	return NewBus(0, uint32(size-1))
}

func (b *Bus) StartAddr() uint32 { return b.start }
func (b *Bus) EndAddr() uint32   { return b.end }

// AddDevice maps d on the bus. It returns an *OverlapError if d overlaps an
// already mapped device.
func (b *Bus) AddDevice(d Device) error {
	if err := b.devices.Add(d); err != nil {
		return err
	}
	d.SetBus(b)

	log.ModBus.DebugZ("mapped device").
		String("bus", b.Name).
		Stringer("range", d.Range()).
		Uint("size", d.Range().Size()).
		String("dev", Describe(d)).
		End()
	return nil
}

// RemoveDevice unmaps d. Removing a device that isn't on the bus is a no-op.
func (b *Bus) RemoveDevice(d Device) {
	if !b.devices.Remove(d) {
		return
	}
	d.SetBus(nil)

	log.ModBus.DebugZ("unmapped device").
		String("bus", b.Name).
		Stringer("range", d.Range()).
		End()
}

// Devices returns a copy of the mapped devices, ordered by start address.
func (b *Bus) Devices() []Device {
	return b.devices.Snapshot()
}

// Gaps returns the ranges of the bus address space no device is mapped at.
func (b *Bus) Gaps() []Range {
	return b.devices.Gaps(b.start, b.end)
}

// IsComplete reports whether every bus address is mapped to a device.
func (b *Bus) IsComplete() bool {
	return b.devices.IsComplete(b.start, b.end)
}

// AttachCPU binds cpu to the bus, replacing any previously attached one.
func (b *Bus) AttachCPU(cpu CPU) {
	b.cpu = cpu
	cpu.SetBus(b)

	log.ModBus.DebugZ("attached cpu").String("bus", b.Name).End()
}

// CPU returns the attached processor, or nil.
func (b *Bus) CPU() CPU { return b.cpu }

// Read8 reads the byte at addr from the device mapped there.
func (b *Bus) Read8(addr uint32) (uint8, error) {
	d, ok := b.devices.Lookup(addr)
	if !ok {
		log.ModBus.DebugZ("unmapped Read8").String("bus", b.Name).Addr("addr", addr).End()
		return 0, &UnmappedAddressError{Addr: addr, Access: ReadAccess}
	}
	return d.Read8(addr - d.Range().Start()), nil
}

// Write8 writes val at addr, to the device mapped there.
func (b *Bus) Write8(addr uint32, val uint8) error {
	d, ok := b.devices.Lookup(addr)
	if !ok {
		log.ModBus.DebugZ("unmapped Write8").String("bus", b.Name).Addr("addr", addr).Hex8("val", val).End()
		return &UnmappedAddressError{Addr: addr, Access: WriteAccess}
	}
	d.Write8(addr-d.Range().Start(), val)
	return nil
}

// offsetAddr returns addr+n, or an error matching ErrUnmapped when that
// address lies past the end of the address space.
func offsetAddr(addr uint32, n int, acc Access) (uint32, error) {
	next := uint64(addr) + uint64(n)
	if next > math.MaxUint32 {
		return 0, errors.Wrapf(ErrUnmapped, "bus %s failed, address %s+%d is out of the address space", acc, hexAddr(addr), n)
	}
	return uint32(next), nil
}

// Read16 reads a little-endian 16-bit value at addr.
func (b *Bus) Read16(addr uint32) (uint16, error) {
	lo, err := b.Read8(addr)
	if err != nil {
		return 0, err
	}
	hiaddr, err := offsetAddr(addr, 1, ReadAccess)
	if err != nil {
		return 0, err
	}
	hi, err := b.Read8(hiaddr)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// Write16 writes a little-endian 16-bit value at addr.
func (b *Bus) Write16(addr uint32, val uint16) error {
	if err := b.Write8(addr, uint8(val&0xff)); err != nil {
		return err
	}
	hiaddr, err := offsetAddr(addr, 1, WriteAccess)
	if err != nil {
		return err
	}
	return b.Write8(hiaddr, uint8(val>>8))
}

// LoadProgram writes program to consecutive addresses, starting at the
// program counter of the attached cpu. It stops at the first failed write,
// or at the end of the address space.
func (b *Bus) LoadProgram(program ...uint8) error {
	if b.cpu == nil {
		return ErrNoCPU
	}

	pc := b.cpu.PC()
	for i, val := range program {
		addr, err := offsetAddr(pc, i, WriteAccess)
		if err != nil {
			return err
		}
		if err := b.Write8(addr, val); err != nil {
			return err
		}
	}

	log.ModBus.DebugZ("loaded program").
		String("bus", b.Name).
		Addr("addr", pc).
		Int("len", len(program)).
		End()
	return nil
}
