package hwio

import (
	"fmt"

	"github.com/go-faster/errors"

	"symbus/emu/log"
)

// Device is a memory-mapped component occupying a single contiguous range of
// the bus. Read8 and Write8 receive offsets local to the device, that is
// relative to the start of its range.
//
// Devices are identified by interface equality, so a device whose dynamic
// type isn't comparable can be mapped but never removed.
type Device interface {
	Range() Range
	Read8(off uint32) uint8
	Write8(off uint32, val uint8)

	// SetBus is called by the bus a device gets added to, and with nil when
	// the device is removed.
	SetBus(b *Bus)
}

// Describe returns a human readable description of a device.
func Describe(d Device) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T at %s", d, d.Range())
}

// BusLink holds the non-owning reference a device keeps to its bus. It's
// meant to be embedded in Device implementations.
type BusLink struct {
	bus *Bus
}

func (l *BusLink) SetBus(b *Bus) { l.bus = b }

// Bus returns the bus the device is mapped on, or nil.
func (l *BusLink) Bus() *Bus { return l.bus }

type RWFlags uint8

const (
	ReadOnlyFlag RWFlags = 1 << iota
	WriteOnlyFlag
)

// Manual is a Device that delegates reads and writes to callbacks. Missing
// callbacks read as 0 and ignore writes.
type Manual struct {
	BusLink

	Name  string // name of the device (for debugging)
	Flags RWFlags

	ReadCb  func(off uint32) uint8
	WriteCb func(off uint32, val uint8)

	rng Range
}

// NewManual creates a callback device covering [start, end].
func NewManual(name string, start, end uint32) (*Manual, error) {
	if start > end {
		return nil, invalidRange(name, start, end)
	}
	return &Manual{Name: name, rng: NewRange(start, end)}, nil
}

func (d *Manual) Range() Range { return d.rng }

func (d *Manual) Read8(off uint32) uint8 {
	switch {
	case d.Flags&WriteOnlyFlag != 0:
		log.ModDev.ErrorZ("invalid Read8 from writeonly device").
			String("name", d.Name).
			Addr("off", off).
			End()
		fallthrough
	case d.ReadCb == nil:
		return 0
	}
	return d.ReadCb(off)
}

func (d *Manual) Write8(off uint32, val uint8) {
	switch {
	case d.Flags&ReadOnlyFlag != 0:
		log.ModDev.ErrorZ("invalid Write8 to readonly device").
			String("name", d.Name).
			Addr("off", off).
			End()
		fallthrough
	case d.WriteCb == nil:
		return
	}
	d.WriteCb(off, val)
}

func (d *Manual) String() string {
	return fmt.Sprintf("%s@%s", d.Name, d.rng)
}

func invalidRange(name string, start, end uint32) error {
	return errors.Errorf("device %q: invalid range %s-%s", name, hexAddr(start), hexAddr(end))
}
