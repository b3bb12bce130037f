package hwio_test

import (
	"fmt"
	"testing"

	"symbus/hw/hwio"
)

type write struct {
	Off uint32
	Val uint8
}

// probe is a device recording all accesses it receives. Reads return the
// low byte of the offset xored with a per-device tag.
type probe struct {
	hwio.BusLink

	name   string
	rng    hwio.Range
	tag    uint8
	reads  []uint32
	writes []write
}

func newProbe(name string, start, end uint32) *probe {
	return &probe{name: name, rng: hwio.NewRange(start, end)}
}

func (p *probe) Range() hwio.Range { return p.rng }

func (p *probe) Read8(off uint32) uint8 {
	p.reads = append(p.reads, off)
	return uint8(off) ^ p.tag
}

func (p *probe) Write8(off uint32, val uint8) {
	p.writes = append(p.writes, write{Off: off, Val: val})
}

func (p *probe) String() string { return fmt.Sprintf("%s@%s", p.name, p.rng) }

// cpu is a bare processor exposing a program counter.
type cpu struct {
	pc  uint32
	bus *hwio.Bus
}

func (c *cpu) PC() uint32         { return c.pc }
func (c *cpu) SetBus(b *hwio.Bus) { c.bus = b }

func mustAdd(tb testing.TB, bus *hwio.Bus, d hwio.Device) {
	tb.Helper()

	if err := bus.AddDevice(d); err != nil {
		tb.Fatalf("AddDevice(%v) = %v", d, err)
	}
}

func mustRAM(tb testing.TB, name string, start, end uint32) *hwio.Mem {
	tb.Helper()

	m, err := hwio.NewRAM(name, start, end)
	if err != nil {
		tb.Fatal(err)
	}
	return m
}

func wantRead8(tb testing.TB, bus *hwio.Bus, addr uint32, want uint8) {
	tb.Helper()

	got, err := bus.Read8(addr)
	if err != nil {
		tb.Fatalf("Read8(%04X) = %v", addr, err)
	}
	if got != want {
		tb.Errorf("Read8(%04X) = %02X, want %02X", addr, got, want)
	}
}

func rangesOf(devs []hwio.Device) []string {
	var s []string
	for _, d := range devs {
		s = append(s, d.Range().String())
	}
	return s
}
