package luadev

import (
	"os"
	"path/filepath"
	"testing"

	"symbus/hw/hwio"
)

const regsScript = `
local regs = {}

function read(off)
	return regs[off] or (0xE0 + off)
end

function write(off, val)
	regs[off] = val
end
`

func newBus(tb testing.TB, devs ...hwio.Device) *hwio.Bus {
	tb.Helper()

	bus := hwio.NewBus(0x0000, 0xFFFF)
	for _, d := range devs {
		if err := bus.AddDevice(d); err != nil {
			tb.Fatal(err)
		}
	}
	return bus
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

func TestDeviceReadWrite(t *testing.T) {
	dev, err := New("regs", 0x8800, 0x8803, regsScript)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	bus := newBus(t, dev)
	wantRead8(t, bus, 0x8800, 0xE0)
	wantRead8(t, bus, 0x8803, 0xE3)

	if err := bus.Write8(0x8801, 0x42); err != nil {
		t.Fatal(err)
	}
	wantRead8(t, bus, 0x8801, 0x42)
	wantRead8(t, bus, 0x8802, 0xE2)
}

func TestDeviceGlobals(t *testing.T) {
	dev, err := New("info", 0x1000, 0x10FF, `
function read(off)
	if name ~= "info" then return 0 end
	return size - 1
end
function write(off, val) end
`)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	if got := dev.Read8(0); got != 0xFF {
		t.Errorf("Read8(0) = %02X, want FF", got)
	}
}

func TestDeviceBusAccess(t *testing.T) {
	// Writing to the device copies the value, doubled, to $0010.
	dev, err := New("dma", 0x9000, 0x9000, `
function read(off)
	return bus_read(0x0010)
end
function write(off, val)
	bus_write(0x0010, val * 2)
end
`)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	ram, err := hwio.NewRAM("ram", 0x0000, 0x00FF)
	if err != nil {
		t.Fatal(err)
	}
	bus := newBus(t, ram, dev)

	if err := bus.Write8(0x9000, 0x21); err != nil {
		t.Fatal(err)
	}
	if ram.Data[0x10] != 0x42 {
		t.Errorf("ram[10] = %02X, want 42", ram.Data[0x10])
	}
	wantRead8(t, bus, 0x9000, 0x42)

	// Unmapped accesses from the script are script errors, read as 0.
	bus.RemoveDevice(ram)
	wantRead8(t, bus, 0x9000, 0x00)
}

func TestDeviceScriptErrors(t *testing.T) {
	dev, err := New("bad", 0x0000, 0x000F, `
function read(off)
	error("boom")
end
function write(off, val)
	error("boom")
end
`)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	if got := dev.Read8(3); got != 0 {
		t.Errorf("Read8() = %02X, want 0", got)
	}
	dev.Write8(3, 1)

	// The interpreter is still usable after an error.
	if got := dev.Read8(3); got != 0 {
		t.Errorf("Read8() = %02X, want 0", got)
	}
}

func TestDeviceNonNumberRead(t *testing.T) {
	dev, err := New("str", 0x0000, 0x000F, `
function read(off) return "nope" end
function write(off, val) end
`)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	if got := dev.Read8(0); got != 0 {
		t.Errorf("Read8() = %02X, want 0", got)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `function read(off`},
		{"no read", `function write(off, val) end`},
		{"no write", `function read(off) return 0 end`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.name, 0, 0xF, tt.src); err == nil {
				t.Errorf("New() should fail")
			}
		})
	}

	if _, err := New("range", 0x10, 0x0F, regsScript); err == nil {
		t.Errorf("New() with start > end should fail")
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regs.lua")
	if err := os.WriteFile(path, []byte(regsScript), 0644); err != nil {
		t.Fatal(err)
	}

	dev, err := NewFromFile("regs", 0x0000, 0x0003, path)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	if got := dev.Read8(1); got != 0xE1 {
		t.Errorf("Read8(1) = %02X, want E1", got)
	}

	if _, err := NewFromFile("missing", 0, 1, filepath.Join(t.TempDir(), "nope.lua")); err == nil {
		t.Errorf("NewFromFile() of a missing file should fail")
	}
}
