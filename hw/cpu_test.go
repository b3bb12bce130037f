package hw

import (
	"errors"
	"testing"

	"symbus/hw/hwio"
)

func TestCPUReset(t *testing.T) {
	bus := hwio.NewBus(0x0000, 0xFFFF)
	rom := make([]byte, 0x100)
	rom[0xFC] = 0x34
	rom[0xFD] = 0x12

	r, err := hwio.NewROM("rom", 0xFF00, 0xFFFF, rom)
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.AddDevice(r); err != nil {
		t.Fatal(err)
	}

	cpu := NewCPU()
	if cpu.PC() != hwio.DefaultLoadAddress {
		t.Errorf("PC() = %04X at power up, want %04X", cpu.PC(), hwio.DefaultLoadAddress)
	}

	bus.AttachCPU(cpu)
	if cpu.Bus() != bus {
		t.Fatalf("cpu not attached")
	}

	if err := cpu.Reset(); err != nil {
		t.Fatal(err)
	}
	if cpu.PC() != 0x1234 {
		t.Errorf("PC() = %04X after reset, want 1234", cpu.PC())
	}
}

func TestCPUResetUnmappedVector(t *testing.T) {
	cpu := NewCPU()
	if err := cpu.Reset(); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("Reset() without bus = %v, want ErrNotAttached", err)
	}

	bus := hwio.NewBus(0x0000, 0xFFFF)
	bus.AttachCPU(cpu)
	cpu.SetPC(0x0400)

	err := cpu.Reset()
	if !errors.Is(err, hwio.ErrUnmapped) {
		t.Fatalf("Reset() = %v, want ErrUnmapped", err)
	}
	if cpu.PC() != 0x0400 {
		t.Errorf("PC() = %04X, a failed reset shouldn't change it", cpu.PC())
	}
}

func TestCPULoadProgram(t *testing.T) {
	bus := hwio.NewBus(0x0000, 0xFFFF)
	ram, err := hwio.NewRAM("ram", 0x0000, 0x7FFF)
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.AddDevice(ram); err != nil {
		t.Fatal(err)
	}

	cpu := NewCPU()
	bus.AttachCPU(cpu)
	if err := bus.LoadProgram(0x01, 0x02, 0x03); err != nil {
		t.Fatal(err)
	}
	for i, want := range []uint8{1, 2, 3} {
		if got := ram.Data[0x0200+i]; got != want {
			t.Errorf("ram[%04X] = %02X, want %02X", 0x0200+i, got, want)
		}
	}
}
