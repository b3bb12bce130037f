package hwio_test

import (
	"testing"

	"symbus/hw/hwio"
)

func TestRangeOverlaps(t *testing.T) {
	tests := []struct {
		a, b hwio.Range
		want bool
	}{
		{hwio.NewRange(0x0000, 0x7FFF), hwio.NewRange(0x8000, 0xFFFF), false},
		{hwio.NewRange(0x2000, 0x2FFF), hwio.NewRange(0x2500, 0x3500), true},
		{hwio.NewRange(0x2000, 0x2FFF), hwio.NewRange(0x2FFF, 0x3000), true},
		{hwio.NewRange(0x2000, 0x2FFF), hwio.NewRange(0x1000, 0x1FFF), false},
		{hwio.NewRange(0x2000, 0x2FFF), hwio.NewRange(0x2100, 0x2200), true},
		{hwio.NewRange(0x2100, 0x2200), hwio.NewRange(0x0000, 0xFFFF), true},
		{hwio.NewRange(0x10, 0x10), hwio.NewRange(0x10, 0x10), true},
		{hwio.NewRange(0x10, 0x10), hwio.NewRange(0x11, 0x11), false},
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%v.Overlaps(%v) = %t, want %t", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Overlaps(tt.a); got != tt.want {
			t.Errorf("%v.Overlaps(%v) = %t, want %t", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestRangeIncludes(t *testing.T) {
	r := hwio.NewRange(0x1000, 0x1FFF)

	for _, addr := range []uint32{0x1000, 0x1001, 0x1800, 0x1FFF} {
		if !r.Includes(addr) {
			t.Errorf("%v.Includes(%04X) = false, want true", r, addr)
		}
	}
	for _, addr := range []uint32{0x0000, 0x0FFF, 0x2000, 0xFFFF} {
		if r.Includes(addr) {
			t.Errorf("%v.Includes(%04X) = true, want false", r, addr)
		}
	}
}

func TestRangeAccessors(t *testing.T) {
	r := hwio.NewRange(0x8000, 0xFFFF)
	if r.Start() != 0x8000 || r.End() != 0xFFFF {
		t.Errorf("Start(), End() = %04X, %04X", r.Start(), r.End())
	}
	if r.Size() != 0x8000 {
		t.Errorf("Size() = %d, want %d", r.Size(), 0x8000)
	}
	if got := hwio.NewRange(0, 0xFFFFFFFF).Size(); got != 1<<32 {
		t.Errorf("Size() = %d, want %d", got, uint64(1<<32))
	}
	if s := r.String(); s != "$8000-$FFFF" {
		t.Errorf("String() = %q", s)
	}
	if r != hwio.NewRange(0x8000, 0xFFFF) {
		t.Errorf("equal ranges should compare equal")
	}
	if c := hwio.NewRange(0x10, 0x20).Compare(r); c != -1 {
		t.Errorf("Compare() = %d, want -1", c)
	}
	if c := r.Compare(hwio.NewRange(0x10, 0x20)); c != 1 {
		t.Errorf("Compare() = %d, want 1", c)
	}
	if c := r.Compare(r); c != 0 {
		t.Errorf("Compare() = %d, want 0", c)
	}
}
