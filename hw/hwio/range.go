package hwio

import "fmt"

// Range is a closed interval [start, end] of bus addresses. It is immutable
// and comparable. A Range with start > end is invalid; constructors of
// devices are responsible for never building one.
type Range struct {
	start, end uint32
}

func NewRange(start, end uint32) Range {
	return Range{start: start, end: end}
}

func (r Range) Start() uint32 { return r.start }
func (r Range) End() uint32   { return r.end }

// Size returns the number of addresses covered by r.
func (r Range) Size() uint64 {
	return uint64(r.end) - uint64(r.start) + 1
}

// Overlaps reports whether r and other have at least one address in common.
func (r Range) Overlaps(other Range) bool {
	return max(r.start, other.start) <= min(r.end, other.end)
}

// Includes reports whether addr falls within r.
func (r Range) Includes(addr uint32) bool {
	return r.start <= addr && addr <= r.end
}

// Compare orders ranges by start address.
func (r Range) Compare(other Range) int {
	switch {
	case r.start < other.start:
		return -1
	case r.start > other.start:
		return 1
	}
	return 0
}

func (r Range) String() string {
	return hexAddr(r.start) + "-" + hexAddr(r.end)
}

func hexAddr(addr uint32) string {
	return fmt.Sprintf("$%04X", addr)
}
