package hwio

import (
	"fmt"
	"os"

	"github.com/go-faster/errors"

	"symbus/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = (1 << iota) // read-only accesses
	MemFlagNoROLog                          // skip logging attempts to write when configured to readonly
)

// Mem is a linear memory area (RAM or ROM) backed by a byte slice.
//
// The backing buffer can be smaller than the mapped range, in which case the
// buffer is mirrored over the whole range.
type Mem struct {
	BusLink

	Name    string              // name of the memory area (for debugging)
	Data    []byte              // actual memory buffer
	Flags   MemFlags            // flags determining how the memory can be accessed
	WriteCb func(uint32, uint8) // optional callback, called after each successful write

	rng Range
}

// NewMem creates a memory device mapped over [start, end]. size is the size of
// the physical buffer; zero means the size of the range.
func NewMem(name string, start, end uint32, size int, flags MemFlags) (*Mem, error) {
	if start > end {
		return nil, invalidRange(name, start, end)
	}
	rng := NewRange(start, end)
	if size == 0 {
		size = int(rng.Size())
	}
	if size < 0 || uint64(size) > rng.Size() {
		return nil, errors.Errorf("memory %q: buffer size %d does not fit range %s", name, size, rng)
	}
	return &Mem{
		Name:  name,
		Data:  make([]byte, size),
		Flags: flags,
		rng:   rng,
	}, nil
}

// NewRAM creates a read-write memory covering [start, end].
func NewRAM(name string, start, end uint32) (*Mem, error) {
	return NewMem(name, start, end, 0, MemFlagReadWrite)
}

// NewROM creates a read-only memory covering [start, end], initialized with
// data. data can't be bigger than the range.
func NewROM(name string, start, end uint32, data []byte) (*Mem, error) {
	m, err := NewMem(name, start, end, 0, MemFlag8ReadOnly)
	if err != nil {
		return nil, err
	}
	if err := m.Load(data); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mem) Range() Range { return m.rng }

func (m *Mem) Read8(off uint32) uint8 {
	return m.Data[off%uint32(len(m.Data))]
}

func (m *Mem) Write8(off uint32, val uint8) {
	if m.Flags&MemFlag8ReadOnly != 0 {
		if m.Flags&MemFlagNoROLog == 0 {
			log.ModMem.ErrorZ("Write8 to readonly memory").
				String("name", m.Name).
				Addr("addr", m.rng.start+off).
				Hex8("val", val).
				End()
		}
		return
	}

	m.Data[off%uint32(len(m.Data))] = val
	if m.WriteCb != nil {
		m.WriteCb(off, val)
	}
}

// Fill sets every byte of the memory to val.
func (m *Mem) Fill(val uint8) {
	for i := range m.Data {
		m.Data[i] = val
	}
}

// Load copies data at the start of the memory buffer, bypassing the
// read-only flag.
func (m *Mem) Load(data []byte) error {
	if len(data) > len(m.Data) {
		return errors.Errorf("memory %q: %d bytes don't fit in %d", m.Name, len(data), len(m.Data))
	}
	copy(m.Data, data)
	return nil
}

// LoadFile loads the content of the file at path into memory.
func (m *Mem) LoadFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "memory %q", m.Name)
	}
	return m.Load(buf)
}

func (m *Mem) String() string {
	kind := "RAM"
	if m.Flags&MemFlag8ReadOnly != 0 {
		kind = "ROM"
	}
	return fmt.Sprintf("%s %q %s", kind, m.Name, m.rng)
}
