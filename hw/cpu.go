package hw

import (
	"github.com/go-faster/errors"

	"symbus/emu/log"
	"symbus/hw/hwio"
)

// ResetVector holds the address the program counter is loaded from on reset.
const ResetVector = uint32(0xFFFC)

// ErrNotAttached is returned by CPU operations requiring a bus.
var ErrNotAttached = errors.New("cpu is not attached to a bus")

// CPU holds the processor state the bus cares about. Instruction execution
// is not emulated: the CPU only provides the program counter used to load
// programs, and a reset sequence reading the reset vector.
type CPU struct {
	bus *hwio.Bus

	pc uint32
}

// NewCPU creates a new CPU at power-up state, with the program counter at
// the default load address.
func NewCPU() *CPU {
	return &CPU{pc: hwio.DefaultLoadAddress}
}

// SetBus is called by the bus when the CPU gets attached to it.
func (c *CPU) SetBus(b *hwio.Bus) { c.bus = b }

// Bus returns the bus the CPU is attached to, or nil.
func (c *CPU) Bus() *hwio.Bus { return c.bus }

func (c *CPU) PC() uint32        { return c.pc }
func (c *CPU) SetPC(addr uint32) { c.pc = addr }

// Reset loads the program counter from the reset vector.
func (c *CPU) Reset() error {
	if c.bus == nil {
		return ErrNotAttached
	}

	pc, err := c.bus.Read16(ResetVector)
	if err != nil {
		return errors.Wrap(err, "read reset vector")
	}

	c.pc = uint32(pc)

	log.ModCPU.DebugZ("cpu reset").Hex16("vector", pc).Addr("pc", c.pc).End()
	return nil
}
