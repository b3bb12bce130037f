package hwio

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrOverlap matches any *OverlapError.
	ErrOverlap = errors.New("overlapping memory range")

	// ErrUnmapped matches any *UnmappedAddressError.
	ErrUnmapped = errors.New("unmapped address")

	// ErrNoCPU is returned by operations requiring an attached processor.
	ErrNoCPU = errors.New("no cpu attached to bus")
)

// OverlapError is returned when a device is added to a bus and its range
// intersects the range of an already registered device.
type OverlapError struct {
	Existing Device // device already on the bus
	Range    Range  // range of the rejected device
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("the device being added at %s overlaps with an existing device, '%s'",
		hexAddr(e.Range.Start()), Describe(e.Existing))
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

// Access is the kind of bus cycle.
type Access uint8

const (
	ReadAccess Access = iota
	WriteAccess
)

func (a Access) String() string {
	if a == WriteAccess {
		return "write"
	}
	return "read"
}

// UnmappedAddressError is returned by reads and writes targeting an address
// no device is mapped at.
type UnmappedAddressError struct {
	Addr   uint32
	Access Access
}

func (e *UnmappedAddressError) Error() string {
	return fmt.Sprintf("bus %s failed, no device at address %s", e.Access, hexAddr(e.Addr))
}

func (e *UnmappedAddressError) Is(target error) bool { return target == ErrUnmapped }
