package emu

import (
	"github.com/go-faster/errors"
)

//go:generate go tool stringer -type=Kind -linecomment

// Kind is the type of a device declared in a machine configuration.
type Kind int

const (
	KindNone Kind = iota // none
	KindRAM              // ram
	KindROM              // rom
	KindLua              // lua

	numKinds
)

func (k Kind) MarshalText() ([]byte, error) {
	if k <= KindNone || k >= numKinds {
		return nil, errors.Errorf("invalid device kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for kk := KindRAM; kk < numKinds; kk++ {
		if kk.String() == string(text) {
			*k = kk
			return nil
		}
	}
	return errors.Errorf("unknown device kind %q", string(text))
}
