package emu

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-faster/jx"

	"symbus/hw/hwio"
)

// Region is an entry of a memory map: either a device or a gap.
type Region struct {
	Range  hwio.Range
	Device hwio.Device // nil for unmapped regions
}

func (r Region) Mapped() bool { return r.Device != nil }

func (r Region) Description() string {
	if r.Device == nil {
		return "<unmapped>"
	}
	return hwio.Describe(r.Device)
}

// MemoryMap lists the devices mapped on bus, and the gaps between them, in
// address order.
func MemoryMap(bus *hwio.Bus) []Region {
	devs := bus.Devices()
	gaps := bus.Gaps()

	regions := make([]Region, 0, len(devs)+len(gaps))
	for len(devs) > 0 || len(gaps) > 0 {
		if len(gaps) == 0 || (len(devs) > 0 && devs[0].Range().Start() < gaps[0].Start()) {
			regions = append(regions, Region{Range: devs[0].Range(), Device: devs[0]})
			devs = devs[1:]
			continue
		}
		regions = append(regions, Region{Range: gaps[0]})
		gaps = gaps[1:]
	}
	return regions
}

// WriteMemoryMap writes a human readable memory map of bus to w.
func WriteMemoryMap(w io.Writer, bus *hwio.Bus) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "bus %q %s\n", bus.Name, hwio.NewRange(bus.StartAddr(), bus.EndAddr()))
	for _, r := range MemoryMap(bus) {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", r.Range, r.Range.Size(), r.Description())
	}
	fmt.Fprintf(tw, "complete: %t\n", bus.IsComplete())
	return tw.Flush()
}

// EncodeMemoryMap returns the JSON encoded memory map of bus.
func EncodeMemoryMap(bus *hwio.Bus) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("bus", func(e *jx.Encoder) { e.Str(bus.Name) })
		e.Field("start", func(e *jx.Encoder) { e.UInt32(bus.StartAddr()) })
		e.Field("end", func(e *jx.Encoder) { e.UInt32(bus.EndAddr()) })
		e.Field("complete", func(e *jx.Encoder) { e.Bool(bus.IsComplete()) })
		e.Field("regions", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, r := range MemoryMap(bus) {
					encodeRegion(e, r)
				}
			})
		})
	})
	return e.Bytes()
}

func encodeRegion(e *jx.Encoder, r Region) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("start", func(e *jx.Encoder) { e.UInt32(r.Range.Start()) })
		e.Field("end", func(e *jx.Encoder) { e.UInt32(r.Range.End()) })
		e.Field("size", func(e *jx.Encoder) { e.UInt64(r.Range.Size()) })
		e.Field("mapped", func(e *jx.Encoder) { e.Bool(r.Mapped()) })
		if r.Mapped() {
			e.Field("device", func(e *jx.Encoder) { e.Str(r.Description()) })
		}
	})
}

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Dump writes an hexdump of n bytes read from bus, starting at addr.
// Unmapped bytes are shown as '--'. If highlight is true, non-zero bytes are
// shown in bold.
func Dump(w io.Writer, bus *hwio.Bus, addr uint32, n int, highlight bool) error {
	for line := 0; line < n; line += 16 {
		if _, err := fmt.Fprintf(w, "$%04X:", addr+uint32(line)); err != nil {
			return err
		}

		var ascii [16]byte
		cols := min(16, n-line)
		for i := range 16 {
			if i >= cols {
				fmt.Fprint(w, "   ")
				ascii[i] = ' '
				continue
			}

			val, err := bus.Read8(addr + uint32(line+i))
			switch {
			case err != nil:
				fmt.Fprint(w, " --")
				ascii[i] = ' '
				continue
			case highlight && val != 0:
				fmt.Fprintf(w, " %s%02X%s", ansiBold, val, ansiReset)
			default:
				fmt.Fprintf(w, " %02X", val)
			}

			ascii[i] = '.'
			if val >= 0x20 && val < 0x7F {
				ascii[i] = val
			}
		}
		if _, err := fmt.Fprintf(w, "  |%s|\n", ascii[:cols]); err != nil {
			return err
		}
	}
	return nil
}
