package hwio

import (
	"reflect"
	"slices"
	"sort"
)

// Registry is the set of devices mapped on a bus, kept ordered by start
// address. No two registered devices have overlapping ranges.
type Registry struct {
	devs []Device
}

func (r *Registry) Len() int { return len(r.devs) }

// search returns the index of the first device starting after addr.
func (r *Registry) search(addr uint32) int {
	return sort.Search(len(r.devs), func(i int) bool {
		return r.devs[i].Range().Start() > addr
	})
}

// Add inserts d, or returns an *OverlapError if d overlaps a registered
// device, in which case the registry is left untouched.
//
// Since registered ranges are disjoint and ordered, only the devices directly
// before and after the insertion point can overlap d.
func (r *Registry) Add(d Device) error {
	rng := d.Range()
	idx := r.search(rng.Start())

	if idx > 0 {
		if prev := r.devs[idx-1]; prev.Range().Overlaps(rng) {
			return &OverlapError{Existing: prev, Range: rng}
		}
	}
	if idx < len(r.devs) {
		if next := r.devs[idx]; next.Range().Overlaps(rng) {
			return &OverlapError{Existing: next, Range: rng}
		}
	}

	r.devs = slices.Insert(r.devs, idx, d)
	return nil
}

// Remove removes d and reports whether it was registered. Devices of a
// non comparable type are never found.
func (r *Registry) Remove(d Device) bool {
	if d == nil || !reflect.TypeOf(d).Comparable() {
		return false
	}
	idx := r.search(d.Range().Start()) - 1
	if idx < 0 || r.devs[idx] != d {
		return false
	}
	r.devs = slices.Delete(r.devs, idx, idx+1)
	return true
}

// Lookup returns the device mapped at addr.
func (r *Registry) Lookup(addr uint32) (Device, bool) {
	idx := r.search(addr) - 1
	if idx < 0 || !r.devs[idx].Range().Includes(addr) {
		return nil, false
	}
	return r.devs[idx], true
}

// Snapshot returns a copy of the registered devices, ordered by start address.
func (r *Registry) Snapshot() []Device {
	return slices.Clone(r.devs)
}

// IsComplete reports whether the registered devices exactly tile [start, end],
// without any gap. An empty registry is never complete.
func (r *Registry) IsComplete(start, end uint32) bool {
	if len(r.devs) == 0 {
		return false
	}
	if r.devs[0].Range().Start() != start {
		return false
	}
	for i := 1; i < len(r.devs); i++ {
		if uint64(r.devs[i-1].Range().End())+1 != uint64(r.devs[i].Range().Start()) {
			return false
		}
	}
	return r.devs[len(r.devs)-1].Range().End() == end
}

// Gaps returns the unmapped ranges within [start, end], in address order.
func (r *Registry) Gaps(start, end uint32) []Range {
	var gaps []Range
	next := uint64(start)
	for _, d := range r.devs {
		rng := d.Range()
		if uint64(rng.End()) < next {
			continue
		}
		if rng.Start() > end {
			break
		}
		if uint64(rng.Start()) > next {
			gaps = append(gaps, NewRange(uint32(next), rng.Start()-1))
		}
		next = uint64(rng.End()) + 1
	}
	if next <= uint64(end) {
		gaps = append(gaps, NewRange(uint32(next), end))
	}
	return gaps
}
