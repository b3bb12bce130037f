// Package luadev implements memory-mapped peripherals scripted in Lua.
//
// A script must define two global functions:
//
//	function read(offset)          -- returns the byte at offset
//	function write(offset, value)
//
// Offsets are local to the device. Scripts can see the globals 'name' and
// 'size', and can access the rest of the address space with bus_read(addr)
// and bus_write(addr, value), which raise a Lua error on unmapped addresses.
package luadev

import (
	"fmt"

	"github.com/go-faster/errors"
	lua "github.com/yuin/gopher-lua"

	"symbus/emu/log"
	"symbus/hw/hwio"
)

type Device struct {
	hwio.BusLink

	Name string

	L       *lua.LState
	readFn  *lua.LFunction
	writeFn *lua.LFunction
	rng     hwio.Range
}

// New creates a device covering [start, end], running the given Lua source.
func New(name string, start, end uint32, src string) (*Device, error) {
	return newDevice(name, start, end, func(L *lua.LState) error {
		return L.DoString(src)
	})
}

// NewFromFile is like New but reads the Lua source from path.
func NewFromFile(name string, start, end uint32, path string) (*Device, error) {
	return newDevice(name, start, end, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

func newDevice(name string, start, end uint32, load func(*lua.LState) error) (*Device, error) {
	if start > end {
		return nil, errors.Errorf("lua device %q: invalid range $%04X-$%04X", name, start, end)
	}

	d := &Device{
		Name: name,
		L:    lua.NewState(),
		rng:  hwio.NewRange(start, end),
	}

	d.L.SetGlobal("name", lua.LString(name))
	d.L.SetGlobal("size", lua.LNumber(d.rng.Size()))
	d.L.SetGlobal("bus_read", d.L.NewFunction(d.busRead))
	d.L.SetGlobal("bus_write", d.L.NewFunction(d.busWrite))

	if err := load(d.L); err != nil {
		d.L.Close()
		return nil, errors.Wrapf(err, "lua device %q", name)
	}

	var ok bool
	if d.readFn, ok = d.L.GetGlobal("read").(*lua.LFunction); !ok {
		d.L.Close()
		return nil, errors.Errorf("lua device %q: script doesn't define read(offset)", name)
	}
	if d.writeFn, ok = d.L.GetGlobal("write").(*lua.LFunction); !ok {
		d.L.Close()
		return nil, errors.Errorf("lua device %q: script doesn't define write(offset, value)", name)
	}
	return d, nil
}

func (d *Device) Range() hwio.Range { return d.rng }

// Read8 calls the script read function. Script errors are logged and read
// as 0.
func (d *Device) Read8(off uint32) uint8 {
	err := d.L.CallByParam(lua.P{Fn: d.readFn, NRet: 1, Protect: true}, lua.LNumber(off))
	if err != nil {
		d.scriptError("read", off, err)
		return 0
	}

	ret := d.L.Get(-1)
	d.L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		d.scriptError("read", off, errors.Errorf("read returned %s, want a number", ret.Type()))
		return 0
	}
	return uint8(int64(n))
}

// Write8 calls the script write function.
func (d *Device) Write8(off uint32, val uint8) {
	err := d.L.CallByParam(lua.P{Fn: d.writeFn, NRet: 0, Protect: true}, lua.LNumber(off), lua.LNumber(val))
	if err != nil {
		d.scriptError("write", off, err)
	}
}

// Close releases the Lua interpreter.
func (d *Device) Close() {
	d.L.Close()
}

func (d *Device) String() string {
	return fmt.Sprintf("lua %q %s", d.Name, d.rng)
}

func (d *Device) scriptError(fn string, off uint32, err error) {
	log.ModDev.ErrorZ("lua script error").
		String("name", d.Name).
		String("fn", fn).
		Addr("off", off).
		Error("err", err).
		End()
}

func (d *Device) busRead(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	bus := d.Bus()
	if bus == nil {
		L.RaiseError("device %s is not mapped on a bus", d.Name)
		return 0
	}
	val, err := bus.Read8(addr)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(val))
	return 1
}

func (d *Device) busWrite(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	val := uint8(L.CheckInt64(2))
	bus := d.Bus()
	if bus == nil {
		L.RaiseError("device %s is not mapped on a bus", d.Name)
		return 0
	}
	if err := bus.Write8(addr, val); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}
