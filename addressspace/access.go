// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package addressspace

import (
	"unsafe"

	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/errors"
)

// pageFor returns the (possibly cached) page covering addr for the given
// side, rebuilding it if the space has been remapped since it was built.
func (as *AddressSpace) pageFor(side []region, cache map[uint64]*builtPage, addr uint64) *page {
	pageIndex := addr / pageSize

	as.pagesMu.Lock()
	gen := as.generation
	bp, ok := cache[pageIndex]
	as.pagesMu.Unlock()

	if ok && bp.generation == gen {
		return &bp.p
	}

	built := buildPage(side, as.mask, addr)

	as.pagesMu.Lock()
	cache[pageIndex] = &builtPage{generation: gen, p: built}
	as.pagesMu.Unlock()

	return &built
}

// denialBuilder accumulates contiguous same-denial byte runs into a single
// *errors.BusError, merging adjacent ranges as it goes.
type denialBuilder struct {
	space int
	err   *errors.BusError
	start uint64
	end   uint64
	kind  errors.Denial
	open  bool
}

func (d *denialBuilder) add(addr uint64, kind errors.Denial) {
	if d.open && kind == d.kind && addr == d.end+1 {
		d.end = addr
		return
	}
	d.flush()
	d.start, d.end, d.kind, d.open = addr, addr, kind, true
}

func (d *denialBuilder) flush() {
	if !d.open {
		return
	}
	if d.err == nil {
		d.err = errors.NewBusError(d.space, int(d.start), int(d.end), d.kind)
	} else {
		d.err.Merge(errors.NewBusError(d.space, int(d.start), int(d.end), d.kind))
	}
	d.open = false
}

// Read fills buf starting at address, wrapping around the top of the space
// if the access runs past it. Bytes that could not be serviced are left
// unmodified in buf; the returned error, if non-nil, is an *errors.BusError
// describing which ranges failed and why.
func (as *AddressSpace) Read(address uint64, avoidSideEffects bool, buf []byte) error {
	as.mu.RLock()
	read := as.read
	as.mu.RUnlock()

	db := &denialBuilder{space: int(as.id)}

	for i := range buf {
		addr := (address + uint64(i)) & as.mask
		p := as.pageFor(read, as.readPages, addr)
		members, ok := p.lookup(addr)
		if !ok {
			db.add(addr, errors.OutOfBus)
			continue
		}

		if len(members) == 1 {
			v, err := readMember(members[0], avoidSideEffects)
			if err != nil {
				db.add(addr, classify(err, avoidSideEffects))
				continue
			}
			buf[i] = v
			continue
		}

		merged := uint8(0xff)
		failed := false
		for _, m := range members {
			v, err := readMember(m, avoidSideEffects)
			if err != nil {
				db.add(addr, classify(err, avoidSideEffects))
				failed = true
				break
			}
			merged &= v
		}
		if !failed {
			buf[i] = merged
		}
	}

	db.flush()
	if db.err != nil {
		return db.err
	}
	return nil
}

// Write writes buf starting at address, wrapping around the top of the
// space if the access runs past it.
func (as *AddressSpace) Write(address uint64, buf []byte) error {
	as.mu.RLock()
	write := as.write
	as.mu.RUnlock()

	db := &denialBuilder{space: int(as.id)}

	for i, value := range buf {
		addr := (address + uint64(i)) & as.mask
		p := as.pageFor(write, as.writePages, addr)
		members, ok := p.lookup(addr)
		if !ok {
			db.add(addr, errors.OutOfBus)
			continue
		}

		if len(members) == 1 {
			if err := writeMember(members[0], value); err != nil {
				db.add(addr, errors.Denied)
			}
			continue
		}

		// Bus contention (§9 OQ3): the value actually latched is the AND of
		// every contending driver's current byte with the incoming value.
		merged := value
		failed := false
		for _, m := range members {
			cur, err := readMember(m, true)
			if err != nil {
				db.add(addr, errors.Denied)
				failed = true
				break
			}
			merged &= cur
		}
		if failed {
			continue
		}
		for _, m := range members {
			if err := writeMember(m, merged); err != nil {
				db.add(addr, errors.Denied)
				failed = true
				break
			}
		}
	}

	db.flush()
	if db.err != nil {
		return db.err
	}
	return nil
}

func readMember(m member, avoidSideEffects bool) (uint8, error) {
	rd, ok := m.target.(component.Reader)
	if !ok {
		return 0, errComponentCannotRead
	}
	return rd.ReadMemory(uint32(m.localBase), avoidSideEffects)
}

func writeMember(m member, value uint8) error {
	wr, ok := m.target.(component.Writer)
	if !ok {
		return errComponentCannotWrite
	}
	return wr.WriteMemory(uint32(m.localBase), value)
}

// classify turns a component-level read failure into a Denial: a component
// that only refused because side effects were disallowed reports Impossible,
// everything else reports Denied.
func classify(err error, avoidSideEffects bool) errors.Denial {
	if avoidSideEffects && err == errComponentCannotRead {
		return errors.Impossible
	}
	return errors.Denied
}

type sentinel string

func (s sentinel) Error() string { return string(s) }

const (
	errComponentCannotRead  = sentinel("addressspace: component does not implement Reader")
	errComponentCannotWrite = sentinel("addressspace: component does not implement Writer")
)

// Unsigned is the set of integer widths the typed bus helpers support.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ReadLEValue reads sizeof(T) bytes starting at address and decodes them as
// a little-endian T.
func ReadLEValue[T Unsigned](as *AddressSpace, address uint64, avoidSideEffects bool) (T, error) {
	var v T
	buf := make([]byte, unsafe.Sizeof(v))
	err := as.Read(address, avoidSideEffects, buf)
	var acc uint64
	for i := len(buf) - 1; i >= 0; i-- {
		acc = acc<<8 | uint64(buf[i])
	}
	return T(acc), err
}

// ReadBEValue reads sizeof(T) bytes starting at address and decodes them as
// a big-endian T.
func ReadBEValue[T Unsigned](as *AddressSpace, address uint64, avoidSideEffects bool) (T, error) {
	var v T
	buf := make([]byte, unsafe.Sizeof(v))
	err := as.Read(address, avoidSideEffects, buf)
	var acc uint64
	for _, b := range buf {
		acc = acc<<8 | uint64(b)
	}
	return T(acc), err
}

// WriteLEValue encodes value as little-endian and writes it starting at
// address.
func WriteLEValue[T Unsigned](as *AddressSpace, address uint64, value T) error {
	v := uint64(value)
	buf := make([]byte, unsafe.Sizeof(value))
	for i := range buf {
		buf[i] = byte(v)
		v >>= 8
	}
	return as.Write(address, buf)
}

// WriteBEValue encodes value as big-endian and writes it starting at
// address.
func WriteBEValue[T Unsigned](as *AddressSpace, address uint64, value T) error {
	v := uint64(value)
	buf := make([]byte, unsafe.Sizeof(value))
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	return as.Write(address, buf)
}
