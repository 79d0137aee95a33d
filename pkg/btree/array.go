package btree

import (
	"fmt"
	"io"

	"btrdb/pkg/errs"
	"btrdb/pkg/pager"
)

// Array is a virtual, lazily-loaded sequence value: a power-of-two slot
// region of 8-byte child offsets plus a logical length. Writes go into an
// in-memory override map and only reach disk on freeze, mirroring how a
// Node defers its own mutations. Growing past the current slot capacity
// marks the array for a full slot-region reallocation at freeze time
// instead of reallocating eagerly on every Append.
type Array struct {
	eng          *Engine
	headerOffset uint64
	power        uint8
	length       uint32
	slotOffset   uint64
	overrides    map[uint32]*Data
	grew         bool
}

func newArray(eng *Engine, headerOffset uint64, power uint8, length uint32, slotOffset uint64) *Array {
	return &Array{
		eng:          eng,
		headerOffset: headerOffset,
		power:        power,
		length:       length,
		slotOffset:   slotOffset,
		overrides:    make(map[uint32]*Data),
	}
}

func maxArrayLength(power uint8) uint64 { return uint64(1) << power }

// Len reports the array's current logical length.
func (a *Array) Len() uint32 { return a.length }

// Get returns the Data at index i.
func (a *Array) Get(i uint32) (*Data, error) {
	if i >= a.length {
		return nil, fmt.Errorf("%w: index %d, length %d", errs.ErrIndexOutOfRange, i, a.length)
	}
	if d, ok := a.overrides[i]; ok {
		return d, nil
	}
	if _, err := a.eng.Pager.Seek(int64(a.slotOffset)+int64(i)*8, io.SeekStart); err != nil {
		return nil, err
	}
	off, err := loadU64(a.eng.Pager)
	if err != nil {
		return nil, err
	}
	return internData(a.eng, off), nil
}

// Set overwrites the value at index i.
func (a *Array) Set(i uint32, v any) error {
	if i >= a.length {
		return fmt.Errorf("%w: index %d, length %d", errs.ErrIndexOutOfRange, i, a.length)
	}
	d, err := a.dataFor(v)
	if err != nil {
		return err
	}
	a.overrides[i] = d
	return nil
}

// Append adds v to the end of the array, growing its slot region at the
// next freeze if capacity is exceeded.
func (a *Array) Append(v any) error {
	d, err := a.dataFor(v)
	if err != nil {
		return err
	}
	idx := a.length
	a.overrides[idx] = d
	a.length++
	if uint64(a.length) > maxArrayLength(a.power) {
		a.power++
		a.grew = true
	}
	return nil
}

func (a *Array) dataFor(v any) (*Data, error) {
	if d, ok := v.(*Data); ok {
		return d, nil
	}
	switch mv := v.(type) {
	case map[string]any:
		return createTreeValueWithContents(a.eng, mv)
	case []any:
		return createArrayValue(a.eng, mv)
	default:
		nv := normalizeValue(v)
		off, err := encodeValue(a.eng.Pager, nv)
		if err != nil {
			return nil, err
		}
		return internDataWithCache(a.eng, off, nv), nil
	}
}

// freeze writes any pending overrides (and, if the array grew, a fresh slot
// region) and rewrites the array header in place.
func (a *Array) freeze() error {
	for _, d := range a.overrides {
		if err := a.freezeIfNested(d); err != nil {
			return err
		}
	}

	if a.grew {
		newSlotOff, err := a.eng.Pager.AppendAtEnd()
		if err != nil {
			return err
		}
		capacity := maxArrayLength(a.power)
		for i := uint64(0); i < capacity; i++ {
			var off uint64
			if i < uint64(a.length) {
				if d, ok := a.overrides[uint32(i)]; ok {
					off = d.offset
				} else {
					if _, err := a.eng.Pager.Seek(int64(a.slotOffset)+int64(i)*8, io.SeekStart); err != nil {
						return err
					}
					old, err := loadU64(a.eng.Pager)
					if err != nil {
						return err
					}
					off = old
				}
			}
			if _, err := a.eng.Pager.Seek(int64(newSlotOff)+int64(i)*8, io.SeekStart); err != nil {
				return err
			}
			if err := dumpU64(a.eng.Pager, off); err != nil {
				return err
			}
		}
		a.slotOffset = newSlotOff
		a.grew = false
	} else {
		for idx, d := range a.overrides {
			if _, err := a.eng.Pager.Seek(int64(a.slotOffset)+int64(idx)*8, io.SeekStart); err != nil {
				return err
			}
			if err := dumpU64(a.eng.Pager, d.offset); err != nil {
				return err
			}
		}
	}
	a.overrides = make(map[uint32]*Data)

	if _, err := a.eng.Pager.Seek(int64(a.headerOffset)+1, io.SeekStart); err != nil {
		return err
	}
	if err := dumpU8(a.eng.Pager, a.power); err != nil {
		return err
	}
	if err := dumpU32(a.eng.Pager, a.length); err != nil {
		return err
	}
	return dumpU64(a.eng.Pager, a.slotOffset)
}

func (a *Array) freezeIfNested(d *Data) error {
	if d.isTree {
		v, err := d.Get(true)
		if err != nil {
			return err
		}
		if sub, ok := v.(*Node); ok {
			_, err := sub.freeze()
			return err
		}
	}
	if d.isArray {
		v, err := d.Get(true)
		if err != nil {
			return err
		}
		if sub, ok := v.(*Array); ok {
			return sub.freeze()
		}
	}
	return nil
}

// newEmptyArrayData allocates a brand-new empty array on disk and returns
// an inert Data pointing at its tag byte; decoding it is what produces the
// live *Array.
func newEmptyArrayData(eng *Engine) (*Data, error) {
	slotOff, err := eng.Pager.AppendAtEnd()
	if err != nil {
		return nil, err
	}
	if err := dumpU64(eng.Pager, 0); err != nil {
		return nil, err
	}

	tagOff, err := eng.Pager.AppendAtEnd()
	if err != nil {
		return nil, err
	}
	if err := dumpU8(eng.Pager, typeArray); err != nil {
		return nil, err
	}
	if err := dumpU8(eng.Pager, 0); err != nil {
		return nil, err
	}
	if err := dumpU32(eng.Pager, 0); err != nil {
		return nil, err
	}
	if err := dumpU64(eng.Pager, slotOff); err != nil {
		return nil, err
	}

	return internData(eng, tagOff), nil
}

// createArrayValue builds a brand-new array value populated from items, in
// the shape Insert uses for a slice-typed literal.
func createArrayValue(eng *Engine, items []any) (*Data, error) {
	d, err := newEmptyArrayData(eng)
	if err != nil {
		return nil, err
	}
	v, err := d.Get(true)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*Array)
	if !ok {
		return nil, fmt.Errorf("%w: created array decoded unexpectedly", errs.ErrCorruption)
	}
	for _, it := range items {
		if err := arr.Append(it); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// vacuumInto copies the array's current logical contents into dst as a
// fresh slot region and header, returning the new tag-byte offset.
func (a *Array) vacuumInto(src, dst pager.Pager) (uint64, error) {
	newSlots := make([]uint64, a.length)
	for i := uint32(0); i < a.length; i++ {
		d, err := a.Get(i)
		if err != nil {
			return 0, err
		}
		val, err := d.Get(true)
		if err != nil {
			return 0, err
		}

		var newOff uint64
		switch vv := val.(type) {
		case *Node:
			newRoot, err := vv.vacuumInto(dst, make(map[uint64]uint64))
			if err != nil {
				return 0, err
			}
			newOff, err = dst.AppendAtEnd()
			if err != nil {
				return 0, err
			}
			if err := dumpU8(dst, typeTree); err != nil {
				return 0, err
			}
			if err := dumpU64(dst, newRoot); err != nil {
				return 0, err
			}
		case *Array:
			newOff, err = vv.vacuumInto(src, dst)
			if err != nil {
				return 0, err
			}
		default:
			newOff, err = copyScalarValue(src, dst, d.offset)
			if err != nil {
				return 0, err
			}
		}
		newSlots[i] = newOff
	}

	slotOff, err := dst.AppendAtEnd()
	if err != nil {
		return 0, err
	}
	for _, s := range newSlots {
		if err := dumpU64(dst, s); err != nil {
			return 0, err
		}
	}
	for i := uint64(len(newSlots)); i < maxArrayLength(a.power); i++ {
		if err := dumpU64(dst, 0); err != nil {
			return 0, err
		}
	}

	tagOff, err := dst.AppendAtEnd()
	if err != nil {
		return 0, err
	}
	if err := dumpU8(dst, typeArray); err != nil {
		return 0, err
	}
	if err := dumpU8(dst, a.power); err != nil {
		return 0, err
	}
	if err := dumpU32(dst, a.length); err != nil {
		return 0, err
	}
	if err := dumpU64(dst, slotOff); err != nil {
		return 0, err
	}
	return tagOff, nil
}
