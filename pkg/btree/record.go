package btree

import (
	"fmt"
	"io"

	"btrdb/pkg/errs"
	"btrdb/pkg/pager"
)

// Tagged-value type codes. These are the on-disk discriminant for every
// record a Data offset can point at.
const (
	typeString  uint8 = 0
	typeNumber  uint8 = 1
	typeTree    uint8 = 2
	typeEmpty   uint8 = 3
	typeBoolean uint8 = 4
	typeBytes   uint8 = 5
	typeArray   uint8 = 6
)

// encodeValue appends a tagged scalar value at the end of the file and
// returns the offset of its type tag. Tree and Array values are never
// built here: they need dedicated allocation (a fresh B-node, a fresh slot
// region) that the node and array layers own.
func encodeValue(p pager.Pager, v any) (uint64, error) {
	off, err := p.AppendAtEnd()
	if err != nil {
		return 0, err
	}
	if err := dumpTagged(p, v); err != nil {
		return 0, err
	}
	return off, nil
}

func dumpTagged(p pager.Pager, v any) error {
	switch x := v.(type) {
	case string:
		if err := dumpU8(p, typeString); err != nil {
			return err
		}
		return dumpString(p, x)
	case float32:
		if err := dumpU8(p, typeNumber); err != nil {
			return err
		}
		return dumpFloat32(p, x)
	case nil:
		return dumpU8(p, typeEmpty)
	case bool:
		if err := dumpU8(p, typeBoolean); err != nil {
			return err
		}
		return dumpBool(p, x)
	case []byte:
		if err := dumpU8(p, typeBytes); err != nil {
			return err
		}
		return dumpBytes(p, x)
	default:
		return fmt.Errorf("%w: %T", errs.ErrUnsupportedType, v)
	}
}

// decodeValue reads the tagged value located at the pager's current
// position. at is the offset of the tag byte itself: for Array values it
// becomes the handle's header offset, used later to rewrite the header in
// place on freeze.
func decodeValue(p pager.Pager, at uint64, eng *Engine) (any, error) {
	tag, err := loadU8(p)
	if err != nil {
		return nil, err
	}
	switch tag {
	case typeString:
		return loadString(p)
	case typeNumber:
		return loadFloat32(p)
	case typeTree:
		rootOff, err := loadU64(p)
		if err != nil {
			return nil, err
		}
		return newNode(eng, rootOff, nil), nil
	case typeEmpty:
		return nil, nil
	case typeBoolean:
		return loadBool(p)
	case typeBytes:
		return loadBytes(p)
	case typeArray:
		power, err := loadU8(p)
		if err != nil {
			return nil, err
		}
		length, err := loadU32(p)
		if err != nil {
			return nil, err
		}
		slotOff, err := loadU64(p)
		if err != nil {
			return nil, err
		}
		return newArray(eng, at, power, length, slotOff), nil
	default:
		return nil, fmt.Errorf("%w: unknown type tag %d at offset %d", errs.ErrCorruption, tag, at)
	}
}

// copyScalarValue copies a non-Tree, non-Array tagged value from src at
// offset to the end of dst, returning its new offset. Used by vacuum, which
// handles Tree and Array values itself so it can recurse and deduplicate.
func copyScalarValue(src, dst pager.Pager, offset uint64) (uint64, error) {
	if _, err := src.Seek(int64(offset), io.SeekStart); err != nil {
		return 0, err
	}
	tag, err := loadU8(src)
	if err != nil {
		return 0, err
	}

	newOff, err := dst.AppendAtEnd()
	if err != nil {
		return 0, err
	}
	if err := dumpU8(dst, tag); err != nil {
		return 0, err
	}

	switch tag {
	case typeString:
		s, err := loadString(src)
		if err != nil {
			return 0, err
		}
		err = dumpString(dst, s)
		return newOff, err
	case typeNumber:
		f, err := loadFloat32(src)
		if err != nil {
			return 0, err
		}
		err = dumpFloat32(dst, f)
		return newOff, err
	case typeEmpty:
		return newOff, nil
	case typeBoolean:
		b, err := loadBool(src)
		if err != nil {
			return 0, err
		}
		err = dumpBool(dst, b)
		return newOff, err
	case typeBytes:
		b, err := loadBytes(src)
		if err != nil {
			return 0, err
		}
		err = dumpBytes(dst, b)
		return newOff, err
	default:
		return 0, fmt.Errorf("%w: unexpected tag %d during vacuum", errs.ErrCorruption, tag)
	}
}
