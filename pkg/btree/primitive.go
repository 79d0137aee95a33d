package btree

import (
	"encoding/binary"
	"fmt"
	"math"

	"btrdb/pkg/errs"
	"btrdb/pkg/pager"
)

// The primitive codec reads and writes the fixed-width big-endian scalars
// the rest of the format is built from. Every load function reports
// ErrCorruption on a short read so that a truncated file surfaces as a
// corruption fault rather than a raw io.EOF bubbling out of the engine.

func readExact(p pager.Pager, n int) ([]byte, error) {
	b, err := p.Read(n)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %d bytes: %v", errs.ErrCorruption, n, err)
	}
	if len(b) != n {
		return nil, fmt.Errorf("%w: short read: got %d want %d", errs.ErrCorruption, len(b), n)
	}
	return b, nil
}

func loadU8(p pager.Pager) (uint8, error) {
	b, err := readExact(p, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func dumpU8(p pager.Pager, v uint8) error {
	_, err := p.Write([]byte{v})
	return err
}

func loadU16(p pager.Pager) (uint16, error) {
	b, err := readExact(p, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func dumpU16(p pager.Pager, v uint16) error {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	_, err := p.Write(b)
	return err
}

func loadU32(p pager.Pager) (uint32, error) {
	b, err := readExact(p, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func dumpU32(p pager.Pager, v uint32) error {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	_, err := p.Write(b)
	return err
}

func loadU64(p pager.Pager) (uint64, error) {
	b, err := readExact(p, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func dumpU64(p pager.Pager, v uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	_, err := p.Write(b)
	return err
}

func loadString(p pager.Pager) (string, error) {
	n, err := loadU32(p)
	if err != nil {
		return "", err
	}
	b, err := readExact(p, int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func dumpString(p pager.Pager, s string) error {
	if err := dumpU32(p, uint32(len(s))); err != nil {
		return err
	}
	_, err := p.Write([]byte(s))
	return err
}

func loadBytes(p pager.Pager) ([]byte, error) {
	n, err := loadU32(p)
	if err != nil {
		return nil, err
	}
	return readExact(p, int(n))
}

func dumpBytes(p pager.Pager, b []byte) error {
	if err := dumpU32(p, uint32(len(b))); err != nil {
		return err
	}
	_, err := p.Write(b)
	return err
}

func loadFloat32(p pager.Pager) (float32, error) {
	b, err := readExact(p, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

func dumpFloat32(p pager.Pager, f float32) error {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(f))
	_, err := p.Write(b)
	return err
}

func loadBool(p pager.Pager) (bool, error) {
	v, err := loadU8(p)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func dumpBool(p pager.Pager, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return dumpU8(p, b)
}
