package btree

import (
	"fmt"

	"btrdb/pkg/errs"
	"btrdb/pkg/pager"
)

// Signature is the fixed 3-byte ASCII marker every database file starts with.
const Signature = "BTR"

// HeaderSize is the fixed on-disk size of a Header: 3-byte signature,
// 2-byte order, 8-byte root node offset.
const HeaderSize = len(Signature) + 2 + 8

// Header is the file-level record: format signature, branching factor, and
// the offset of the root node.
type Header struct {
	Order    uint16
	RootNode uint64
}

// LoadHeader reads a Header from the pager's current position, verifying
// the signature.
func LoadHeader(p pager.Pager) (Header, error) {
	sig := make([]byte, len(Signature))
	for i := range sig {
		b, err := loadU8(p)
		if err != nil {
			return Header{}, err
		}
		sig[i] = b
	}
	if string(sig) != Signature {
		return Header{}, fmt.Errorf("%w: bad signature %q", errs.ErrCorruption, sig)
	}

	order, err := loadU16(p)
	if err != nil {
		return Header{}, err
	}
	root, err := loadU64(p)
	if err != nil {
		return Header{}, err
	}
	return Header{Order: order, RootNode: root}, nil
}

// DumpHeader writes h at the pager's current position.
func DumpHeader(p pager.Pager, h Header) error {
	for i := 0; i < len(Signature); i++ {
		if err := dumpU8(p, Signature[i]); err != nil {
			return err
		}
	}
	if err := dumpU16(p, h.Order); err != nil {
		return err
	}
	return dumpU64(p, h.RootNode)
}
