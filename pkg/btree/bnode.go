package btree

import "btrdb/pkg/pager"

// loadBNode reads a fixed-size on-disk B-node record: Order-1 key offsets,
// Order-1 value offsets, Order child offsets, each an 8-byte big-endian
// pointer with 0 meaning absent. Trailing zero entries are not returned:
// occupied slots are always a contiguous prefix, since every mutation path
// keeps keys and values packed to the left.
func loadBNode(p pager.Pager, cfg Config) (keys, values, children []uint64, err error) {
	maxKeys := cfg.MaxKeys()

	rawKeys := make([]uint64, maxKeys)
	for i := range rawKeys {
		if rawKeys[i], err = loadU64(p); err != nil {
			return nil, nil, nil, err
		}
	}
	rawValues := make([]uint64, maxKeys)
	for i := range rawValues {
		if rawValues[i], err = loadU64(p); err != nil {
			return nil, nil, nil, err
		}
	}
	rawChildren := make([]uint64, cfg.Order)
	for i := range rawChildren {
		if rawChildren[i], err = loadU64(p); err != nil {
			return nil, nil, nil, err
		}
	}

	keys = trimTrailingZeros(rawKeys)
	values = trimTrailingZeros(rawValues)
	children = trimTrailingZeros(rawChildren)
	return keys, values, children, nil
}

func trimTrailingZeros(s []uint64) []uint64 {
	n := len(s)
	for n > 0 && s[n-1] == 0 {
		n--
	}
	return s[:n]
}

// dumpBNode writes a fixed-size B-node record, padding keys, values, and
// children out to their fixed capacities with the 0 sentinel.
func dumpBNode(p pager.Pager, cfg Config, keys, values, children []uint64) error {
	if err := writePadded(p, keys, cfg.MaxKeys()); err != nil {
		return err
	}
	if err := writePadded(p, values, cfg.MaxKeys()); err != nil {
		return err
	}
	return writePadded(p, children, int(cfg.Order))
}

func writePadded(p pager.Pager, s []uint64, n int) error {
	for i := 0; i < n; i++ {
		var v uint64
		if i < len(s) {
			v = s[i]
		}
		if err := dumpU64(p, v); err != nil {
			return err
		}
	}
	return nil
}

// WriteEmptyBNode appends a fresh, empty B-node record at the end of the
// file and returns its offset.
func WriteEmptyBNode(p pager.Pager, cfg Config) (uint64, error) {
	off, err := p.AppendAtEnd()
	if err != nil {
		return 0, err
	}
	if err := dumpBNode(p, cfg, nil, nil, nil); err != nil {
		return 0, err
	}
	return off, nil
}
