package btree

import (
	"fmt"
	"io"
	"os"
	"time"

	"btrdb/pkg/pager"
)

// Vacuum compacts the file n belongs to: it copies every reachable key,
// value, and node into a fresh file, following the same offset a value was
// shared at so structural sharing survives compaction, then atomically
// swaps the new file in for the old one. It returns the number of bytes
// freed.
func (n *Node) Vacuum() (int64, error) {
	if err := n.Freeze(); err != nil {
		return 0, err
	}

	beforeSize, err := n.eng.Pager.AppendAtEnd()
	if err != nil {
		return 0, err
	}

	origName := n.eng.Pager.Name()
	tmpPath := tempVacuumPath(origName)

	tmpFile, err := pager.Open(tmpPath, false)
	if err != nil {
		return 0, err
	}

	if err := DumpHeader(tmpFile, Header{Order: n.eng.Config.Order, RootNode: 0}); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, err
	}

	newRoot, err := n.vacuumInto(tmpFile, make(map[uint64]uint64))
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, err
	}

	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, err
	}
	if err := DumpHeader(tmpFile, Header{Order: n.eng.Config.Order, RootNode: newRoot}); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, err
	}

	afterSize, err := tmpFile.AppendAtEnd()
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, err
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	if err := os.Rename(tmpPath, origName); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	freshFile, err := pager.Open(origName, false)
	if err != nil {
		return 0, err
	}
	// Swap closes the old pager's handle only now, after the rename. On
	// POSIX this is safe regardless of ordering: renaming over an open file
	// leaves existing descriptors bound to the old inode until closed,
	// which is exactly what Swap does next.
	if err := n.eng.Pager.Swap(freshFile); err != nil {
		return 0, err
	}

	// Every record now sits at a new offset, so Data interned from the old
	// file must not be handed out for offsets in the new one.
	internMu.Lock()
	for k := range internTable {
		if k.eng == n.eng {
			delete(internTable, k)
		}
	}
	internMu.Unlock()

	n.offset = newRoot
	n.parent = nil
	n.accessed = false
	n.modified = false
	if err := n.access(); err != nil {
		return 0, err
	}

	freed := int64(beforeSize) - int64(afterSize)
	if freed < 0 {
		panic(fmt.Sprintf("btrdb: vacuum grew the file by %d bytes", -freed))
	}
	return freed, nil
}

// vacuumInto writes this node's subtree into dst, returning its new offset.
// Keys are always copied fresh; values are deduplicated against xref so a
// Tree or Array shared across multiple keys is written to dst only once.
// xref is shared across the whole node but a fresh map is used for each
// distinct array or nested tree the caller descends into, matching the
// sharing granularity of the on-disk format: only values reachable through
// more than one key offset in the SAME tree alias each other.
func (n *Node) vacuumInto(dst pager.Pager, xref map[uint64]uint64) (uint64, error) {
	if err := n.ensureAccessed(); err != nil {
		return 0, err
	}

	newKeys := make([]uint64, len(n.keys))
	for i, k := range n.keys {
		off, err := copyScalarValue(n.eng.Pager, dst, k.offset)
		if err != nil {
			return 0, err
		}
		newKeys[i] = off
	}

	newValues := make([]uint64, len(n.values))
	for i, v := range n.values {
		off, err := n.vacuumValue(v, dst, xref)
		if err != nil {
			return 0, err
		}
		newValues[i] = off
	}

	var newChildren []uint64
	if !n.isLeaf() {
		newChildren = make([]uint64, len(n.children))
		for i, c := range n.children {
			off, err := c.vacuumInto(dst, xref)
			if err != nil {
				return 0, err
			}
			newChildren[i] = off
		}
	}

	newOff, err := dst.AppendAtEnd()
	if err != nil {
		return 0, err
	}
	if err := dumpBNode(dst, n.eng.Config, newKeys, newValues, newChildren); err != nil {
		return 0, err
	}
	return newOff, nil
}

func (n *Node) vacuumValue(v *Data, dst pager.Pager, xref map[uint64]uint64) (uint64, error) {
	if newOff, ok := xref[v.offset]; ok {
		return newOff, nil
	}

	val, err := v.Get(true)
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
		newOff, err = vv.vacuumInto(n.eng.Pager, dst)
		if err != nil {
			return 0, err
		}
	default:
		newOff, err = copyScalarValue(n.eng.Pager, dst, v.offset)
		if err != nil {
			return 0, err
		}
	}

	xref[v.offset] = newOff
	return newOff, nil
}

func tempVacuumPath(orig string) string {
	now := time.Now()
	return fmt.Sprintf("%s.%d_%d_%d_%d_%d_%d.tmp", orig,
		now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second())
}
