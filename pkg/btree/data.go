package btree

import (
	"io"
	"runtime"
	"sync"
	"weak"
)

// Data is a lazy reference to a value living at a byte offset in the
// engine's file: a key, a value, or (transitively) a key or value nested
// inside a Tree or Array. Decoding happens on first Get; after that, Tree
// and Array values always stay cached (they carry in-memory mutation state
// of their own), while scalar values are cached only when the caller asks.
type Data struct {
	eng       *Engine
	offset    uint64
	cached    any
	hasCached bool
	isTree    bool
	isArray   bool
}

// Offset returns the byte offset this Data refers to.
func (d *Data) Offset() uint64 { return d.offset }

// Get decodes the value this Data points at. useCache is forced true for
// Tree and Array values, since those carry live mutation state that a
// fresh decode would discard.
func (d *Data) Get(useCache bool) (any, error) {
	if d.isTree || d.isArray {
		useCache = true
	}
	if useCache && d.hasCached {
		return d.cached, nil
	}

	if _, err := d.eng.Pager.Seek(int64(d.offset), io.SeekStart); err != nil {
		return nil, err
	}
	v, err := decodeValue(d.eng.Pager, d.offset, d.eng)
	if err != nil {
		return nil, err
	}

	switch v.(type) {
	case *Node:
		d.isTree = true
	case *Array:
		d.isArray = true
	}
	if d.isTree || d.isArray || useCache {
		d.cached = v
		d.hasCached = true
	}
	return v, nil
}

// compareKey decodes this Data's value and compares it against an
// already-normalized key.
func (d *Data) compareKey(key any) (int, error) {
	v, err := d.Get(true)
	if err != nil {
		return 0, err
	}
	return compareTo(v, key), nil
}

// internKey identifies a Data by the pager it belongs to and its byte
// offset. One live Data exists per such pair: decoding the same offset
// twice through two separate Data objects would let their in-memory Tree
// or Array mutation state diverge.
type internKey struct {
	eng    *Engine
	offset uint64
}

var (
	internMu    sync.Mutex
	internTable = make(map[internKey]weak.Pointer[Data])
)

// internData returns the live Data for (eng, offset), creating one if none
// is currently reachable.
func internData(eng *Engine, offset uint64) *Data {
	key := internKey{eng, offset}

	internMu.Lock()
	defer internMu.Unlock()

	if wp, ok := internTable[key]; ok {
		if d := wp.Value(); d != nil {
			return d
		}
	}

	d := &Data{eng: eng, offset: offset}
	internTable[key] = weak.Make(d)
	runtime.AddCleanup(d, cleanupInternedData, key)
	return d
}

// internDataWithCache is internData plus pre-seeding the cache with a value
// the caller just produced (e.g. right after writing it), avoiding an
// immediate redundant decode.
func internDataWithCache(eng *Engine, offset uint64, cached any) *Data {
	d := internData(eng, offset)
	if !d.hasCached {
		d.cached = cached
		d.hasCached = true
		switch cached.(type) {
		case *Node:
			d.isTree = true
		case *Array:
			d.isArray = true
		}
	}
	return d
}

func cleanupInternedData(key internKey) {
	internMu.Lock()
	defer internMu.Unlock()
	if wp, ok := internTable[key]; ok && wp.Value() == nil {
		delete(internTable, key)
	}
}
