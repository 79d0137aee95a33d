package btree

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"btrdb/pkg/errs"
)

// Node is a virtual B-node: an in-memory view of a fixed-size on-disk node
// that moves through three states. Bound to an existing on-disk offset it
// starts unaccessed, and calling access loads its keys, values, and
// children from disk. Freshly constructed with offset 0 (a split product)
// it has nothing on disk to load and starts accessed and modified. Any
// mutation marks it modified again, and only modified nodes get rewritten
// on freeze.
type Node struct {
	eng      *Engine
	offset   uint64
	parent   *Node
	keys     []*Data
	values   []*Data
	children []*Node
	accessed bool
	modified bool
}

func newNode(eng *Engine, offset uint64, parent *Node) *Node {
	n := &Node{eng: eng, offset: offset, parent: parent}
	if offset == 0 {
		n.accessed = true
		n.modified = true
	}
	return n
}

// NewRootNode binds a Node to an existing on-disk offset, the root pointer
// recorded in the file header.
func NewRootNode(eng *Engine, offset uint64) *Node {
	return newNode(eng, offset, nil)
}

// Access loads this node's keys, values, and children from disk if it has
// not been loaded yet.
func (n *Node) Access() error { return n.ensureAccessed() }

func (n *Node) ensureAccessed() error {
	if n.accessed {
		return nil
	}
	return n.access()
}

func (n *Node) access() error {
	if _, err := n.eng.Pager.Seek(int64(n.offset), io.SeekStart); err != nil {
		return err
	}
	keyOffs, valueOffs, childOffs, err := loadBNode(n.eng.Pager, n.eng.Config)
	if err != nil {
		return err
	}

	keys := make([]*Data, len(keyOffs))
	for i, off := range keyOffs {
		keys[i] = internData(n.eng, off)
	}
	values := make([]*Data, len(valueOffs))
	for i, off := range valueOffs {
		values[i] = internData(n.eng, off)
	}
	children := make([]*Node, len(childOffs))
	for i, off := range childOffs {
		children[i] = newNode(n.eng, off, n)
	}

	n.keys = keys
	n.values = values
	n.children = children
	n.accessed = true
	return nil
}

// IsLeaf reports whether this node has no children. Accessing the node
// first is the caller's responsibility.
func (n *Node) IsLeaf() bool { return n.isLeaf() }

func (n *Node) isLeaf() bool { return len(n.children) == 0 }

// KeyCount reports the number of keys currently held in memory.
func (n *Node) KeyCount() int { return len(n.keys) }

// ChildCount reports the number of children currently held in memory.
func (n *Node) ChildCount() int { return len(n.children) }

// Offset returns the node's current on-disk offset. It is only meaningful
// after a Freeze; a node that has never been written, or whose subtree has
// pending mutations, may report a stale or zero value.
func (n *Node) Offset() uint64 { return n.offset }

func bisectLeft(keys []*Data, key any) (int, error) {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		c, err := keys[mid].compareKey(key)
		if err != nil {
			return 0, err
		}
		if c < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

func (n *Node) findClosestLeafNode(key any) (*Node, error) {
	if err := n.ensureAccessed(); err != nil {
		return nil, err
	}
	if n.isLeaf() {
		return n, nil
	}
	idx, err := bisectLeft(n.keys, key)
	if err != nil {
		return nil, err
	}
	child := n.children[idx]
	if err := child.ensureAccessed(); err != nil {
		return nil, err
	}
	return child.findClosestLeafNode(key)
}

func (n *Node) writeData(v any) (uint64, error) {
	return encodeValue(n.eng.Pager, v)
}

func (n *Node) materializeValue(value any) (*Data, error) {
	switch vv := value.(type) {
	case *Data:
		return vv, nil
	case map[string]any:
		return createTreeValueWithContents(n.eng, vv)
	case []any:
		return createArrayValue(n.eng, vv)
	default:
		nv := normalizeValue(value)
		off, err := n.writeData(nv)
		if err != nil {
			return nil, err
		}
		return internDataWithCache(n.eng, off, nv), nil
	}
}

// Insert adds key/value to the tree rooted at n. value may be a scalar, a
// map[string]any (materialized as a nested Tree), a []any (materialized as
// an Array), or an existing *Data (shares the value without rewriting it).
// It returns ErrDuplicateKey if the key is already present.
func (n *Node) Insert(key, value any) (*Data, error) {
	nk := normalizeKey(key)
	keyOff, err := n.writeData(nk)
	if err != nil {
		return nil, err
	}
	keyData := internDataWithCache(n.eng, keyOff, nk)

	valueData, err := n.materializeValue(value)
	if err != nil {
		return nil, err
	}

	if err := n.insertPair(keyData, valueData); err != nil {
		return nil, err
	}
	return valueData, nil
}

func (n *Node) insertPair(key, value *Data) error {
	kv, err := key.Get(true)
	if err != nil {
		return err
	}

	if _, _, err := n.search(kv); err == nil {
		return fmt.Errorf("%w: %v", errs.ErrDuplicateKey, kv)
	} else if !errors.Is(err, errs.ErrKeyNotFound) {
		return err
	}

	leaf, err := n.findClosestLeafNode(kv)
	if err != nil {
		return err
	}

	idx, err := bisectLeft(leaf.keys, kv)
	if err != nil {
		return err
	}

	if idx < len(leaf.keys) {
		c, err := leaf.keys[idx].compareKey(kv)
		if err != nil {
			return err
		}
		if c == 0 {
			return fmt.Errorf("%w: %v", errs.ErrDuplicateKey, kv)
		}
	}

	leaf.keys = insertDataAt(leaf.keys, idx, key)
	leaf.values = insertDataAt(leaf.values, idx, value)
	leaf.modified = true

	return leaf.checkAfterInsert()
}

func (n *Node) checkAfterInsert() error {
	if len(n.keys) > n.eng.Config.MaxKeys() {
		return n.splitMe()
	}
	return nil
}

func (n *Node) splitMe() error {
	mid := n.eng.Config.MaxKeys() / 2
	middleKey := n.keys[mid]
	middleValue := n.values[mid]

	leftKeys := append([]*Data{}, n.keys[:mid]...)
	rightKeys := append([]*Data{}, n.keys[mid+1:]...)
	leftValues := append([]*Data{}, n.values[:mid]...)
	rightValues := append([]*Data{}, n.values[mid+1:]...)

	var leftChildren, rightChildren []*Node
	if !n.isLeaf() {
		leftChildren = append([]*Node{}, n.children[:mid+1]...)
		rightChildren = append([]*Node{}, n.children[mid+1:]...)
	}

	left := newNode(n.eng, 0, nil)
	right := newNode(n.eng, 0, nil)
	left.keys, left.values, left.children = leftKeys, leftValues, leftChildren
	right.keys, right.values, right.children = rightKeys, rightValues, rightChildren
	reparent(left.children, left)
	reparent(right.children, right)

	if n.parent == nil {
		left.parent = n
		right.parent = n
		n.keys = []*Data{middleKey}
		n.values = []*Data{middleValue}
		n.children = []*Node{left, right}
		n.modified = true
		return nil
	}

	parent := n.parent
	parent.modified = true
	left.parent = parent
	right.parent = parent
	left.offset = n.offset // reuse the space n already occupied on disk

	middleKV, err := middleKey.Get(true)
	if err != nil {
		return err
	}
	idx, err := bisectLeft(parent.keys, middleKV)
	if err != nil {
		return err
	}

	parent.keys = insertDataAt(parent.keys, idx, middleKey)
	parent.values = insertDataAt(parent.values, idx, middleValue)
	parent.children[idx] = left
	parent.children = insertNodeAt(parent.children, idx+1, right)

	return parent.checkAfterInsert()
}

func reparent(children []*Node, newParent *Node) {
	for _, c := range children {
		c.parent = newParent
	}
}

func insertDataAt(s []*Data, idx int, v *Data) []*Data {
	s = append(s, nil)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func insertNodeAt(s []*Node, idx int, v *Node) []*Node {
	s = append(s, nil)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func removeDataAt(s []*Data, idx int) []*Data {
	return append(s[:idx], s[idx+1:]...)
}

func removeNodeAt(s []*Node, idx int) []*Node {
	return append(s[:idx], s[idx+1:]...)
}

// peek returns the node and index of the closest key at or after key: an
// exact match when one exists, otherwise the smallest key greater than it.
// ok is false only when no such key exists anywhere in the tree (key is
// past the maximum key held).
func (n *Node) peek(key any) (*Node, int, bool, error) {
	if err := n.ensureAccessed(); err != nil {
		return nil, 0, false, err
	}
	idx, err := bisectLeft(n.keys, key)
	if err != nil {
		return nil, 0, false, err
	}
	notPastEnd := idx < len(n.keys)

	if n.isLeaf() {
		return n, idx, notPastEnd, nil
	}

	child := n.children[idx]
	if err := child.ensureAccessed(); err != nil {
		return nil, 0, false, err
	}
	node, cidx, ok, err := child.peek(key)
	if err != nil {
		return nil, 0, false, err
	}
	if ok {
		return node, cidx, true, nil
	}
	if notPastEnd {
		return n, idx, true, nil
	}
	return n, 0, false, nil
}

func (n *Node) search(key any) (*Node, int, error) {
	node, idx, ok, err := n.peek(key)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("%w: %v", errs.ErrKeyNotFound, key)
	}
	kv, err := node.keys[idx].Get(true)
	if err != nil {
		return nil, 0, err
	}
	if compareTo(kv, key) != 0 {
		return nil, 0, fmt.Errorf("%w: %v", errs.ErrKeyNotFound, key)
	}
	return node, idx, nil
}

// Search returns the value stored under key, or ErrKeyNotFound.
func (n *Node) Search(key any) (*Data, error) {
	node, idx, err := n.search(normalizeKey(key))
	if err != nil {
		return nil, err
	}
	return node.values[idx], nil
}

// Contains reports whether key is present.
func (n *Node) Contains(key any) (bool, error) {
	_, _, err := n.search(normalizeKey(key))
	if err != nil {
		if errors.Is(err, errs.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Update replaces the value stored under key and returns the value that was
// there before. newValue follows the same materialization rules as Insert.
func (n *Node) Update(key, newValue any) (*Data, error) {
	node, idx, err := n.search(normalizeKey(key))
	if err != nil {
		return nil, err
	}
	old := node.values[idx]
	nv, err := n.materializeValue(newValue)
	if err != nil {
		return nil, err
	}
	node.values[idx] = nv
	node.modified = true
	return old, nil
}

// Create inserts a key bound to a brand new, empty nested tree and returns
// its Data handle. Call Get on the result to obtain the *Node to populate.
func (n *Node) Create(key any) (*Data, error) {
	nk := normalizeKey(key)
	keyOff, err := n.writeData(nk)
	if err != nil {
		return nil, err
	}
	keyData := internDataWithCache(n.eng, keyOff, nk)

	valueData, err := createEmptyTreeValue(n.eng)
	if err != nil {
		return nil, err
	}

	if err := n.insertPair(keyData, valueData); err != nil {
		return nil, err
	}
	return valueData, nil
}

func createEmptyTreeValue(eng *Engine) (*Data, error) {
	rootOff, err := eng.Pager.AppendAtEnd()
	if err != nil {
		return nil, err
	}
	if err := dumpBNode(eng.Pager, eng.Config, nil, nil, nil); err != nil {
		return nil, err
	}

	tagOff, err := eng.Pager.AppendAtEnd()
	if err != nil {
		return nil, err
	}
	if err := dumpU8(eng.Pager, typeTree); err != nil {
		return nil, err
	}
	if err := dumpU64(eng.Pager, rootOff); err != nil {
		return nil, err
	}

	return internData(eng, tagOff), nil
}

func createTreeValueWithContents(eng *Engine, m map[string]any) (*Data, error) {
	d, err := createEmptyTreeValue(eng)
	if err != nil {
		return nil, err
	}
	v, err := d.Get(true)
	if err != nil {
		return nil, err
	}
	subNode, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("%w: created tree decoded unexpectedly", errs.ErrCorruption)
	}
	for k, val := range m {
		if _, err := subNode.Insert(k, val); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Follow walks a chain of keys through nested trees, returning the Data at
// the final key. Every key but the last must resolve to a Tree value.
func (n *Node) Follow(keys ...any) (*Data, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("btrdb: Follow requires at least one key")
	}
	cur := n
	for i, k := range keys {
		d, err := cur.Search(k)
		if err != nil {
			return nil, err
		}
		if i == len(keys)-1 {
			return d, nil
		}
		v, err := d.Get(true)
		if err != nil {
			return nil, err
		}
		sub, ok := v.(*Node)
		if !ok {
			return nil, fmt.Errorf("%w: %v does not lead to a nested tree", errs.ErrKeyNotFound, k)
		}
		cur = sub
	}
	return nil, nil
}

// Delete removes key and returns the value that was stored there.
func (n *Node) Delete(key any) (*Data, error) {
	node, idx, err := n.search(normalizeKey(key))
	if err != nil {
		return nil, err
	}
	deleted := node.values[idx]

	if node.isLeaf() {
		node.keys = removeDataAt(node.keys, idx)
		node.values = removeDataAt(node.values, idx)
		node.modified = true
		if err := node.checkAfterDelete(); err != nil {
			return nil, err
		}
		return deleted, nil
	}

	predecessor, err := node.findInorderPredecessorNode(idx)
	if err != nil {
		return nil, err
	}

	lastIdx := len(predecessor.keys) - 1
	node.keys[idx] = predecessor.keys[lastIdx]
	node.values[idx] = predecessor.values[lastIdx]
	node.modified = true
	predecessor.keys = predecessor.keys[:lastIdx]
	predecessor.values = predecessor.values[:lastIdx]
	predecessor.modified = true

	if err := predecessor.checkAfterDelete(); err != nil {
		return nil, err
	}
	return deleted, nil
}

func (n *Node) findInorderPredecessorNode(idx int) (*Node, error) {
	child := n.children[idx]
	if err := child.ensureAccessed(); err != nil {
		return nil, err
	}
	return child.descendRightmost()
}

func (n *Node) descendRightmost() (*Node, error) {
	if n.isLeaf() {
		return n, nil
	}
	last := n.children[len(n.children)-1]
	if err := last.ensureAccessed(); err != nil {
		return nil, err
	}
	return last.descendRightmost()
}

func (n *Node) checkAfterDelete() error {
	if len(n.keys) < n.eng.Config.MinKeys() && n.parent != nil {
		return n.mergeMe()
	}
	return nil
}

func (n *Node) findFromWhichBranch() int {
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// mergeMe rebalances n, which has fallen below the minimum key count, by
// borrowing a key from a sibling or merging with one, demoting or promoting
// the separator key in the parent as needed, and recursing upward if the
// parent itself falls below minimum.
func (n *Node) mergeMe() error {
	idx := n.findFromWhichBranch()
	parent := n.parent

	if idx == 0 {
		right := parent.children[idx+1]
		if err := right.ensureAccessed(); err != nil {
			return err
		}

		if len(right.keys) > n.eng.Config.MinKeys() {
			n.keys = append(n.keys, parent.keys[idx])
			n.values = append(n.values, parent.values[idx])

			if !right.isLeaf() {
				n.children = append(n.children, right.children[0])
				n.children[len(n.children)-1].parent = n
				right.children = right.children[1:]
			}

			parent.keys[idx] = right.keys[0]
			parent.values[idx] = right.values[0]
			right.keys = right.keys[1:]
			right.values = right.values[1:]
			right.modified = true
			parent.modified = true
			n.modified = true
		} else {
			n.keys = append(append(append([]*Data{}, n.keys...), parent.keys[0]), right.keys...)
			n.values = append(append(append([]*Data{}, n.values...), parent.values[0]), right.values...)

			if !n.isLeaf() {
				n.children = append(n.children, right.children...)
				reparent(n.children, n)
			}

			parent.keys = removeDataAt(parent.keys, 0)
			parent.values = removeDataAt(parent.values, 0)
			parent.children = removeNodeAt(parent.children, idx+1)
			n.modified = true
			parent.modified = true

			if err := parent.checkAfterDelete(); err != nil {
				return err
			}
		}
	} else {
		left := parent.children[idx-1]
		if err := left.ensureAccessed(); err != nil {
			return err
		}

		if len(left.keys) > n.eng.Config.MinKeys() {
			n.keys = insertDataAt(n.keys, 0, parent.keys[idx-1])
			n.values = insertDataAt(n.values, 0, parent.values[idx-1])

			if !left.isLeaf() {
				lastChild := left.children[len(left.children)-1]
				n.children = insertNodeAt(n.children, 0, lastChild)
				n.children[0].parent = n
				left.children = left.children[:len(left.children)-1]
			}

			parent.keys[idx-1] = left.keys[len(left.keys)-1]
			parent.values[idx-1] = left.values[len(left.values)-1]
			left.keys = left.keys[:len(left.keys)-1]
			left.values = left.values[:len(left.values)-1]
			left.modified = true
			parent.modified = true
			n.modified = true
		} else {
			newKeys := append(append([]*Data{}, left.keys...), parent.keys[idx-1])
			newKeys = append(newKeys, n.keys...)
			newValues := append(append([]*Data{}, left.values...), parent.values[idx-1])
			newValues = append(newValues, n.values...)
			n.keys = newKeys
			n.values = newValues

			if !n.isLeaf() {
				n.children = append(append([]*Node{}, left.children...), n.children...)
				reparent(n.children, n)
			}

			parent.keys = removeDataAt(parent.keys, idx-1)
			parent.values = removeDataAt(parent.values, idx-1)
			parent.children = removeNodeAt(parent.children, idx-1)
			n.modified = true
			parent.modified = true

			if err := parent.checkAfterDelete(); err != nil {
				return err
			}
		}
	}

	if len(parent.keys) == 0 {
		parent.keys = n.keys
		parent.values = n.values
		parent.children = n.children
		reparent(parent.children, parent)
		parent.modified = true
	}

	return nil
}

// Items performs a lazy in-order traversal, yielding (key, value) pairs. A
// decode or I/O fault mid-traversal is corruption-class and panics rather
// than silently truncating the sequence.
func (n *Node) Items(reverse bool) iter.Seq2[*Data, *Data] {
	return func(yield func(*Data, *Data) bool) {
		if err := n.iterate(reverse, yield); err != nil {
			panic(err)
		}
	}
}

func (n *Node) iterate(reverse bool, yield func(*Data, *Data) bool) error {
	if err := n.ensureAccessed(); err != nil {
		return err
	}

	visitChild := func(i int) (bool, error) {
		child := n.children[i]
		if err := child.ensureAccessed(); err != nil {
			return false, err
		}
		cont := true
		err := child.iterate(reverse, func(k, v *Data) bool {
			if !yield(k, v) {
				cont = false
				return false
			}
			return true
		})
		return cont, err
	}

	if n.isLeaf() {
		if reverse {
			for i := len(n.keys) - 1; i >= 0; i-- {
				if !yield(n.keys[i], n.values[i]) {
					return nil
				}
			}
		} else {
			for i := range n.keys {
				if !yield(n.keys[i], n.values[i]) {
					return nil
				}
			}
		}
		return nil
	}

	if reverse {
		cont, err := visitChild(len(n.children) - 1)
		if err != nil || !cont {
			return err
		}
		for i := len(n.keys) - 1; i >= 0; i-- {
			if !yield(n.keys[i], n.values[i]) {
				return nil
			}
			cont, err := visitChild(i)
			if err != nil || !cont {
				return err
			}
		}
		return nil
	}

	for i := range n.keys {
		cont, err := visitChild(i)
		if err != nil || !cont {
			return err
		}
		if !yield(n.keys[i], n.values[i]) {
			return nil
		}
	}
	_, err := visitChild(len(n.children) - 1)
	return err
}

func (n *Node) inorderFrom(idx int, yield func(*Data, *Data) bool) (bool, error) {
	for ; idx < len(n.keys); idx++ {
		if !yield(n.keys[idx], n.values[idx]) {
			return false, nil
		}
		if !n.isLeaf() {
			child := n.children[idx+1]
			if err := child.ensureAccessed(); err != nil {
				return false, err
			}
			cont := true
			err := child.iterate(false, func(k, v *Data) bool {
				if !yield(k, v) {
					cont = false
					return false
				}
				return true
			})
			if err != nil {
				return false, err
			}
			if !cont {
				return false, nil
			}
		}
	}
	if n.parent != nil {
		which := n.findFromWhichBranch()
		return n.parent.inorderFrom(which, yield)
	}
	return true, nil
}

func (n *Node) inorderFromReverse(idx int, yield func(*Data, *Data) bool) (bool, error) {
	for ; idx >= 0; idx-- {
		if !yield(n.keys[idx], n.values[idx]) {
			return false, nil
		}
		if !n.isLeaf() {
			child := n.children[idx]
			if err := child.ensureAccessed(); err != nil {
				return false, err
			}
			cont := true
			err := child.iterate(true, func(k, v *Data) bool {
				if !yield(k, v) {
					cont = false
					return false
				}
				return true
			})
			if err != nil {
				return false, err
			}
			if !cont {
				return false, nil
			}
		}
	}
	if n.parent != nil {
		which := n.findFromWhichBranch()
		return n.parent.inorderFromReverse(which-1, yield)
	}
	return true, nil
}

// Range performs a lazy traversal starting at low (inclusive) and stopping
// just before high (exclusive). low is always the traversal start and high
// the stop bound regardless of direction: for a descending range, pass the
// higher key as low and the lower, exclusive key as high.
func (n *Node) Range(low, high any, reverse bool) iter.Seq2[*Data, *Data] {
	return func(yield func(*Data, *Data) bool) {
		if err := n.rangeInto(normalizeKey(low), normalizeKey(high), reverse, yield); err != nil {
			panic(err)
		}
	}
}

func (n *Node) rangeInto(low, high any, reverse bool, yield func(*Data, *Data) bool) error {
	startNode, startIdx, ok, err := n.peek(low)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var stopKey *Data
	stopNode, stopIdx, stopOK, err := n.peek(high)
	if err != nil {
		return err
	}
	if stopOK {
		stopKey = stopNode.keys[stopIdx]
	}

	emit := func(k, v *Data) bool {
		if stopKey != nil && k == stopKey {
			return false
		}
		return yield(k, v)
	}

	if reverse {
		_, err = startNode.inorderFromReverse(startIdx, emit)
	} else {
		_, err = startNode.inorderFrom(startIdx, emit)
	}
	return err
}

// Freeze recursively writes every modified node and nested value reachable
// from n back to disk, in post-order. n's resulting offset is available
// from Offset afterwards.
func (n *Node) Freeze() error {
	_, err := n.freeze()
	return err
}

func (n *Node) freeze() (uint64, error) {
	if !n.accessed {
		return n.offset, nil
	}

	for _, v := range n.values {
		if v.isTree {
			sub, err := v.Get(true)
			if err != nil {
				return 0, err
			}
			if subNode, ok := sub.(*Node); ok {
				if _, err := subNode.freeze(); err != nil {
					return 0, err
				}
			}
		}
		if v.isArray {
			sub, err := v.Get(true)
			if err != nil {
				return 0, err
			}
			if arr, ok := sub.(*Array); ok {
				if err := arr.freeze(); err != nil {
					return 0, err
				}
			}
		}
	}

	keyOffsets := make([]uint64, len(n.keys))
	for i, k := range n.keys {
		keyOffsets[i] = k.offset
	}
	valueOffsets := make([]uint64, len(n.values))
	for i, v := range n.values {
		valueOffsets[i] = v.offset
	}

	var childOffsets []uint64
	if !n.isLeaf() {
		childOffsets = make([]uint64, len(n.children))
		for i, c := range n.children {
			off, err := c.freeze()
			if err != nil {
				return 0, err
			}
			childOffsets[i] = off
		}
	}

	pos, err := n.seekWrittenPosition()
	if err != nil {
		return 0, err
	}
	if !n.modified {
		return pos, nil
	}
	if err := dumpBNode(n.eng.Pager, n.eng.Config, keyOffsets, valueOffsets, childOffsets); err != nil {
		return 0, err
	}
	n.modified = false
	n.offset = pos
	return pos, nil
}

func (n *Node) seekWrittenPosition() (uint64, error) {
	if n.offset == 0 {
		return n.eng.Pager.AppendAtEnd()
	}
	pos, err := n.eng.Pager.Seek(int64(n.offset), io.SeekStart)
	if err != nil {
		return 0, err
	}
	return uint64(pos), nil
}
