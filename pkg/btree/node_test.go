package btree

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"btrdb/pkg/errs"
	"btrdb/pkg/pager"
	"btrdb/pkg/testutil"
)

func newTestRoot(t *testing.T, order uint16) *Node {
	t.Helper()
	mp := testutil.NewMockPager()
	h := pager.NewHandle(mp)
	cfg := Config{Order: order}
	eng := NewEngine(h, cfg)

	rootOff, err := WriteEmptyBNode(h, cfg)
	require.NoError(t, err)

	root := NewRootNode(eng, rootOff)
	require.NoError(t, root.Access())
	return root
}

func collectKV(t *testing.T, root *Node, reverse bool) []string {
	t.Helper()
	var out []string
	for k, v := range root.Items(reverse) {
		kv, err := k.Get(true)
		require.NoError(t, err)
		vv, err := v.Get(true)
		require.NoError(t, err)
		out = append(out, fmt.Sprintf("%v=%v", kv, vv))
	}
	return out
}

func TestInsertAndSearchBasic(t *testing.T) {
	root := newTestRoot(t, 4)

	for _, c := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		_, err := root.Insert(c, c+"_value")
		require.NoError(t, err)
	}

	for _, c := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		d, err := root.Search(c)
		require.NoError(t, err)
		v, err := d.Get(true)
		require.NoError(t, err)
		require.Equal(t, c+"_value", v)
	}
}

func TestSearchMissingKey(t *testing.T) {
	root := newTestRoot(t, 4)
	_, err := root.Insert("a", "a_value")
	require.NoError(t, err)

	_, err = root.Search("z")
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrKeyNotFound))
}

func TestDuplicateKeyRejected(t *testing.T) {
	root := newTestRoot(t, 4)
	_, err := root.Insert("a", 1)
	require.NoError(t, err)

	_, err = root.Insert("a", 2)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrDuplicateKey))

	d, err := root.Search("a")
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	require.Equal(t, float32(1), v)
}

func TestContains(t *testing.T) {
	root := newTestRoot(t, 4)
	_, err := root.Insert("a", 1)
	require.NoError(t, err)

	ok, err := root.Contains("a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = root.Contains("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateReplacesValue(t *testing.T) {
	root := newTestRoot(t, 4)
	_, err := root.Insert("a", "old")
	require.NoError(t, err)

	old, err := root.Update("a", "new")
	require.NoError(t, err)
	ov, err := old.Get(true)
	require.NoError(t, err)
	require.Equal(t, "old", ov)

	d, err := root.Search("a")
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	require.Equal(t, "new", v)
}

func TestDeleteLeafKey(t *testing.T) {
	root := newTestRoot(t, 4)
	for _, c := range []string{"a", "b", "c"} {
		_, err := root.Insert(c, c)
		require.NoError(t, err)
	}

	_, err := root.Delete("b")
	require.NoError(t, err)

	ok, err := root.Contains("b")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = root.Contains("a")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSplitAndMergeManyKeys(t *testing.T) {
	root := newTestRoot(t, 4)

	const n = 200
	for i := 0; i < n; i++ {
		_, err := root.Insert(float32(i), i)
		require.NoError(t, err)
	}
	for i := 0; i < n; i++ {
		d, err := root.Search(float32(i))
		require.NoError(t, err)
		v, err := d.Get(true)
		require.NoError(t, err)
		require.Equal(t, float32(i), v)
	}

	for i := 0; i < n; i += 2 {
		_, err := root.Delete(float32(i))
		require.NoError(t, err)
	}
	for i := 0; i < n; i++ {
		ok, err := root.Contains(float32(i))
		require.NoError(t, err)
		require.Equal(t, i%2 != 0, ok)
	}
}

func TestItemsOrderedBothDirections(t *testing.T) {
	root := newTestRoot(t, 4)
	keys := []string{"d", "b", "a", "c", "e"}
	for _, k := range keys {
		_, err := root.Insert(k, k)
		require.NoError(t, err)
	}

	require.Equal(t, []string{"a=a", "b=b", "c=c", "d=d", "e=e"}, collectKV(t, root, false))
	require.Equal(t, []string{"e=e", "d=d", "c=c", "b=b", "a=a"}, collectKV(t, root, true))
}

func TestRangeForwardAndReverse(t *testing.T) {
	root := newTestRoot(t, 8)
	for i := 1; i <= 20; i++ {
		key := fmt.Sprintf("%02d", i)
		_, err := root.Insert(key, i)
		require.NoError(t, err)
	}

	var forward []string
	for k := range root.Range("05", "10", false) {
		kv, err := k.Get(true)
		require.NoError(t, err)
		forward = append(forward, kv.(string))
	}
	require.Equal(t, []string{"05", "06", "07", "08", "09"}, forward)

	var backward []string
	for k := range root.Range("10", "05", true) {
		kv, err := k.Get(true)
		require.NoError(t, err)
		backward = append(backward, kv.(string))
	}
	require.Equal(t, []string{"10", "09", "08", "07", "06"}, backward)
}

func TestCreateNestedTree(t *testing.T) {
	root := newTestRoot(t, 4)

	d, err := root.Create("sub")
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	sub, ok := v.(*Node)
	require.True(t, ok)

	_, err = sub.Insert("sub_a", "sub_a_value")
	require.NoError(t, err)

	again, err := root.Search("sub_a")
	require.Error(t, err)
	require.Nil(t, again)

	d2, err := root.Search("sub")
	require.NoError(t, err)
	v2, err := d2.Get(true)
	require.NoError(t, err)
	sub2 := v2.(*Node)
	got, err := sub2.Search("sub_a")
	require.NoError(t, err)
	gv, err := got.Get(true)
	require.NoError(t, err)
	require.Equal(t, "sub_a_value", gv)
}

func TestInsertMapLiteralCreatesNestedTree(t *testing.T) {
	root := newTestRoot(t, 4)

	_, err := root.Insert("sub", map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)

	d, err := root.Search("sub")
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	sub := v.(*Node)

	dx, err := sub.Search("x")
	require.NoError(t, err)
	xv, err := dx.Get(true)
	require.NoError(t, err)
	require.Equal(t, float32(1), xv)
}

func TestFollowWalksNestedKeys(t *testing.T) {
	root := newTestRoot(t, 4)
	_, err := root.Insert("a", map[string]any{})
	require.NoError(t, err)

	da, err := root.Search("a")
	require.NoError(t, err)
	av, err := da.Get(true)
	require.NoError(t, err)
	aNode := av.(*Node)

	_, err = aNode.Insert("b", map[string]any{})
	require.NoError(t, err)
	db, err := aNode.Search("b")
	require.NoError(t, err)
	bv, err := db.Get(true)
	require.NoError(t, err)
	bNode := bv.(*Node)

	_, err = bNode.Insert("c", "leaf_value")
	require.NoError(t, err)

	d, err := root.Follow("a", "b", "c")
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	require.Equal(t, "leaf_value", v)
}

func TestFreezeIdempotent(t *testing.T) {
	root := newTestRoot(t, 4)
	for _, c := range []string{"a", "b", "c", "d", "e"} {
		_, err := root.Insert(c, c)
		require.NoError(t, err)
	}

	require.NoError(t, root.Freeze())
	offsetAfterFirst := root.Offset()
	require.NoError(t, root.Freeze())
	require.Equal(t, offsetAfterFirst, root.Offset())
}

func TestCloseReopenPreservesItems(t *testing.T) {
	mp := testutil.NewMockPager()
	h := pager.NewHandle(mp)
	cfg := Config{Order: 4}
	eng := NewEngine(h, cfg)

	rootOff, err := WriteEmptyBNode(h, cfg)
	require.NoError(t, err)

	root := NewRootNode(eng, rootOff)
	require.NoError(t, root.Access())

	for _, c := range []string{"a", "b", "c", "d", "e"} {
		_, err := root.Insert(c, c+"_value")
		require.NoError(t, err)
	}
	require.NoError(t, root.Freeze())

	reopened := NewRootNode(eng, root.Offset())
	require.NoError(t, reopened.Access())

	require.Equal(t,
		[]string{"a=a_value", "b=b_value", "c=c_value", "d=d_value", "e=e_value"},
		collectKV(t, reopened, false))
}
