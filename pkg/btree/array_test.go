package btree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"btrdb/pkg/errs"
	"btrdb/pkg/pager"
	"btrdb/pkg/testutil"
)

func newTestEngine(t *testing.T, order uint16) *Engine {
	t.Helper()
	mp := testutil.NewMockPager()
	h := pager.NewHandle(mp)
	return NewEngine(h, Config{Order: order})
}

func TestArrayAppendAndGet(t *testing.T) {
	eng := newTestEngine(t, 4)

	d, err := createArrayValue(eng, []any{1, 2, 3})
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	arr := v.(*Array)

	require.Equal(t, uint32(3), arr.Len())
	for i, want := range []float32{1, 2, 3} {
		item, err := arr.Get(uint32(i))
		require.NoError(t, err)
		got, err := item.Get(true)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestArrayOutOfRange(t *testing.T) {
	eng := newTestEngine(t, 4)
	d, err := createArrayValue(eng, []any{1})
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	arr := v.(*Array)

	_, err = arr.Get(5)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestArraySetOverridesSlot(t *testing.T) {
	eng := newTestEngine(t, 4)
	d, err := createArrayValue(eng, []any{1, 2, 3})
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	arr := v.(*Array)

	require.NoError(t, arr.Set(1, "replaced"))
	item, err := arr.Get(1)
	require.NoError(t, err)
	got, err := item.Get(true)
	require.NoError(t, err)
	require.Equal(t, "replaced", got)
}

func TestArrayGrowsPastCapacity(t *testing.T) {
	eng := newTestEngine(t, 4)
	d, err := createArrayValue(eng, []any{0, 1, 2, 3, 4})
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	arr := v.(*Array)

	require.Equal(t, uint8(3), arr.power)

	for i := 0; i < 60; i++ {
		require.NoError(t, arr.Append(i+5))
	}
	require.Equal(t, uint32(65), arr.Len())
	require.Equal(t, uint8(7), arr.power)

	require.NoError(t, arr.freeze())

	item3, err := arr.Get(3)
	require.NoError(t, err)
	v3, err := item3.Get(true)
	require.NoError(t, err)
	require.Equal(t, float32(3), v3)

	item64, err := arr.Get(64)
	require.NoError(t, err)
	v64, err := item64.Get(true)
	require.NoError(t, err)
	require.Equal(t, float32(64), v64)
}

func TestArrayNestedInNode(t *testing.T) {
	root := newTestRoot(t, 4)

	_, err := root.Insert("nums", []any{1, 2, 3, 4, 5})
	require.NoError(t, err)

	d, err := root.Search("nums")
	require.NoError(t, err)
	v, err := d.Get(true)
	require.NoError(t, err)
	arr := v.(*Array)
	require.Equal(t, uint32(5), arr.Len())

	require.NoError(t, root.Freeze())

	reloaded := NewRootNode(root.eng, root.Offset())
	require.NoError(t, reloaded.Access())
	d2, err := reloaded.Search("nums")
	require.NoError(t, err)
	v2, err := d2.Get(true)
	require.NoError(t, err)
	arr2 := v2.(*Array)
	item, err := arr2.Get(4)
	require.NoError(t, err)
	got, err := item.Get(true)
	require.NoError(t, err)
	require.Equal(t, float32(5), got)
}
