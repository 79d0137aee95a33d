package btree

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataRoundTripScalarTypes(t *testing.T) {
	eng := newTestEngine(t, 4)

	cases := []any{
		"hello",
		float32(3.5),
		nil,
		true,
		false,
		[]byte{1, 2, 3},
	}

	for _, v := range cases {
		off, err := encodeValue(eng.Pager, v)
		require.NoError(t, err)
		d := internData(eng, off)
		got, err := d.Get(false)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestDataInterningReturnsSameInstance(t *testing.T) {
	eng := newTestEngine(t, 4)

	off, err := encodeValue(eng.Pager, "shared")
	require.NoError(t, err)

	a := internData(eng, off)
	b := internData(eng, off)
	require.Same(t, a, b)

	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestDataCompareKey(t *testing.T) {
	eng := newTestEngine(t, 4)

	off, err := encodeValue(eng.Pager, "banana")
	require.NoError(t, err)
	d := internData(eng, off)

	c, err := d.compareKey("apple")
	require.NoError(t, err)
	require.Greater(t, c, 0)

	c, err = d.compareKey("banana")
	require.NoError(t, err)
	require.Equal(t, 0, c)
}
