package btree

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"btrdb/pkg/testutil"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	m := testutil.NewMockPager()

	require.NoError(t, dumpU8(m, 0xAB))
	require.NoError(t, dumpU16(m, 0x1234))
	require.NoError(t, dumpU32(m, 0xDEADBEEF))
	require.NoError(t, dumpU64(m, 0x0102030405060708))
	require.NoError(t, dumpString(m, "hello"))
	require.NoError(t, dumpBytes(m, []byte{1, 2, 3}))
	require.NoError(t, dumpFloat32(m, 3.5))
	require.NoError(t, dumpBool(m, true))

	if _, err := m.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	u8, err := loadU8(m)
	require.NoError(t, err)
	require.EqualValues(t, 0xAB, u8)

	u16, err := loadU16(m)
	require.NoError(t, err)
	require.EqualValues(t, 0x1234, u16)

	u32, err := loadU32(m)
	require.NoError(t, err)
	require.EqualValues(t, 0xDEADBEEF, u32)

	u64, err := loadU64(m)
	require.NoError(t, err)
	require.EqualValues(t, 0x0102030405060708, u64)

	s, err := loadString(m)
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	b, err := loadBytes(m)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b)

	f, err := loadFloat32(m)
	require.NoError(t, err)
	require.EqualValues(t, 3.5, f)

	bo, err := loadBool(m)
	require.NoError(t, err)
	require.True(t, bo)
}

func TestLoadShortReadIsCorruption(t *testing.T) {
	m := testutil.NewMockPager()
	_, err := loadU64(m)
	require.Error(t, err)
}
