package pager_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"btrdb/pkg/pager"
)

func TestFilePagerWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.btr")
	fp, err := pager.Open(path, false)
	require.NoError(t, err)

	off, err := fp.AppendAtEnd()
	require.NoError(t, err)
	require.Equal(t, uint64(0), off)

	n, err := fp.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	_, err = fp.Seek(0, io.SeekStart)
	require.NoError(t, err)

	b, err := fp.Read(5)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))

	require.NoError(t, fp.Close())
}

func TestFilePagerReadOnlyUsesMmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.btr")
	require.NoError(t, os.WriteFile(path, []byte("abcdef"), 0o644))

	fp, err := pager.Open(path, true)
	require.NoError(t, err)
	defer fp.Close()

	_, err = fp.Write([]byte("x"))
	require.Error(t, err)

	_, err = fp.Seek(2, io.SeekStart)
	require.NoError(t, err)
	b, err := fp.Read(3)
	require.NoError(t, err)
	require.Equal(t, "cde", string(b))
}

func TestHandleSwap(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.btr")
	pathB := filepath.Join(dir, "b.btr")

	fa, err := pager.Open(pathA, false)
	require.NoError(t, err)
	_, err = fa.Write([]byte("aaaa"))
	require.NoError(t, err)

	fb, err := pager.Open(pathB, false)
	require.NoError(t, err)
	_, err = fb.Write([]byte("bbbb"))
	require.NoError(t, err)

	h := pager.NewHandle(fa)
	_, err = h.Seek(0, io.SeekStart)
	require.NoError(t, err)
	got, err := h.Read(4)
	require.NoError(t, err)
	require.Equal(t, "aaaa", string(got))

	require.NoError(t, h.Swap(fb))

	_, err = h.Seek(0, io.SeekStart)
	require.NoError(t, err)
	got, err = h.Read(4)
	require.NoError(t, err)
	require.Equal(t, "bbbb", string(got))
}
