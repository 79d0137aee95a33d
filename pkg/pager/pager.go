// Package pager provides the byte-addressable I/O abstraction the engine
// reads and writes through: seek, tell, read, write, append-at-end, and
// close, plus a hot-swappable Handle used by vacuum to retarget an open
// database at a freshly compacted file while the engine keeps holding the
// same Handle.
package pager

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Pager is the minimal I/O surface the engine needs from a backing store.
type Pager interface {
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
	Read(n int) ([]byte, error)
	Write(b []byte) (int, error)
	AppendAtEnd() (uint64, error)
	Name() string
	Close() error
}

// FilePager is a Pager backed by a regular OS file. Read-only opens are
// served from a read-only mmap of the whole file when possible, falling
// back to ordinary reads from the file position for empty files (mmap of a zero-length
// file is not defined).
type FilePager struct {
	path     string
	f        *os.File
	readOnly bool
	mm       []byte
	pos      int64
}

// Open opens path for reading and writing, creating it if it does not
// exist, unless readOnly is set, in which case the file must already exist.
func Open(path string, readOnly bool) (*FilePager, error) {
	flag := os.O_RDWR | os.O_CREATE
	perm := os.FileMode(0o644)
	if readOnly {
		flag = os.O_RDONLY
		perm = 0
	}

	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	fp := &FilePager{path: path, f: f, readOnly: readOnly}
	if readOnly {
		if mm, mmErr := mmapFile(f); mmErr == nil {
			fp.mm = mm
		}
	}
	return fp, nil
}

func mmapFile(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, errors.New("pager: cannot mmap an empty file")
	}
	return unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
}

func (fp *FilePager) Name() string { return fp.path }

func (fp *FilePager) Seek(offset int64, whence int) (int64, error) {
	if fp.mm != nil {
		var base int64
		switch whence {
		case io.SeekStart:
			base = 0
		case io.SeekCurrent:
			base = fp.pos
		case io.SeekEnd:
			base = int64(len(fp.mm))
		default:
			return 0, errors.New("pager: invalid whence")
		}
		fp.pos = base + offset
		return fp.pos, nil
	}
	return fp.f.Seek(offset, whence)
}

func (fp *FilePager) Tell() (int64, error) {
	if fp.mm != nil {
		return fp.pos, nil
	}
	return fp.f.Seek(0, io.SeekCurrent)
}

func (fp *FilePager) Read(n int) ([]byte, error) {
	if fp.mm != nil {
		if fp.pos < 0 || fp.pos+int64(n) > int64(len(fp.mm)) {
			return nil, io.ErrUnexpectedEOF
		}
		b := make([]byte, n)
		copy(b, fp.mm[fp.pos:fp.pos+int64(n)])
		fp.pos += int64(n)
		return b, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(fp.f, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (fp *FilePager) Write(b []byte) (int, error) {
	if fp.readOnly {
		return 0, errors.New("pager: write on a read-only pager")
	}
	return fp.f.Write(b)
}

func (fp *FilePager) AppendAtEnd() (uint64, error) {
	if fp.readOnly {
		return 0, errors.New("pager: append on a read-only pager")
	}
	off, err := fp.f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	return uint64(off), nil
}

func (fp *FilePager) Close() error {
	if fp.mm != nil {
		_ = unix.Munmap(fp.mm)
		fp.mm = nil
	}
	return fp.f.Close()
}

// Handle wraps a Pager behind a stable pointer identity so that the engine
// holding it keeps one identity across vacuum's hot file-swap. Nothing
// outside of vacuum should ever need Swap.
type Handle struct {
	p Pager
}

// NewHandle wraps p for use as the shared pager identity of an open database.
func NewHandle(p Pager) *Handle { return &Handle{p: p} }

func (h *Handle) Seek(offset int64, whence int) (int64, error) { return h.p.Seek(offset, whence) }
func (h *Handle) Tell() (int64, error)                         { return h.p.Tell() }
func (h *Handle) Read(n int) ([]byte, error)                   { return h.p.Read(n) }
func (h *Handle) Write(b []byte) (int, error)                  { return h.p.Write(b) }
func (h *Handle) AppendAtEnd() (uint64, error)                 { return h.p.AppendAtEnd() }
func (h *Handle) Name() string                                 { return h.p.Name() }
func (h *Handle) Close() error                                 { return h.p.Close() }

// Swap closes the currently wrapped pager and installs newP in its place.
// The caller is responsible for newP being byte-equivalent to the old
// pager for every offset still referenced by live Data and Node values.
func (h *Handle) Swap(newP Pager) error {
	old := h.p
	h.p = newP
	return old.Close()
}
