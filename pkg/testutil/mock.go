// Package testutil provides an in-memory pager.Pager implementation for
// tests that need a backing store without touching the filesystem.
package testutil

import (
	"fmt"
	"io"
)

// MockPager is an in-memory pager.Pager backed by a single growable byte
// buffer, the analogue of a growable file. Unlike the page-numbered mock
// storage used to test a fixed-page-size tree, offsets here are absolute
// byte positions, matching how the engine actually addresses records.
type MockPager struct {
	buf  []byte
	pos  int64
	name string
}

// NewMockPager returns an empty MockPager.
func NewMockPager() *MockPager {
	return &MockPager{name: "mock"}
}

func (m *MockPager) Name() string { return m.name }

func (m *MockPager) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, fmt.Errorf("mockpager: invalid whence %d", whence)
	}
	pos := base + offset
	if pos < 0 {
		return 0, fmt.Errorf("mockpager: negative seek position")
	}
	m.pos = pos
	return m.pos, nil
}

func (m *MockPager) Tell() (int64, error) { return m.pos, nil }

func (m *MockPager) Read(n int) ([]byte, error) {
	if m.pos < 0 || m.pos+int64(n) > int64(len(m.buf)) {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, m.buf[m.pos:m.pos+int64(n)])
	m.pos += int64(n)
	return out, nil
}

func (m *MockPager) Write(b []byte) (int, error) {
	end := m.pos + int64(len(b))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], b)
	m.pos = end
	return len(b), nil
}

func (m *MockPager) AppendAtEnd() (uint64, error) {
	m.pos = int64(len(m.buf))
	return uint64(m.pos), nil
}

func (m *MockPager) Close() error { return nil }

// Len reports the current size of the backing buffer.
func (m *MockPager) Len() int { return len(m.buf) }
