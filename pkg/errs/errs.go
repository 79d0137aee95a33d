// Package errs defines the sentinel errors returned across the engine.
// Callers should match them with errors.Is rather than string comparison.
package errs

import "errors"

var (
	// ErrDuplicateKey is returned by Insert and Create when a key already
	// exists in the tree.
	ErrDuplicateKey = errors.New("btrdb: duplicate key")

	// ErrKeyNotFound is returned by Search, Update, Delete, and Follow when a
	// key is absent from the node they are operating on.
	ErrKeyNotFound = errors.New("btrdb: key not found")

	// ErrIndexOutOfRange is returned by array Get/Set when the index is not
	// smaller than the array's logical length.
	ErrIndexOutOfRange = errors.New("btrdb: array index out of range")

	// ErrUnsupportedType is returned when a caller hands the engine a Go value
	// that does not map to one of the tagged-value variants.
	ErrUnsupportedType = errors.New("btrdb: unsupported value type")

	// ErrCorruption marks faults in the on-disk format itself: a bad
	// signature, a truncated record, an unknown type tag. These are not
	// meant to be recovered from.
	ErrCorruption = errors.New("btrdb: corrupted database file")
)
