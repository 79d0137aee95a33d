// Package db wires the pager and btree packages into an openable database:
// file initialization on first open, the root node a caller mutates
// through, and lifecycle logging.
package db

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"btrdb/pkg/btree"
	"btrdb/pkg/pager"
)

// Options configures Open.
type Options struct {
	// Path is the database file. It is created if it does not exist.
	Path string
	// ReadOnly opens the file for reads only, backed by a read-only mmap
	// where possible. Open fails if the file does not already exist.
	ReadOnly bool
	// Config is the branching factor used only when creating a brand new
	// file; reopening an existing file always uses the order recorded in
	// its header.
	Config btree.Config
	// Logger receives lifecycle events. Defaults to slog.Default().
	Logger *slog.Logger
}

// DB is an open database: a pager, the engine it backs, and the root node
// a caller traverses and mutates.
type DB struct {
	pager    *pager.Handle
	eng      *btree.Engine
	root     *btree.Node
	logger   *slog.Logger
	readOnly bool
}

// Open opens the database at opts.Path, initializing it as an empty
// database if the file does not yet exist.
func Open(opts Options) (*DB, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg.Order == 0 {
		cfg = btree.DefaultConfig()
	}

	_, statErr := os.Stat(opts.Path)
	needsInit := os.IsNotExist(statErr)

	if needsInit && opts.ReadOnly {
		return nil, fmt.Errorf("btrdb: cannot open %q read-only: file does not exist", opts.Path)
	}

	fp, err := pager.Open(opts.Path, opts.ReadOnly)
	if err != nil {
		return nil, err
	}
	p := pager.NewHandle(fp)

	if needsInit {
		logger.Info("initializing new database file", "path", opts.Path, "order", cfg.Order)
		if err := initializeFile(p, cfg); err != nil {
			p.Close()
			return nil, err
		}
	}

	if _, err := p.Seek(0, io.SeekStart); err != nil {
		p.Close()
		return nil, err
	}
	header, err := btree.LoadHeader(p)
	if err != nil {
		p.Close()
		return nil, err
	}

	eng := btree.NewEngine(p, btree.Config{Order: header.Order})
	root := btree.NewRootNode(eng, header.RootNode)
	if err := root.Access(); err != nil {
		p.Close()
		return nil, err
	}

	logger.Info("database opened", "path", opts.Path, "order", header.Order, "readOnly", opts.ReadOnly)
	return &DB{pager: p, eng: eng, root: root, logger: logger, readOnly: opts.ReadOnly}, nil
}

// initializeFile writes an empty database: a placeholder header, a fresh
// empty root node, then the header again with the real root offset. The
// two-pass write is necessary because the root node's offset is only known
// after it has been written, but the header must come first in the file.
func initializeFile(p pager.Pager, cfg btree.Config) error {
	if err := btree.DumpHeader(p, btree.Header{Order: cfg.Order, RootNode: 0}); err != nil {
		return err
	}
	rootOff, err := btree.WriteEmptyBNode(p, cfg)
	if err != nil {
		return err
	}
	if _, err := p.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return btree.DumpHeader(p, btree.Header{Order: cfg.Order, RootNode: rootOff})
}

// Connect returns the root node, the entry point for every read and write
// operation against the database.
func (db *DB) Connect() *btree.Node { return db.root }

// Close flushes pending mutations to disk, if the database was not opened
// read-only, and closes the underlying file.
func (db *DB) Close() error {
	if !db.readOnly {
		if err := db.root.Freeze(); err != nil {
			return err
		}
		if _, err := db.pager.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if err := btree.DumpHeader(db.pager, btree.Header{Order: db.eng.Config.Order, RootNode: db.root.Offset()}); err != nil {
			return err
		}
	}
	db.logger.Info("database closed", "path", db.pager.Name())
	return db.pager.Close()
}

// Vacuum compacts the database file in place and returns the number of
// bytes reclaimed.
func (db *DB) Vacuum() (int64, error) {
	db.logger.Info("vacuum starting", "path", db.pager.Name())
	freed, err := db.root.Vacuum()
	if err != nil {
		return 0, err
	}
	db.logger.Info("vacuum complete", "path", db.pager.Name(), "bytesFreed", freed)
	return freed, nil
}
