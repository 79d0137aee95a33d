package btree

import "btrdb/pkg/pager"

// Engine bundles the pager handle and tree configuration shared by every
// Node, Data, and Array belonging to one open database. Its pointer
// identity is what Data interning keys off, and that identity survives
// vacuum's pager hot-swap since only the Handle's wrapped Pager changes.
type Engine struct {
	Pager  *pager.Handle
	Config Config
}

// NewEngine wires a pager handle and tree configuration together.
func NewEngine(p *pager.Handle, cfg Config) *Engine {
	return &Engine{Pager: p, Config: cfg}
}
