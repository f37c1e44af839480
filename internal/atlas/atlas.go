package atlas

import (
	"encoding/json"

	"geoform/internal/models"
)

// Atlas is the finished location hierarchy rooted at Earth. It is read-only:
// callers must not modify the branches it returns.
type Atlas struct {
	root *Branch
}

// Build seeds a builder, folds the reports in and returns the result.
func Build(tables *Tables, reports []models.RawReport) (*Atlas, Stats) {
	b := NewBuilder(tables)
	stats := b.IngestAll(reports)
	return b.Atlas(), stats
}

// New wraps an existing root branch, copying it so later changes to root do
// not leak into the atlas.
func New(root *Branch) *Atlas {
	return &Atlas{root: root.clone()}
}

// Root returns the Earth branch.
func (a *Atlas) Root() *Branch {
	return a.root
}

// Lookup follows a path of names from the root.
func (a *Atlas) Lookup(path ...string) (Node, bool) {
	var n Node = a.root
	for _, name := range path {
		b, ok := n.(*Branch)
		if !ok {
			return nil, false
		}
		if n, ok = b.Children[name]; !ok {
			return nil, false
		}
	}
	return n, true
}

// Depth is the number of levels below Earth.
func (a *Atlas) Depth() int {
	return a.root.Depth()
}

// MarshalJSON encodes the atlas as {"Earth": {"kind": ..., "children": ...}}.
func (a *Atlas) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]*Branch{Earth: a.root})
}
