package atlas

import (
	"encoding/json"
	"sort"
)

// Kind names what the children of a branch are.
type Kind string

const (
	Country Kind = "country"
	State   Kind = "state"
	City    Kind = "city/county"
	Venue   Kind = "venue"
)

// MaxDepth is the number of levels below the root: country, state, city, venue.
const MaxDepth = 4

// Node is either a Leaf or a *Branch.
type Node interface {
	node()
}

// Leaf is a location with no known children.
type Leaf struct{}

func (Leaf) node() {}

// MarshalJSON encodes a leaf as null.
func (Leaf) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Branch is a location whose children of the given Kind are known.
type Branch struct {
	Kind     Kind            `json:"kind"`
	Children map[string]Node `json:"children"`
}

func (*Branch) node() {}

func newBranch(kind Kind) *Branch {
	return &Branch{Kind: kind, Children: make(map[string]Node)}
}

// Names returns the child names in sorted order.
func (b *Branch) Names() []string {
	names := make([]string, 0, len(b.Children))
	for name := range b.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Child returns the named child as a branch, or nil when it is a leaf or missing.
func (b *Branch) Child(name string) *Branch {
	if c, ok := b.Children[name].(*Branch); ok {
		return c
	}
	return nil
}

// Depth counts the levels below b, so a branch holding only leaves has depth 1.
func (b *Branch) Depth() int {
	deepest := 0
	for _, c := range b.Children {
		d := 0
		if cb, ok := c.(*Branch); ok {
			d = cb.Depth()
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Count returns the number of nodes below b.
func (b *Branch) Count() int {
	n := 0
	for _, c := range b.Children {
		n++
		if cb, ok := c.(*Branch); ok {
			n += cb.Count()
		}
	}
	return n
}

func (b *Branch) clone() *Branch {
	out := newBranch(b.Kind)
	for name, c := range b.Children {
		if cb, ok := c.(*Branch); ok {
			out.Children[name] = cb.clone()
			continue
		}
		out.Children[name] = Leaf{}
	}
	return out
}

// UnmarshalJSON decodes the preview encoding produced by MarshalJSON.
func (b *Branch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind     Kind                       `json:"kind"`
		Children map[string]json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Kind = raw.Kind
	b.Children = make(map[string]Node, len(raw.Children))
	for name, msg := range raw.Children {
		if string(msg) == "null" {
			b.Children[name] = Leaf{}
			continue
		}
		child := &Branch{}
		if err := json.Unmarshal(msg, child); err != nil {
			return err
		}
		b.Children[name] = child
	}
	return nil
}
