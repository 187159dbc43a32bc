package theme

import (
	"bytes"
	"iter"
	"slices"

	"github.com/bytedance/sonic"
	yaml "gopkg.in/yaml.v3"

	"dtc/token"
)

// Group is resolved, flat mapping of keys to CSS values for one category.
// Keys keep insertion order.
type Group struct {
	keys   []string
	values map[string]string
}

// NewGroup returns empty group.
func NewGroup() *Group {
	return &Group{values: make(map[string]string)}
}

// Set adds key to the group. It returns false, leaving group intact, if key
// is already present.
func (g *Group) Set(key, value string) bool {
	if _, exists := g.values[key]; exists {
		return false
	}
	g.keys = append(g.keys, key)
	g.values[key] = value
	return true
}

// Get returns value stored under key.
func (g *Group) Get(key string) (string, bool) {
	v, ok := g.values[key]
	return v, ok
}

func (g *Group) Len() int {
	return len(g.keys)
}

// Keys returns copy of keys in insertion order.
func (g *Group) Keys() []string {
	return slices.Clone(g.keys)
}

// All iterates over group in insertion order.
func (g *Group) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range g.keys {
			if !yield(k, g.values[k]) {
				return
			}
		}
	}
}

// Records presents group as scalar token records, so already mapped group
// could be fed back to the mapper.
func (g *Group) Records() []token.Record {
	recs := make([]token.Record, 0, len(g.keys))
	for k, v := range g.All() {
		recs = append(recs, token.Record{Name: k, Value: token.Scalar(v)})
	}
	return recs
}

// Clone returns independent copy of the group.
func (g *Group) Clone() *Group {
	c := NewGroup()
	for k, v := range g.All() {
		c.Set(k, v)
	}
	return c
}

// Equal reports whether groups have the same entries in the same order.
func (g *Group) Equal(o *Group) bool {
	if g.Len() != o.Len() {
		return false
	}
	for i, k := range g.keys {
		if o.keys[i] != k || o.values[k] != g.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON keeps insertion order, which plain maps would lose.
func (g *Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := sonic.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := sonic.Marshal(g.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML keeps insertion order.
func (g *Group) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range g.All() {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	}
	return n, nil
}
