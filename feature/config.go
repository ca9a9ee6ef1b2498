// Package feature implements the per-interface feature-configuration
// compiler: an ordered, prioritized list of features is compressed
// into a shared byte string stored in each buffer's opaque area, with
// identical byte strings interned to one pool entry.
package feature

import (
	"fmt"
	"sort"
)

// NodeIndex identifies the node a feature dispatches to. The compiler
// does not care what graph library owns these indices; callers
// translate to/from vlib.NodeIndex at the edges.
type NodeIndex uint32

// Feature is one entry in a config's ordered list: a priority (higher
// runs first), the node it dispatches to, and its per-feature config
// bytes.
type Feature struct {
	Priority uint32
	Node     NodeIndex
	Bytes    []byte
}

func (f Feature) clone() Feature {
	b := append([]byte(nil), f.Bytes...)
	return Feature{Priority: f.Priority, Node: f.Node, Bytes: b}
}

// Config is one compiled, interned feature chain.
type Config struct {
	Index        uint32
	Features     []Feature
	BufferConfig []byte // [edge0][bytes0][edge1][bytes1]...
	refcount     uint32
}

// edgeResolver maps (fromNode, toNode) to the 8-bit next-edge index
// the owning graph assigns them, creating the edge on first use.
// Compiler is graph-agnostic; callers supply this so feature need not
// import vlib.
type edgeResolver func(fromNode, toNode NodeIndex) (edge uint8, err error)

// Compiler owns the config pool, its interning hash, and the resolver
// used to connect the node graph as features are added.
type Compiler struct {
	mainNode NodeIndex
	resolve  edgeResolver

	pool     []*Config
	byString map[string]uint32
	freeList []uint32
}

// NewCompiler creates a compiler whose origin node is mainNode and
// whose graph edges are resolved via resolve. Index 0, the null config,
// is allocated immortally.
func NewCompiler(mainNode NodeIndex, resolve edgeResolver) *Compiler {
	c := &Compiler{mainNode: mainNode, resolve: resolve, byString: make(map[string]uint32)}
	c.pool = append(c.pool, &Config{Index: 0, refcount: 1})
	return c
}

// Get returns the config at index.
func (c *Compiler) Get(index uint32) (*Config, error) {
	if int(index) >= len(c.pool) || c.pool[index] == nil {
		return nil, fmt.Errorf("feature: no config at index %d", index)
	}
	return c.pool[index], nil
}

func duplicateFeatures(fs []Feature) []Feature {
	out := make([]Feature, len(fs))
	for i, f := range fs {
		out[i] = f.clone()
	}
	return out
}

// compile re-derives the byte string and the next-edge for each
// feature, walking the chain from the compiler's main node.
func (c *Compiler) compile(features []Feature) ([]byte, error) {
	var buf []byte
	last := c.mainNode
	for i := range features {
		edge, err := c.resolve(last, features[i].Node)
		if err != nil {
			return nil, err
		}
		buf = append(buf, edge)
		buf = append(buf, features[i].Bytes...)
		last = features[i].Node
	}
	return buf, nil
}

func (c *Compiler) findOrAllocate(features []Feature) (*Config, error) {
	bufferConfig, err := c.compile(features)
	if err != nil {
		return nil, err
	}

	key := string(bufferConfig)
	if idx, ok := c.byString[key]; ok {
		return c.pool[idx], nil
	}

	var idx uint32
	if n := len(c.freeList); n > 0 {
		idx = c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
	} else {
		idx = uint32(len(c.pool))
		c.pool = append(c.pool, nil)
	}

	cfg := &Config{Index: idx, Features: features, BufferConfig: bufferConfig}
	c.pool[idx] = cfg
	c.byString[key] = idx
	return cfg, nil
}

func (c *Compiler) removeReference(cfg *Config) {
	if cfg.Index == 0 {
		return // null config is immortal
	}
	cfg.refcount--
	if cfg.refcount == 0 {
		delete(c.byString, string(cfg.BufferConfig))
		c.pool[cfg.Index] = nil
		c.freeList = append(c.freeList, cfg.Index)
	}
}

// Add inserts a feature into the config at configIndex, re-sorting by
// descending priority and interning the resulting byte string. It
// returns the new config's index (two independent add sequences
// that reach the same final feature list converge on the same index).
func (c *Compiler) Add(configIndex uint32, priority uint32, node NodeIndex, bytes []byte) (uint32, error) {
	old, err := c.Get(configIndex)
	if err != nil {
		return 0, err
	}

	newFeatures := duplicateFeatures(old.Features)
	newFeatures = append(newFeatures, Feature{Priority: priority, Node: node, Bytes: append([]byte(nil), bytes...)})
	sort.SliceStable(newFeatures, func(i, j int) bool { return newFeatures[i].Priority > newFeatures[j].Priority })

	next, err := c.findOrAllocate(newFeatures)
	if err != nil {
		return 0, err
	}

	if old.Index != 0 {
		c.removeReference(old)
	}
	next.refcount++
	return next.Index, nil
}

// Del removes the feature matching (node, bytes) from the config at
// configIndex. If the result is empty, the null config index (0) is
// returned.
func (c *Compiler) Del(configIndex uint32, node NodeIndex, bytes []byte) (uint32, error) {
	old, err := c.Get(configIndex)
	if err != nil {
		return 0, err
	}
	if configIndex == 0 {
		return 0, fmt.Errorf("feature: cannot delete from the null config")
	}

	pos := -1
	for i, f := range old.Features {
		if f.Node == node && string(f.Bytes) == string(bytes) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return 0, fmt.Errorf("feature: no matching feature (node=%d) in config %d", node, configIndex)
	}

	newFeatures := duplicateFeatures(old.Features)
	newFeatures = append(newFeatures[:pos], newFeatures[pos+1:]...)

	if len(newFeatures) == 0 {
		c.removeReference(old)
		return 0, nil
	}

	next, err := c.findOrAllocate(newFeatures)
	if err != nil {
		return 0, err
	}
	c.removeReference(old)
	next.refcount++
	return next.Index, nil
}

// Cursor walks a compiled buffer_config byte string one feature at a
// time, the per-packet dispatch side of the compiler: each feature
// node reads the edge byte at the cursor, advances past it and the
// feature's own config bytes, and stores the new cursor back into the
// buffer's opaque area.
type Cursor struct {
	data   []byte
	offset int
}

// NewCursor starts a cursor at offset 0 of cfg's buffer_config.
func NewCursor(cfg *Config) *Cursor { return &Cursor{data: cfg.BufferConfig} }

// Next returns the outbound edge at the cursor and the per-feature
// config bytes immediately following it, advancing the cursor past
// both. featureBytesLen must be supplied by the calling node (it knows
// its own config layout); ok is false once the cursor is exhausted.
func (cur *Cursor) Next(featureBytesLen int) (edge uint8, featureBytes []byte, ok bool) {
	if cur.offset >= len(cur.data) {
		return 0, nil, false
	}
	edge = cur.data[cur.offset]
	start := cur.offset + 1
	end := start + featureBytesLen
	if end > len(cur.data) {
		return 0, nil, false
	}
	featureBytes = cur.data[start:end]
	cur.offset = end
	return edge, featureBytes, true
}
