package vlib

import "fmt"

// Graph owns the node arena and the names nodes are registered under.
// Nodes reference each other only via NodeIndex, never by pointer, so
// the graph may contain cycles (e.g. a management path that loops
// ip4-rewrite back into ip4-input) without creating ownership cycles.
type Graph struct {
	nodes    []*Node
	byName   map[string]NodeIndex
	reserved map[string]bool // names reserved (e.g. by a deleted hw-interface's tx node) pending reuse
}

// NewGraph creates an empty node graph.
func NewGraph() *Graph {
	return &Graph{byName: make(map[string]NodeIndex), reserved: make(map[string]bool)}
}

// RegisterNode allocates a node from d, returning its NodeIndex. Errors
// if the name is already registered and not reserved-for-reuse.
func (g *Graph) RegisterNode(d Descriptor) (NodeIndex, error) {
	if _, exists := g.byName[d.Name]; exists && !g.reserved[d.Name] {
		return 0, fmt.Errorf("vlib: node %q already registered", d.Name)
	}

	idx := NodeIndex(len(g.nodes))
	n := &Node{
		Index:        idx,
		Name:         d.Name,
		Kind:         d.Kind,
		Function:     d.Function,
		Errors:       make([]uint64, d.NumErrors),
		ErrorNames:   d.ErrorNames,
		FormatTrace:  d.FormatTrace,
		FormatBuffer: d.FormatBuffer,
		Enabled:      true,
		PollingRate:  d.PollingRate,
		edgeByName:   make(map[string]EdgeIndex),
	}
	g.nodes = append(g.nodes, n)
	g.byName[d.Name] = idx
	delete(g.reserved, d.Name)
	return idx, nil
}

// Node returns the node at idx.
func (g *Graph) Node(idx NodeIndex) *Node {
	return g.nodes[idx]
}

// NodeByName resolves a registered node name.
func (g *Graph) NodeByName(name string) (NodeIndex, bool) {
	idx, ok := g.byName[name]
	return idx, ok
}

// AddNext connects fromNode's edge "toName" to toNode, creating the edge
// if it doesn't already exist. This is the Graph-level form of
// Node.AddNext, used when the edge target is named rather than the
// caller already holding a NodeIndex.
func (g *Graph) AddNext(fromNode NodeIndex, toNode NodeIndex, edgeName string) EdgeIndex {
	return g.nodes[fromNode].AddNext(toNode, edgeName)
}

// NodesOfKind returns nodes of the given kind in registration order,
// which the main loop treats as graph/dispatch order.
func (g *Graph) NodesOfKind(k Kind) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// ReserveName reserves a node name for later reuse; a deleted
// hw-interface's tx-node name is reserved, not freed.
func (g *Graph) ReserveName(name string) { g.reserved[name] = true }
