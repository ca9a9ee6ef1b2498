package fib

import "fmt"

// Resolve follows idx through one multipath indirection if present,
// returning the terminal adjacency a rewrite node should act on.
// flowHash is consulted only when idx names a multipath adjacency.
func (h *Heap) Resolve(idx Index, flowHash uint32) (*Adjacency, error) {
	adj, err := h.Get(idx)
	if err != nil {
		return nil, err
	}
	if adj.Kind != KindMultipath {
		return adj, nil
	}
	slot := SelectSlot(adj.FirstAdjIndex, adj.Log2Count, flowHash)
	resolved, err := h.Get(slot)
	if err != nil {
		return nil, fmt.Errorf("fib: multipath slot %d: %w", slot, err)
	}
	return resolved, nil
}
