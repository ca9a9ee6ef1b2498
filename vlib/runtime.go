package vlib

import "github.com/packetgraph/vnet/buffer"

// NodeRuntime is the per-dispatch handle a node function uses to read
// errors/trace state and to enqueue buffers onto its outbound edges:
// writing to a different edge than the cached one flushes the current
// frame first.
type NodeRuntime struct {
	node *Node
	loop *Loop

	building map[EdgeIndex]*Frame
}

func newNodeRuntime(loop *Loop, n *Node) *NodeRuntime {
	return &NodeRuntime{node: n, loop: loop, building: make(map[EdgeIndex]*Frame)}
}

// Node exposes the node this runtime is dispatching.
func (rt *NodeRuntime) Node() *Node { return rt.node }

// CachedNext returns the edge most recently written to.
func (rt *NodeRuntime) CachedNext() EdgeIndex { return rt.node.CachedNextIndex }

func (rt *NodeRuntime) frameFor(edge EdgeIndex) *Frame {
	f, ok := rt.building[edge]
	if !ok {
		f = newFrame()
		rt.building[edge] = f
	}
	return f
}

// Enqueue appends idx onto edge's outbound frame. Switching to a
// different edge than the currently cached one is legal at any time:
// the cached edge's partial frame is flushed first, then edge becomes
// the cached one.
func (rt *NodeRuntime) Enqueue(edge EdgeIndex, idx buffer.Index) {
	if edge != rt.node.CachedNextIndex {
		rt.putNextFrame(rt.node.CachedNextIndex)
	}
	rt.node.CachedNextIndex = edge
	f := rt.frameFor(edge)
	f.append(idx)
	if f.full() {
		rt.putNextFrame(edge)
	}
}

// EnqueueScalar is Enqueue plus a per-buffer scalar (e.g. a
// precomputed next-hop hash) carried alongside the index.
func (rt *NodeRuntime) EnqueueScalar(edge EdgeIndex, idx buffer.Index, scalar uint32) {
	if edge != rt.node.CachedNextIndex {
		rt.putNextFrame(rt.node.CachedNextIndex)
	}
	rt.node.CachedNextIndex = edge
	f := rt.frameFor(edge)
	f.append(idx)
	f.Scalars = append(f.Scalars, scalar)
	if f.full() {
		rt.putNextFrame(edge)
	}
}

// CountError increments the node's per-node-local error counter.
func (rt *NodeRuntime) CountError(errorID int, delta uint64) {
	rt.node.CountError(errorID, delta)
}

func (rt *NodeRuntime) putNextFrame(edge EdgeIndex) {
	f, ok := rt.building[edge]
	if !ok || f.NVectors == 0 {
		return
	}
	delete(rt.building, edge)

	toNode, ok := rt.node.NextNodeIndex(edge)
	if !ok {
		return
	}
	rt.loop.enqueueFrame(toNode, f)
}

// finish flushes every edge's outstanding partial frame. The main loop
// calls this once after a node function returns.
func (rt *NodeRuntime) finish() {
	for edge := range rt.building {
		rt.putNextFrame(edge)
	}
}
