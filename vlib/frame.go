package vlib

import "github.com/packetgraph/vnet/buffer"

// VectorSize bounds how many buffer indices a single Frame carries. Real
// vector-processing cores size this to fit hot-path data structures in
// cache; the figure here (256) matches common VPP deployments.
const VectorSize = 256

// Frame is a vector of buffer indices in flight between two nodes, plus
// an optional per-buffer scalar (used by a handful of nodes, e.g. to
// carry a precomputed next-edge per buffer without re-deriving it).
type Frame struct {
	Buffers  []buffer.Index
	Scalars  []uint32 // parallel to Buffers; nil if unused
	NVectors int
}

func newFrame() *Frame {
	return &Frame{Buffers: make([]buffer.Index, 0, VectorSize)}
}

func (f *Frame) full() bool { return len(f.Buffers) >= VectorSize }

func (f *Frame) append(idx buffer.Index) {
	f.Buffers = append(f.Buffers, idx)
	f.NVectors++
}
