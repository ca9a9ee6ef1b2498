package ip4

import (
	"github.com/packetgraph/vnet/buffer"
	"github.com/packetgraph/vnet/fib"
	"github.com/packetgraph/vnet/rewrite"
	"github.com/packetgraph/vnet/vlib"
)

// BufferGetter resolves a buffer index to its live buffer, the same
// shape ethernet.BufferGetter uses.
type BufferGetter func(buffer.Index) *buffer.Buffer

const (
	// ErrorBadHeader counts frames too short to hold an IPv4 header
	// and headers whose version is not 4.
	ErrorBadHeader = iota
	// ErrorBadChecksum counts header-checksum failures.
	ErrorBadChecksum
	// ErrorBadLength counts total-length mismatches.
	ErrorBadLength
	// ErrorFragmentOffsetOne counts the reserved frag-offset==1 probe.
	ErrorFragmentOffsetOne
	// ErrorTTLExpired counts ttl<=1 packets turned into ICMP replies.
	ErrorTTLExpired
)

// InputNode builds the ip4-input node function: parse and validate the
// header, decrementing+re-checksumming
// the TTL for forwarded packets, and dispatching to lookupEdge,
// dropEdge, or puntEdge. A ttl<=1 packet is turned into an ICMP time
// exceeded reply in place and sent out lookupEdge so it gets routed back
// toward its original source like any other packet.
func InputNode(get BufferGetter, localAddr [4]byte, lookupEdge, dropEdge, puntEdge vlib.EdgeIndex) vlib.NodeFunc {
	return func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		n := 0
		for _, idx := range frame.Buffers {
			buf := get(idx)
			data := buf.Bytes()

			h, err := Parse(data)
			if err != nil {
				rt.CountError(ErrorBadHeader, 1)
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			switch Validate(h, data, len(data)) {
			case DispositionPunt:
				rt.Enqueue(puntEdge, idx)
			case DispositionDrop:
				// Same check order as Validate.
				switch {
				case h.Version != 4:
					rt.CountError(ErrorBadHeader, 1)
				case int(h.TotalLength) < HeaderLen || int(h.TotalLength) > len(data):
					rt.CountError(ErrorBadLength, 1)
				case Checksum(data[:HeaderLen]) != 0:
					rt.CountError(ErrorBadChecksum, 1)
				default:
					rt.CountError(ErrorFragmentOffsetOne, 1)
				}
				rt.Enqueue(dropEdge, idx)
			case DispositionTimeExceeded:
				rt.CountError(ErrorTTLExpired, 1)
				reply := BuildTimeExceeded(h, data, localAddr)
				copy(buf.Data()[int(buf.CurrentData):], reply)
				buf.CurrentLength = uint16(len(reply))
				rt.Enqueue(lookupEdge, idx)
			default: // DispositionForward
				DecrementTTLInPlace(data)
				rt.Enqueue(lookupEdge, idx)
			}
			n++
		}
		return n
	}
}

// FlowHashFor computes the 4-tuple-free flow hash ip4-lookup passes to
// fib.Heap.Resolve for multipath selection: src and dst folded together,
// the simplest hash that still spreads flows between distinct
// source/destination pairs evenly across an ECMP block.
func FlowHashFor(h *Header) uint32 {
	s := h.Src.As4()
	d := h.Dst.As4()
	var x uint32
	for i := 0; i < 4; i++ {
		x = x*31 + uint32(s[i]) ^ uint32(d[i])
	}
	return x
}

// LookupNode builds the ip4-lookup node function: resolve each packet's
// destination against table, follow one multipath indirection via
// heap.Resolve, and dispatch by the resolved adjacency's Kind.
func LookupNode(get BufferGetter, table *fib.Table, heap *fib.Heap, rewriteEdge, dropEdge, puntEdge, localEdge, arpEdge vlib.EdgeIndex) vlib.NodeFunc {
	return func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		n := 0
		for _, idx := range frame.Buffers {
			buf := get(idx)
			h, err := Parse(buf.Bytes())
			if err != nil {
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			adjIndex := table.Lookup(h.Dst)
			flowHash := FlowHashFor(h)
			adj, err := heap.Resolve(adjIndex, flowHash)
			if err != nil {
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			switch adj.Kind {
			case fib.KindDrop, fib.KindMiss:
				rt.Enqueue(dropEdge, idx)
			case fib.KindPunt:
				rt.Enqueue(puntEdge, idx)
			case fib.KindLocal:
				rt.Enqueue(localEdge, idx)
			case fib.KindArpDiscover:
				rt.Enqueue(arpEdge, idx)
			case fib.KindRewrite:
				resolvedIndex := adjIndex
				if top, err := heap.Get(adjIndex); err == nil && top.Kind == fib.KindMultipath {
					resolvedIndex = fib.SelectSlot(top.FirstAdjIndex, top.Log2Count, flowHash)
				}
				rt.EnqueueScalar(rewriteEdge, idx, uint32(resolvedIndex))
			default:
				rt.Enqueue(dropEdge, idx)
			}
			n++
		}
		return n
	}
}

// AdjacencyFor resolves a packet's scalar-carried adjacency index back
// to its *fib.Adjacency, the lookup ip4-rewrite needs to paint the
// packet's L2 rewrite.
type AdjacencyFor func(adjIndex uint32) (*fib.Adjacency, error)

// RewriteNode builds the ip4-rewrite node function: paint each packet's
// resolved adjacency's rewrite string onto it and hand it to txEdge,
// dropping any packet whose adjacency lookup fails or whose rewritten
// size would exceed the adjacency's MaxL3Bytes. The adjacency index is
// the per-buffer scalar ip4-lookup attached via EnqueueScalar, not the
// buffer index itself.
func RewriteNode(get BufferGetter, adjFor AdjacencyFor, txEdge, dropEdge vlib.EdgeIndex) vlib.NodeFunc {
	return func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		n := 0
		for i, idx := range frame.Buffers {
			buf := get(idx)
			var adjIndex uint32
			if i < len(frame.Scalars) {
				adjIndex = frame.Scalars[i]
			}
			adj, err := adjFor(adjIndex)
			if err != nil {
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			var s rewrite.String
			if err := s.Set(adj.Rewrite); err != nil {
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}
			if err := rewrite.Apply(buf, &s, adj.MaxL3Bytes); err != nil {
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}
			rt.Enqueue(txEdge, idx)
			n++
		}
		return n
	}
}
