package ip6

import (
	"github.com/packetgraph/vnet/buffer"
	"github.com/packetgraph/vnet/fib"
	"github.com/packetgraph/vnet/rewrite"
	"github.com/packetgraph/vnet/vlib"
)

// BufferGetter resolves a buffer index to its live buffer, the same
// shape ethernet.BufferGetter/ip4.BufferGetter use.
type BufferGetter func(buffer.Index) *buffer.Buffer

const (
	// ErrorBadHeader counts frames too short to hold an IPv6 header
	// and headers whose version is not 6.
	ErrorBadHeader = iota
	// ErrorHopLimitExpired counts hop-limit<=1 packets, which are
	// dropped; no ICMPv6 time-exceeded reply is built.
	ErrorHopLimitExpired
)

// InputNode builds the ip6-input node function: parse and validate the
// header, decrementing the hop limit
// for forwarded packets, and dispatching to lookupEdge or dropEdge.
// IPv6 carries no header checksum, so there is nothing to patch on
// decrement (unlike ip4.DecrementTTLInPlace).
func InputNode(get BufferGetter, dropEdge, lookupEdge vlib.EdgeIndex) vlib.NodeFunc {
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

			switch Validate(h, len(data)) {
			case DispositionDrop:
				rt.CountError(ErrorBadHeader, 1)
				rt.Enqueue(dropEdge, idx)
			case DispositionTimeExceeded:
				rt.CountError(ErrorHopLimitExpired, 1)
				rt.Enqueue(dropEdge, idx) // counted as time-exceeded; no ICMP6 reply is generated
			default: // DispositionForward
				DecrementHopLimitInPlace(data)
				rt.Enqueue(lookupEdge, idx)
			}
			n++
		}
		return n
	}
}

// LocalAddress reports whether addr is one of this node's bound
// addresses, consulted by NeighborSolicitationNode to decide whether a
// solicitation's target is ours to answer.
type LocalAddress func(addr [16]byte) bool

// HwAddressFor resolves the rx sw-interface of a buffer to the hardware
// address NeighborSolicitationNode should advertise.
type HwAddressFor func(idx buffer.Index) []byte

const (
	// ErrorNeighborDiscoveryBadOption counts solicitations that fail to
	// parse (short, wrong ICMP type, or a hop limit other than 255) or
	// whose advertisement cannot be built. A solicitation without a
	// source-link-layer-address option is accepted.
	ErrorNeighborDiscoveryBadOption = iota
	// ErrorNeighborDiscoveryUnknownTarget counts solicitations whose
	// target address is not one of ours.
	ErrorNeighborDiscoveryUnknownTarget
	// ErrorNeighborAdvertisementsSent counts replies sent.
	ErrorNeighborAdvertisementsSent
)

// NeighborSolicitationNode builds the icmp6-neighbor-solicitation node
// function: validate the solicitation, and for any target address that
// is ours, paint the buffer in place into a solicited+override
// neighbor advertisement and send it out replyEdge addressed back to
// the solicitor.
func NeighborSolicitationNode(get BufferGetter, isLocal LocalAddress, hwAddrFor HwAddressFor, replyEdge, dropEdge vlib.EdgeIndex) vlib.NodeFunc {
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
				rt.CountError(ErrorNeighborDiscoveryBadOption, 1)
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			ns, err := ParseNeighborSolicitation(data[HeaderLen:], h.HopLimit)
			if err != nil {
				rt.CountError(ErrorNeighborDiscoveryBadOption, 1)
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			if !isLocal(ns.Target) {
				rt.CountError(ErrorNeighborDiscoveryUnknownTarget, 1)
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			// ip0->dst_address = ip0->src_address; ip0->src_address = target.
			dstAddr := h.Src.As16()
			icmp, err := BuildNeighborAdvertisement(ns, ns.Target, dstAddr, hwAddrFor(idx))
			if err != nil {
				rt.CountError(ErrorNeighborDiscoveryBadOption, 1)
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			writeHeaderInPlace(data, ns.Target, dstAddr, ndRequiredHopLimit, uint16(len(icmp)))
			copy(data[HeaderLen:], icmp)
			buf.CurrentLength = uint16(HeaderLen + len(icmp))

			rt.CountError(ErrorNeighborAdvertisementsSent, 1)
			rt.Enqueue(replyEdge, idx)
			n++
		}
		return n
	}
}

// FlowHashFor computes the flow hash ip6-lookup passes to
// fib.Heap.Resolve for multipath selection, the IPv6 analog of
// ip4.FlowHashFor.
func FlowHashFor(h *Header) uint32 {
	s := h.Src.As16()
	d := h.Dst.As16()
	var x uint32
	for i := 0; i < 16; i++ {
		x = x*31 + uint32(s[i]) ^ uint32(d[i])
	}
	return x
}

// LookupNode builds the ip6-lookup node function: resolve each
// packet's destination against table, follow one multipath indirection
// via heap.Resolve, and dispatch by the resolved adjacency's Kind. The
// IPv6 analog of ip4.LookupNode.
func LookupNode(get BufferGetter, table *fib.HashTable, heap *fib.Heap, rewriteEdge, dropEdge, localEdge, arpEdge vlib.EdgeIndex) vlib.NodeFunc {
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
// to its *fib.Adjacency, the IPv6 analog of ip4.AdjacencyFor.
type AdjacencyFor func(adjIndex uint32) (*fib.Adjacency, error)

// RewriteNode builds the ip6-rewrite node function: paint each
// packet's resolved adjacency's rewrite string onto it and hand it to
// txEdge. The IPv6 analog of ip4.RewriteNode. The adjacency index is
// the per-buffer scalar ip6-lookup attached via EnqueueScalar, not the
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
