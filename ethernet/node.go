package ethernet

import (
	"github.com/packetgraph/vnet/buffer"
	"github.com/packetgraph/vnet/vlib"
)

// BufferGetter resolves a buffer index to its live buffer, the same
// closure shape every *-input node in this module takes instead of
// reaching for a package-level singleton.
type BufferGetter func(buffer.Index) *buffer.Buffer

// EdgeFor maps an L3 ethertype (or the LLC-length sentinel, type 0) to
// the outbound edge ethernet-input should dispatch to. Unregistered
// ethertypes resolve to the node's error-drop edge.
type EdgeFor func(l3Type uint16) (vlib.EdgeIndex, bool)

// SubInterfaceFor resolves a VLAN-tagged frame's innermost VLAN ID to
// its sub-interface's SwIfIndex, given the rx sw-interface index the
// buffer already carries (the hw-interface's own default sw-interface,
// set by whatever device node handed the frame to ethernet-input). ok
// is false when no matching sub-interface is registered, in which case
// the buffer's SwIfIndexRx is left untouched. The vnet analog is
// vnet.HwInterface.SubInterfaceByID; InputNode stays vnet-agnostic and
// takes this as a plain closure, same as EdgeFor.
type SubInterfaceFor func(rxSwIfIndex uint32, vlanID uint16) (swIfIndex uint32, ok bool)

const (
	// ErrorBufferTooShort counts frames shorter than a full Ethernet
	// header.
	ErrorBufferTooShort = iota
	// ErrorUnknownType counts frames whose L3 type has no registered
	// edge.
	ErrorUnknownType
)

// InputNode builds the ethernet-input node function: parse the header,
// strip VLAN tags by advancing past them, resolve a tagged frame's
// rx sw-interface to its sub-interface, and dispatch to the edge
// EdgeFor names for the inner ethertype. dropEdge receives frames that
// fail to parse or whose type is unregistered. subIfFor may be nil
// when no sub-interfaces are in play, in which case every frame's
// SwIfIndexRx is left as the device node set it.
func InputNode(get BufferGetter, edgeFor EdgeFor, subIfFor SubInterfaceFor, dropEdge vlib.EdgeIndex) vlib.NodeFunc {
	return func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		n := 0
		for _, idx := range frame.Buffers {
			buf := get(idx)
			h, err := Parse(buf.Bytes())
			if err != nil {
				rt.CountError(ErrorBufferTooShort, 1)
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			if err := buf.Advance(h.HeaderLen); err != nil {
				rt.CountError(ErrorBufferTooShort, 1)
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}

			if len(h.VlanIDs) > 0 && subIfFor != nil {
				innerVlanID := h.VlanIDs[len(h.VlanIDs)-1]
				if swIfIndex, ok := subIfFor(buf.SwIfIndexRx, innerVlanID); ok {
					buf.SwIfIndexRx = swIfIndex
				}
			}

			l3Type := h.L3Type
			if h.IsLLCLength {
				l3Type = 0
			}
			edge, ok := edgeFor(l3Type)
			if !ok {
				rt.CountError(ErrorUnknownType, 1)
				rt.Enqueue(dropEdge, idx)
				n++
				continue
			}
			rt.Enqueue(edge, idx)
			n++
		}
		return n
	}
}
