// Package vnet implements the interface abstraction layer: hw/sw
// interface pools, device-class and hw-interface-class vtables,
// sub-interfaces, per-interface counters, and admin/link state
// propagation.
//
// The model is layered: many sw-interfaces may share one hw-interface,
// and the concrete per-vendor behavior lives behind the
// DeviceClass/HwClass vtables rather than being baked into the
// interface structs themselves.
package vnet

import "fmt"

// HwIfIndex and SwIfIndex are stable pool indices, valid for the life
// of the Manager.
type HwIfIndex uint32
type SwIfIndex uint32

// HwFlags is the hw-interface flag set.
type HwFlags uint32

const (
	HwFlagLinkUp HwFlags = 1 << iota
)

// SwFlags is the sw-interface flag set.
type SwFlags uint32

const (
	SwFlagAdminUp SwFlags = 1 << iota
	SwFlagPunt
)

// SwKind discriminates a sw-interface as directly backing hardware or
// as a sub-interface (e.g. a VLAN) of one.
type SwKind int

const (
	SwKindHardware SwKind = iota
	SwKindSub
)

// HwInterface is the physical/device-facing half of the interface
// layer.
type HwInterface struct {
	Index HwIfIndex

	DeviceClassIndex int
	DeviceInstance   uint32
	HwClassIndex     int
	HwClassInstance  uint32

	SwIfIndex SwIfIndex
	Name      string
	HwAddress []byte

	OutputNodeIndex uint32
	TxNodeIndex     uint32

	Flags HwFlags

	MinPacketBytes         uint32
	PerPacketOverheadBytes uint32
	MaxL3PacketBytesRx     uint32
	MaxL3PacketBytesTx     uint32

	subIfIndexByID map[uint32]SwIfIndex

	deleted bool
}

// SubInterfaceByID resolves a previously-created sub-interface id to
// its SwIfIndex.
func (h *HwInterface) SubInterfaceByID(id uint32) (SwIfIndex, bool) {
	s, ok := h.subIfIndexByID[id]
	return s, ok
}

// SwInterface is the logical half of the interface layer: either the
// default sw-interface of a hardware interface, or a sub-interface
// (e.g. VLAN) keyed by (sup_sw_if_index, id).
type SwInterface struct {
	Index SwIfIndex
	Kind  SwKind

	SupSwIfIndex SwIfIndex // self, for SwKindHardware
	HwIfIndex    HwIfIndex

	SubID uint32 // meaningful iff Kind == SwKindSub

	Flags SwFlags

	deleted bool
}

// Resolve walks SupSwIfIndex to the supporting hardware sw-interface;
// every sw-interface must reach one in at most two hops.
func (m *Manager) Resolve(idx SwIfIndex) (*SwInterface, error) {
	sw, err := m.SwInterface(idx)
	if err != nil {
		return nil, err
	}
	for hops := 0; sw.Kind != SwKindHardware; hops++ {
		if hops >= 2 {
			return nil, fmt.Errorf("vnet: sw-interface %d did not resolve to hardware within 2 hops", idx)
		}
		sw, err = m.SwInterface(sw.SupSwIfIndex)
		if err != nil {
			return nil, err
		}
	}
	return sw, nil
}
