package device

import (
	"encoding/binary"
	"fmt"

	"github.com/packetgraph/vnet/vnet"
)

// EthernetHwClass is the vnet.HwClass for plain Ethernet interfaces:
// its RewriteForSwInterface builds a 14-byte {dst-mac, src-mac,
// ethertype} header, the L2 rewrite template every ethernet-attached
// adjacency paints onto outgoing packets.
type EthernetHwClass struct{}

func (EthernetHwClass) Name() string { return "ethernet" }

func (EthernetHwClass) FormatAddress(addr []byte) string {
	if len(addr) != 6 {
		return fmt.Sprintf("%x", addr)
	}
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", addr[0], addr[1], addr[2], addr[3], addr[4], addr[5])
}

func (EthernetHwClass) FormatHeader(data []byte) string {
	if len(data) < 14 {
		return "truncated ethernet header"
	}
	return fmt.Sprintf("%s > %s ethertype 0x%04x",
		EthernetHwClass{}.FormatAddress(data[6:12]), EthernetHwClass{}.FormatAddress(data[0:6]),
		binary.BigEndian.Uint16(data[12:14]))
}

func (EthernetHwClass) UnformatHwAddress(s string) ([]byte, error) {
	addr := make([]byte, 6)
	n, err := fmt.Sscanf(s, "%02x:%02x:%02x:%02x:%02x:%02x", &addr[0], &addr[1], &addr[2], &addr[3], &addr[4], &addr[5])
	if err != nil || n != 6 {
		return nil, fmt.Errorf("device: invalid ethernet address %q", s)
	}
	return addr, nil
}

func (EthernetHwClass) UnformatHeader(data []byte) (int, error) {
	if len(data) < 14 {
		return 0, fmt.Errorf("device: short ethernet header (%d bytes)", len(data))
	}
	return 14, nil
}

// RewriteForSwInterface builds {dst_addr, zero source address, l3Type}
// as the adjacency's rewrite bytes: a SwInterface carries no hardware
// address, so the source MAC is left zero. RewriteForHwInterface fills
// it from hw.HwAddress.
func (EthernetHwClass) RewriteForSwInterface(sw *vnet.SwInterface, l3Type uint16, dstAddr []byte, maxBytes int) ([]byte, error) {
	return buildEthernetHeader(dstAddr, nil, l3Type, maxBytes)
}

func (EthernetHwClass) RewriteForHwInterface(hw *vnet.HwInterface, l3Type uint16, dstAddr []byte, maxBytes int) ([]byte, error) {
	return buildEthernetHeader(dstAddr, hw.HwAddress, l3Type, maxBytes)
}

func buildEthernetHeader(dstAddr, srcAddr []byte, l3Type uint16, maxBytes int) ([]byte, error) {
	if len(dstAddr) != 6 {
		return nil, fmt.Errorf("device: ethernet dst address must be 6 bytes, got %d", len(dstAddr))
	}
	if 14 > maxBytes && maxBytes != 0 {
		return nil, fmt.Errorf("device: ethernet header (14 bytes) exceeds max rewrite size %d", maxBytes)
	}

	hdr := make([]byte, 14)
	copy(hdr[0:6], dstAddr)
	copy(hdr[6:12], srcAddr) // zero-filled source when unknown; caller patches via a fixup
	binary.BigEndian.PutUint16(hdr[12:14], l3Type)
	return hdr, nil
}

func (EthernetHwClass) IsValidClassForInterface(hw *vnet.HwInterface) bool { return true }

func (EthernetHwClass) HwClassChange(hw *vnet.HwInterface, oldInstance uint32) (uint32, error) {
	return oldInstance, nil
}
