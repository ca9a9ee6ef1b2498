// Package ethernet implements the Ethernet wire format and input node:
// 6-octet dst, 6-octet src, 2-octet ethertype, with zero, one, or two
// 4-octet VLAN tags inserted before the inner ethertype.
package ethernet

import (
	"encoding/binary"
	"fmt"
)

const (
	HeaderLen  = 14
	VlanTagLen = 4
	AddressLen = 6

	// TypeVLAN is the ethertype marking an 802.1Q tag.
	TypeVLAN = 0x8100
	// TypeIP4, TypeIP6, TypeMPLSUnicast are the ethertypes ip4-input,
	// ip6-input, and mpls-input register against.
	TypeIP4         = 0x0800
	TypeARP         = 0x0806
	TypeIP6         = 0x86DD
	TypeMPLSUnicast = 0x8847

	// llcLengthBoundary: an ethertype field value below this is an LLC
	// length, not a type.
	llcLengthBoundary = 0x0600
)

// Header is a parsed Ethernet header with 0, 1, or 2 VLAN tags
// unwrapped, exposing the innermost (L3) ethertype.
type Header struct {
	Dst, Src []byte
	VlanIDs  []uint16 // outermost first; empty if untagged
	L3Type   uint16
	// HeaderLen is the total octet count consumed from the start of
	// the frame (14 + 4*len(VlanIDs)).
	HeaderLen int
	// IsLLCLength is set when the (pre-VLAN) ethertype position held a
	// length < 0x0600, meaning this frame should be routed to an LLC
	// demux rather than interpreted as L3Type.
	IsLLCLength bool
}

// Parse reads an Ethernet header (and any VLAN tags) from the front of
// data.
func Parse(data []byte) (*Header, error) {
	if len(data) < HeaderLen {
		return nil, fmt.Errorf("ethernet: short frame (%d bytes)", len(data))
	}

	h := &Header{Dst: data[0:6], Src: data[6:12]}
	off := 12
	etype := binary.BigEndian.Uint16(data[off : off+2])
	off += 2

	for etype == TypeVLAN {
		if len(data) < off+VlanTagLen {
			return nil, fmt.Errorf("ethernet: truncated VLAN tag")
		}
		tci := binary.BigEndian.Uint16(data[off : off+2])
		h.VlanIDs = append(h.VlanIDs, tci&0x0FFF)
		off += 2
		etype = binary.BigEndian.Uint16(data[off : off+2])
		off += 2
	}

	if etype < llcLengthBoundary {
		h.IsLLCLength = true
	}
	h.L3Type = etype
	h.HeaderLen = off
	return h, nil
}

// Format renders h as "src > dst type".
func Format(h *Header) string {
	return fmt.Sprintf("%s > %s type 0x%04x", FormatAddress(h.Src), FormatAddress(h.Dst), h.L3Type)
}

// FormatAddress renders a 6-byte MAC address as colon-hex.
func FormatAddress(addr []byte) string {
	if len(addr) != AddressLen {
		return fmt.Sprintf("%x", addr)
	}
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", addr[0], addr[1], addr[2], addr[3], addr[4], addr[5])
}
