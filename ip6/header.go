// Package ip6 implements IPv6 header parse/validate/format plus the
// input/lookup/rewrite pipeline nodes and the ICMPv6 neighbor
// solicitation/advertisement exchange.
package ip6

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

const HeaderLen = 40

// Header is a parsed (not yet validated) IPv6 header.
type Header struct {
	Version       uint8
	TrafficClass  uint8
	FlowLabel     uint32
	PayloadLength uint16
	NextHeader    uint8
	HopLimit      uint8
	Src, Dst      netip.Addr
}

// Parse reads data's first 40 octets as an IPv6 header without
// validating field ranges (see Validate).
func Parse(data []byte) (*Header, error) {
	if len(data) < HeaderLen {
		return nil, fmt.Errorf("ip6: short header (%d bytes)", len(data))
	}
	word := binary.BigEndian.Uint32(data[0:4])
	h := &Header{
		Version:       uint8(word >> 28),
		TrafficClass:  uint8(word >> 20),
		FlowLabel:     word & 0xFFFFF,
		PayloadLength: binary.BigEndian.Uint16(data[4:6]),
		NextHeader:    data[6],
		HopLimit:      data[7],
	}
	var srcBytes, dstBytes [16]byte
	copy(srcBytes[:], data[8:24])
	copy(dstBytes[:], data[24:40])
	h.Src = netip.AddrFrom16(srcBytes)
	h.Dst = netip.AddrFrom16(dstBytes)
	return h, nil
}

// Disposition is what ip6-input decides to do with a packet.
type Disposition int

const (
	DispositionForward      Disposition = iota
	DispositionDrop                     // version != 6, L2 length shorter than header
	DispositionTimeExceeded             // hop-limit <= 1
)

// Validate applies the IPv6 input-validation rules and returns the
// resulting disposition. l2Length is the number of octets available
// after the L2 header.
func Validate(h *Header, l2Length int) Disposition {
	if h.Version != 6 {
		return DispositionDrop
	}
	if l2Length < HeaderLen {
		return DispositionDrop
	}
	if h.HopLimit <= 1 {
		return DispositionTimeExceeded
	}
	return DispositionForward
}

// DecrementHopLimitInPlace decrements the hop-limit octet of a live
// IPv6 header (data[7]); unlike IPv4 there is no header checksum to
// patch (IPv6 dropped it entirely).
func DecrementHopLimitInPlace(data []byte) {
	data[7]--
}

// writeHeaderInPlace overwrites data[0:HeaderLen] with a fresh IPv6
// header addressed src->dst, used by NeighborSolicitationNode to turn a
// solicitation buffer into its advertisement reply without a fresh
// allocation. version/traffic-class/flow-label are reset to {6,0,0};
// nextHeader is fixed to icmpProtocol since this is the only caller.
func writeHeaderInPlace(data []byte, src, dst [16]byte, hopLimit uint8, payloadLength uint16) {
	binary.BigEndian.PutUint32(data[0:4], uint32(6)<<28)
	binary.BigEndian.PutUint16(data[4:6], payloadLength)
	data[6] = icmpProtocol
	data[7] = hopLimit
	copy(data[8:24], src[:])
	copy(data[24:40], dst[:])
}

// Format renders h as "src -> dst next-header N hop-limit H".
func Format(h *Header) string {
	return fmt.Sprintf("%s -> %s next-header %d hop-limit %d", h.Src, h.Dst, h.NextHeader, h.HopLimit)
}
