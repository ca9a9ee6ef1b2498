// Package ip4 implements IPv4 header parse/validate/format plus the
// input/lookup/rewrite pipeline nodes.
package ip4

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

const HeaderLen = 20

// Header is a parsed (not yet validated) IPv4 header.
type Header struct {
	Version      uint8
	IHL          uint8
	TOS          uint8
	TotalLength  uint16
	ID           uint16
	FlagsFragOff uint16
	TTL          uint8
	Protocol     uint8
	Checksum     uint16
	Src, Dst     netip.Addr
}

// Parse reads data's first 20 octets as an IPv4 header without
// validating field ranges (see Validate).
func Parse(data []byte) (*Header, error) {
	if len(data) < HeaderLen {
		return nil, fmt.Errorf("ip4: short header (%d bytes)", len(data))
	}
	h := &Header{
		Version:      data[0] >> 4,
		IHL:          data[0] & 0x0F,
		TOS:          data[1],
		TotalLength:  binary.BigEndian.Uint16(data[2:4]),
		ID:           binary.BigEndian.Uint16(data[4:6]),
		FlagsFragOff: binary.BigEndian.Uint16(data[6:8]),
		TTL:          data[8],
		Protocol:     data[9],
		Checksum:     binary.BigEndian.Uint16(data[10:12]),
	}
	var srcBytes, dstBytes [4]byte
	copy(srcBytes[:], data[12:16])
	copy(dstBytes[:], data[16:20])
	h.Src = netip.AddrFrom4(srcBytes)
	h.Dst = netip.AddrFrom4(dstBytes)
	return h, nil
}

// Disposition is what ip4-input decides to do with a packet.
type Disposition int

const (
	DispositionForward      Disposition = iota
	DispositionPunt                     // ihl != 5 (options present)
	DispositionDrop                     // version != 4, bad checksum, bad length, frag offset == 1
	DispositionTimeExceeded             // ttl <= 1
)

// Validate applies the IPv4 input-validation rules and returns the
// resulting disposition. l2Length is the number of octets available
// after the L2 header (i.e. the octets data itself spans).
func Validate(h *Header, data []byte, l2Length int) Disposition {
	if h.Version != 4 {
		return DispositionDrop
	}
	if h.IHL != 5 {
		return DispositionPunt
	}
	if int(h.TotalLength) < HeaderLen || int(h.TotalLength) > l2Length {
		return DispositionDrop
	}
	if Checksum(data[:HeaderLen]) != 0 {
		return DispositionDrop
	}
	fragOffset := h.FlagsFragOff & 0x1FFF
	if fragOffset == 1 {
		return DispositionDrop
	}
	if h.TTL <= 1 {
		return DispositionTimeExceeded
	}
	return DispositionForward
}

// Format renders h as "src -> dst proto N ttl T".
func Format(h *Header) string {
	return fmt.Sprintf("%s -> %s proto %d ttl %d", h.Src, h.Dst, h.Protocol, h.TTL)
}
