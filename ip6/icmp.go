package ip6

import (
	"encoding/binary"
	"fmt"
)

// ICMPv6 message types this package handles (RFC 4861 §4.3/§4.4).
const (
	TypeNeighborSolicitation  = 135
	TypeNeighborAdvertisement = 136

	// ndRequiredHopLimit is the hop-limit every neighbor-discovery
	// message must carry (RFC 4861 §7.1.1/§7.1.2); anything else is
	// spoofed or off-link and must be dropped.
	ndRequiredHopLimit = 255

	optSourceLinkLayerAddress = 1
	optTargetLinkLayerAddress = 2

	flagSolicited = 1 << 30
	flagOverride  = 1 << 29
)

// ErrInvalidHopLimit rejects a neighbor-discovery message whose
// hop-limit is anything other than 255.
var ErrInvalidHopLimit = fmt.Errorf("ip6: invalid-hop-limit-for-type")

// NeighborSolicitation is a parsed ICMPv6 neighbor solicitation: the
// 24-octet NS header (type, code, checksum, reserved, target address)
// plus an optional source-link-layer-address option.
type NeighborSolicitation struct {
	Target              [16]byte
	SourceLinkLayerAddr []byte // 6 bytes, nil if the option was absent
}

// ParseNeighborSolicitation validates hopLimit per RFC 4861 and parses
// icmpData (the ICMPv6 message, header included) as a neighbor
// solicitation with an optional 8-octet source-link-layer-address TLV.
func ParseNeighborSolicitation(icmpData []byte, hopLimit uint8) (*NeighborSolicitation, error) {
	if hopLimit != ndRequiredHopLimit {
		return nil, ErrInvalidHopLimit
	}
	if len(icmpData) < 24 {
		return nil, fmt.Errorf("ip6: short neighbor solicitation (%d bytes)", len(icmpData))
	}
	if icmpData[0] != TypeNeighborSolicitation {
		return nil, fmt.Errorf("ip6: not a neighbor solicitation (type %d)", icmpData[0])
	}
	ns := &NeighborSolicitation{}
	copy(ns.Target[:], icmpData[8:24])

	if len(icmpData) >= 32 {
		opt := icmpData[24:32]
		if opt[0] == optSourceLinkLayerAddress && opt[1] == 1 {
			addr := make([]byte, 6)
			copy(addr, opt[2:8])
			ns.SourceLinkLayerAddr = addr
		}
	}
	return ns, nil
}

// BuildNeighborAdvertisement constructs the solicited+override ICMPv6
// neighbor advertisement reply to ns, addressed from srcAddr (=
// ns.Target, the address being advertised) to dstAddr (the solicitor's
// original source address), carrying a target-link-layer-address
// option naming ourHwAddr: swap src/dst, flip the ICMP type, set
// solicited|override, and swap the link-layer-address option's
// direction.
func BuildNeighborAdvertisement(ns *NeighborSolicitation, srcAddr, dstAddr [16]byte, ourHwAddr []byte) ([]byte, error) {
	if len(ourHwAddr) != 6 {
		return nil, fmt.Errorf("ip6: hw address must be 6 bytes, got %d", len(ourHwAddr))
	}

	icmp := make([]byte, 32)
	icmp[0] = TypeNeighborAdvertisement
	icmp[1] = 0                              // code
	binary.BigEndian.PutUint16(icmp[2:4], 0) // checksum placeholder
	binary.BigEndian.PutUint32(icmp[4:8], flagSolicited|flagOverride)
	copy(icmp[8:24], ns.Target[:])

	icmp[24] = optTargetLinkLayerAddress
	icmp[25] = 1 // length in 8-octet units
	copy(icmp[26:32], ourHwAddr)

	checksum := PseudoHeaderChecksum(srcAddr, dstAddr, icmp)
	binary.BigEndian.PutUint16(icmp[2:4], checksum)
	return icmp, nil
}
