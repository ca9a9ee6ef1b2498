package ip4

import "encoding/binary"

// ICMP message/code pairs this package originates: a ttl-expired
// packet is answered with a time-exceeded reply rather than silently
// dropped.
const (
	icmpProtocol = 1

	icmpTypeTimeExceeded    = 11
	icmpCodeTTLExceeded     = 0
	icmpTypeDestUnreachable = 3
)

// BuildTimeExceeded constructs the ICMPv4 "time exceeded in transit"
// reply to origPacket (a full IPv4 packet, header included, whose TTL
// Validate just rejected): a fresh IPv4 header addressed back to the
// original source, carrying an ICMP header plus the original packet's
// header and first 8 octets of payload (RFC 792's quoted-datagram
// convention).
func BuildTimeExceeded(origHeader *Header, origPacket []byte, srcAddr [4]byte) []byte {
	quoteLen := HeaderLen + 8
	if quoteLen > len(origPacket) {
		quoteLen = len(origPacket)
	}
	quote := origPacket[:quoteLen]

	icmpLen := 8 + len(quote)
	out := make([]byte, HeaderLen+icmpLen)

	out[0] = 0x45
	out[1] = 0
	binary.BigEndian.PutUint16(out[2:4], uint16(len(out)))
	binary.BigEndian.PutUint16(out[4:6], 0)
	binary.BigEndian.PutUint16(out[6:8], 0)
	out[8] = 64
	out[9] = icmpProtocol
	copy(out[12:16], srcAddr[:])
	copy(out[16:20], origHeader.Src.AsSlice())
	binary.BigEndian.PutUint16(out[10:12], Checksum(out[:HeaderLen]))

	icmp := out[HeaderLen:]
	icmp[0] = icmpTypeTimeExceeded
	icmp[1] = icmpCodeTTLExceeded
	binary.BigEndian.PutUint16(icmp[2:4], 0) // checksum placeholder
	binary.BigEndian.PutUint32(icmp[4:8], 0) // unused
	copy(icmp[8:], quote)
	binary.BigEndian.PutUint16(icmp[2:4], Checksum(icmp))

	return out
}
