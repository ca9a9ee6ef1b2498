package ip6

import "encoding/binary"

// icmpProtocol is IP6's next-header value for ICMPv6 (RFC 4443 §2.1).
const icmpProtocol = 58

// PseudoHeaderChecksum folds the IPv6 pseudo-header (RFC 8200 §8.1:
// src, dst, upper-layer length, zero-padding, next-header) plus
// upperLayer into the one's-complement sum ICMPv6's checksum is
// computed over.
func PseudoHeaderChecksum(src, dst [16]byte, upperLayer []byte) uint16 {
	var sum uint32
	for i := 0; i < 16; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(src[i : i+2]))
	}
	for i := 0; i < 16; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(dst[i : i+2]))
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(upperLayer)))
	sum += uint32(binary.BigEndian.Uint16(lenBuf[0:2]))
	sum += uint32(binary.BigEndian.Uint16(lenBuf[2:4]))
	sum += uint32(icmpProtocol)

	n := len(upperLayer)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(upperLayer[i : i+2]))
	}
	if n%2 == 1 {
		sum += uint32(upperLayer[n-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}
