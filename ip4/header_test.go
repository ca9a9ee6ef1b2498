package ip4_test

import (
	"encoding/binary"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/ip4"
)

// wellFormedPacket builds a 20-octet header + payload IPv4 packet with
// a correct header checksum.
func wellFormedPacket(src, dst [4]byte, ttl, protocol uint8, payloadLen int) []byte {
	buf := make([]byte, ip4.HeaderLen+payloadLen)
	buf[0] = 0x45 // version 4, ihl 5
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(buf)))
	buf[8] = ttl
	buf[9] = protocol
	copy(buf[12:16], src[:])
	copy(buf[16:20], dst[:])
	binary.BigEndian.PutUint16(buf[10:12], ip4.Checksum(buf[:ip4.HeaderLen]))
	return buf
}

func TestParseAndValidateWellFormed(t *testing.T) {
	buf := wellFormedPacket([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 3}, 64, 1, 16)
	h, err := ip4.Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, netip.AddrFrom4([4]byte{10, 0, 0, 2}), h.Src)
	assert.Equal(t, netip.AddrFrom4([4]byte{10, 0, 0, 3}), h.Dst)
	assert.Equal(t, ip4.DispositionForward, ip4.Validate(h, buf, len(buf)))
}

func TestValidateRejectsOptionsAsPunt(t *testing.T) {
	buf := wellFormedPacket([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 3}, 64, 1, 16)
	buf[0] = 0x46 // ihl=6: options present
	h, err := ip4.Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, ip4.DispositionPunt, ip4.Validate(h, buf, len(buf)))
}

func TestValidateRejectsBadVersion(t *testing.T) {
	buf := wellFormedPacket([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 3}, 64, 1, 16)
	buf[0] = 0x55 // version 5
	h, err := ip4.Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, ip4.DispositionDrop, ip4.Validate(h, buf, len(buf)))
}

func TestValidateRejectsTTLOne(t *testing.T) {
	buf := wellFormedPacket([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 3}, 1, 1, 16)
	h, err := ip4.Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, ip4.DispositionTimeExceeded, ip4.Validate(h, buf, len(buf)))
}

func TestValidateRejectsFragmentOffsetOne(t *testing.T) {
	buf := wellFormedPacket([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 3}, 64, 1, 16)
	binary.BigEndian.PutUint16(buf[6:8], 1)
	binary.BigEndian.PutUint16(buf[10:12], 0)
	binary.BigEndian.PutUint16(buf[10:12], ip4.Checksum(buf[:ip4.HeaderLen]))
	h, err := ip4.Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, ip4.DispositionDrop, ip4.Validate(h, buf, len(buf)))
}

func TestParseRejectsShortHeader(t *testing.T) {
	_, err := ip4.Parse(make([]byte, 10))
	assert.Error(t, err)
}
