package ip4_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/ip4"
)

func TestBuildTimeExceededQuotesOriginalHeader(t *testing.T) {
	orig := wellFormedPacket([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 3}, 1, 1, 16)
	h, err := ip4.Parse(orig)
	require.NoError(t, err)

	reply := ip4.BuildTimeExceeded(h, orig, [4]byte{10, 0, 0, 3})
	replyHeader, err := ip4.Parse(reply)
	require.NoError(t, err)

	assert.Equal(t, h.Src, replyHeader.Dst, "reply addressed back to original source")
	assert.Zero(t, ip4.Checksum(reply[:ip4.HeaderLen]))

	icmp := reply[ip4.HeaderLen:]
	require.True(t, len(icmp) >= 8+ip4.HeaderLen+8)
	assert.EqualValues(t, 11, icmp[0], "type 11: time exceeded")
	assert.EqualValues(t, 0, icmp[1], "code 0: ttl exceeded in transit")

	quoted := icmp[8:]
	assert.Equal(t, orig[:ip4.HeaderLen+8], quoted[:ip4.HeaderLen+8])
}
