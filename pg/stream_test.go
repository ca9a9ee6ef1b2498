package pg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/pg"
)

func ethernetIncrementStream(t *testing.T) *pg.Stream {
	t.Helper()
	s := pg.NewStream("eth-increment", 0 /* ethernet-input */, 0, 1)
	s.NPacketsLimit = 5
	s.RatePacketsPerSecond = 0 // unrated: drain as fast as possible

	group := &pg.EditGroup{
		Name:  "ethernet",
		Fixed: make([]byte, 14+64), // 14-byte header + 64-byte payload
		Edits: []pg.Edit{
			{Kind: pg.EditIncrement, ByteOffset: 0, Low: []byte{0, 0, 0, 0, 0, 0}, High: []byte{0, 0, 0, 0, 0, 4}},
			{Kind: pg.EditFixed, ByteOffset: 6, Low: []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x00}},
			{Kind: pg.EditFixed, ByteOffset: 12, Low: []byte{0x08, 0x00}},
		},
	}
	s.EditGroups = []*pg.EditGroup{group}
	return s
}

func TestIncrementStreamProducesExactlyFivePacketsInOrder(t *testing.T) {
	s := ethernetIncrementStream(t)
	require.NoError(t, s.Enable())

	pkts, err := s.Tick(1.0)
	require.NoError(t, err)
	require.Len(t, pkts, 5)

	for i, pkt := range pkts {
		dstMac := pkt[0:6]
		assert.Equal(t, byte(i), dstMac[5], "packet %d dst-mac last octet", i)
		assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x00}, pkt[6:12], "src-mac is fixed")
		assert.Equal(t, []byte{0x08, 0x00}, pkt[12:14], "ethertype is fixed")
	}
	assert.False(t, s.Enabled, "stream auto-disables once n_packets_limit is reached")
}

func TestEnableRejectsUnresolvedEdit(t *testing.T) {
	s := pg.NewStream("bad", 0, 0, 1)
	s.EditGroups = []*pg.EditGroup{{
		Name:  "g",
		Fixed: make([]byte, 4),
		Edits: []pg.Edit{{Kind: pg.EditUnspecified, ByteOffset: 0, Low: []byte{0, 0}}},
	}}
	err := s.Enable()
	assert.Error(t, err)
}

func TestEnableRejectsEditOverrunningTemplate(t *testing.T) {
	s := pg.NewStream("bad", 0, 0, 1)
	s.EditGroups = []*pg.EditGroup{{
		Name:  "g",
		Fixed: make([]byte, 2),
		Edits: []pg.Edit{{Kind: pg.EditFixed, ByteOffset: 1, Low: []byte{0, 0}}},
	}}
	err := s.Enable()
	assert.Error(t, err)
}

func TestFixupRunsAfterEditsApplied(t *testing.T) {
	s := pg.NewStream("checksum", 0, 0, 1)
	var fixupSaw []byte
	s.EditGroups = []*pg.EditGroup{{
		Name:  "g",
		Fixed: make([]byte, 4),
		Edits: []pg.Edit{{Kind: pg.EditFixed, ByteOffset: 0, Low: []byte{1, 2}}},
		Fixup: func(group []byte) { fixupSaw = append([]byte(nil), group...) },
	}}
	require.NoError(t, s.Enable())

	pkt, err := s.GeneratePacket()
	require.NoError(t, err)
	assert.Equal(t, pkt, fixupSaw)
	assert.Equal(t, byte(1), pkt[0])
}

func TestPacketSizeIncrementCyclesMinToMax(t *testing.T) {
	s := pg.NewStream("sized", 0, 0, 1)
	s.NPacketsLimit = 5
	s.MinPacketBytes = 60
	s.MaxPacketBytes = 62
	s.PacketSizeEditKind = pg.PacketSizeIncrement
	s.EditGroups = []*pg.EditGroup{{Name: "pad", Fixed: make([]byte, 64)}}
	require.NoError(t, s.Enable())

	pkts, err := s.Tick(1.0)
	require.NoError(t, err)
	require.Len(t, pkts, 5)

	var sizes []int
	for _, pkt := range pkts {
		sizes = append(sizes, len(pkt))
	}
	assert.Equal(t, []int{60, 61, 62, 60, 61}, sizes, "increment sizes wrap from max back to min")
}

func TestPacketSizeRandomStaysWithinBounds(t *testing.T) {
	s := pg.NewStream("sized-random", 0, 0, 7)
	s.NPacketsLimit = 100
	s.MinPacketBytes = 64
	s.MaxPacketBytes = 128
	s.PacketSizeEditKind = pg.PacketSizeRandom
	s.EditGroups = []*pg.EditGroup{{Name: "pad", Fixed: make([]byte, 64)}}
	require.NoError(t, s.Enable())

	pkts, err := s.Tick(1.0)
	require.NoError(t, err)
	require.Len(t, pkts, 100)
	for _, pkt := range pkts {
		assert.GreaterOrEqual(t, len(pkt), 64)
		assert.LessOrEqual(t, len(pkt), 128)
	}
}

func TestPacketSizeFixedPadsToMin(t *testing.T) {
	s := pg.NewStream("sized-fixed", 0, 0, 1)
	s.NPacketsLimit = 1
	s.MinPacketBytes = 100
	s.PacketSizeEditKind = pg.PacketSizeFixed
	s.EditGroups = []*pg.EditGroup{{Name: "short", Fixed: []byte{1, 2, 3}}}
	require.NoError(t, s.Enable())

	pkts, err := s.Tick(1.0)
	require.NoError(t, err)
	require.Len(t, pkts, 1)
	assert.Len(t, pkts[0], 100)
	assert.Equal(t, []byte{1, 2, 3}, pkts[0][:3])
	assert.Equal(t, byte(0), pkts[0][50], "padding beyond the template is zero-filled")
}

func TestFixedTemplateConcatenatesGroups(t *testing.T) {
	s := pg.NewStream("tmpl", 0, 0, 1)
	s.EditGroups = []*pg.EditGroup{
		{Name: "a", Fixed: []byte{1, 2}},
		{Name: "b", Fixed: []byte{3}},
	}
	assert.Equal(t, []byte{1, 2, 3}, s.FixedTemplate())
}
