package pg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/pg"
)

func TestSaveLoadRoundTripsStreamConfiguration(t *testing.T) {
	s := pg.NewStream("roundtrip", 3, 1, 1)
	s.NPacketsLimit = 20
	s.RatePacketsPerSecond = 50
	s.EditGroups = []*pg.EditGroup{{
		Name:  "g",
		Fixed: []byte{0x01, 0x02, 0x03},
		Edits: []pg.Edit{{Kind: pg.EditFixed, ByteOffset: 0, Low: []byte{0xFF}}},
	}}
	require.NoError(t, s.Enable())

	blob, err := pg.Save([]*pg.Stream{s})
	require.NoError(t, err)

	loaded, err := pg.Load(blob, 1)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, "roundtrip", got.Name)
	assert.EqualValues(t, 3, got.NodeIndex)
	assert.EqualValues(t, 1, got.NextEdge)
	assert.EqualValues(t, 20, got.NPacketsLimit)
	assert.Equal(t, 50.0, got.RatePacketsPerSecond)
	assert.True(t, got.Enabled, "enabled bitmap is preserved across the round trip")

	pkt, err := got.GeneratePacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x02, 0x03}, pkt)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	_, err := pg.Load([]byte{0x42, 0x00}, 1)
	assert.Error(t, err)
}

func TestLoadRejectsEmptyBlob(t *testing.T) {
	_, err := pg.Load(nil, 1)
	assert.Error(t, err)
}
