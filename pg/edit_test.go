package pg_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/pg"
)

func TestFixedEditAlwaysReturnsLow(t *testing.T) {
	e := pg.Edit{Kind: pg.EditFixed, Low: []byte{0xAA, 0xBB}}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 3; i++ {
		v, err := e.Next(rng)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xAA, 0xBB}, v)
	}
}

func TestIncrementEditWrapsFromHighBackToLow(t *testing.T) {
	e := pg.Edit{Kind: pg.EditIncrement, Low: []byte{0x00}, High: []byte{0x02}}
	rng := rand.New(rand.NewSource(1))

	var got []byte
	for i := 0; i < 4; i++ {
		v, err := e.Next(rng)
		require.NoError(t, err)
		got = append(got, v[0])
	}
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0x00}, got)
}

func TestRandomEditStaysWithinBounds(t *testing.T) {
	e := pg.Edit{Kind: pg.EditRandom, Low: []byte{10}, High: []byte{20}}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		v, err := e.Next(rng)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, int(v[0]), 10)
		assert.LessOrEqual(t, int(v[0]), 20)
	}
}

func TestUnspecifiedEditErrors(t *testing.T) {
	e := pg.Edit{Kind: pg.EditUnspecified}
	rng := rand.New(rand.NewSource(1))
	_, err := e.Next(rng)
	assert.Error(t, err)
}
