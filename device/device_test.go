package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/device"
	"github.com/packetgraph/vnet/vnet"
)

func TestLoopbackTxThenDrainRoundTrips(t *testing.T) {
	lb := device.NewLoopbackClass()
	hw := &vnet.HwInterface{Index: 3}

	require.NoError(t, lb.AdminUpDown(hw, true))
	n, err := lb.TxFunction(hw, []uint32{10, 20, 30})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, []uint32{10, 20, 30}, lb.Drain(hw))
	assert.Empty(t, lb.Drain(hw), "drain empties the queue")
}

func TestLoopbackTxRejectedWhenAdminDown(t *testing.T) {
	lb := device.NewLoopbackClass()
	hw := &vnet.HwInterface{Index: 1}

	_, err := lb.TxFunction(hw, []uint32{1})
	assert.Error(t, err)
}

func TestNullClassDiscardsEverything(t *testing.T) {
	var n device.NullClass
	hw := &vnet.HwInterface{Index: 1}

	sent, err := n.TxFunction(hw, []uint32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
}

func TestEthernetHwClassRewriteBuildsFourteenByteHeader(t *testing.T) {
	var hc device.EthernetHwClass
	hw := &vnet.HwInterface{HwAddress: []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01}}

	rw, err := hc.RewriteForHwInterface(hw, 0x0800, []byte{1, 2, 3, 4, 5, 6}, 64)
	require.NoError(t, err)
	require.Len(t, rw, 14)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, rw[0:6])
	assert.Equal(t, hw.HwAddress, rw[6:12])
	assert.Equal(t, []byte{0x08, 0x00}, rw[12:14])
}

func TestEthernetHwClassFormatAddress(t *testing.T) {
	var hc device.EthernetHwClass
	assert.Equal(t, "de:ad:be:ef:00:01", hc.FormatAddress([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01}))
}
