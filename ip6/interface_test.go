package ip6_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/fib"
	"github.com/packetgraph/vnet/ip6"
)

// TestAddDelInterfaceAddressInstallsPrefixAndHostRoutes mirrors
// ip4's equivalent test: binding an address installs both the
// prefix/arp-discover route and the /128 host/local route.
func TestAddDelInterfaceAddressInstallsPrefixAndHostRoutes(t *testing.T) {
	heap := fib.NewHeap()
	table := fib.NewHashTable(heap, 128)
	ifib := ip6.NewInterfaceFib(table, heap)

	var addressEvents []bool
	ifib.Callbacks.AddDelInterfaceAddress = append(ifib.Callbacks.AddDelInterfaceAddress,
		func(swIfIndex uint32, addr [16]byte, prefixLen int, isAdd bool) {
			addressEvents = append(addressEvents, isAdd)
		})

	addr := netip.MustParseAddr("2001:db8::1").As16()
	require.NoError(t, ifib.AddDelInterfaceAddress(5, addr, 64, true))
	assert.Equal(t, []bool{true}, addressEvents)

	subnetAdj, err := heap.Get(table.Lookup(netip.MustParseAddr("2001:db8::abcd")))
	require.NoError(t, err)
	assert.Equal(t, fib.KindArpDiscover, subnetAdj.Kind)
	assert.EqualValues(t, 5, subnetAdj.SwIfIndex)

	hostAdj, err := heap.Get(table.Lookup(netip.MustParseAddr("2001:db8::1")))
	require.NoError(t, err)
	assert.Equal(t, fib.KindLocal, hostAdj.Kind)
	assert.EqualValues(t, 5, hostAdj.SwIfIndex)
}

func TestAddDelInterfaceAddressRemovesBothRoutesOnDelete(t *testing.T) {
	heap := fib.NewHeap()
	table := fib.NewHashTable(heap, 128)
	ifib := ip6.NewInterfaceFib(table, heap)

	addr := netip.MustParseAddr("2001:db8::1").As16()
	require.NoError(t, ifib.AddDelInterfaceAddress(5, addr, 64, true))
	require.NoError(t, ifib.AddDelInterfaceAddress(5, addr, 64, false))

	assert.Equal(t, fib.MissIndex, table.Lookup(netip.MustParseAddr("2001:db8::abcd")))
	assert.Equal(t, fib.MissIndex, table.Lookup(netip.MustParseAddr("2001:db8::1")))
}
