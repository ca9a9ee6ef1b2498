package ip4

import (
	"fmt"
	"net/netip"

	"github.com/packetgraph/vnet/fib"
)

// InterfaceCallbacks are the two IPv4 control-plane notification
// registries — interface-address add/del and route add/del — the same
// plain append-and-invoke-in-order slices vnet.Callbacks uses.
type InterfaceCallbacks struct {
	AddDelInterfaceAddress []func(swIfIndex uint32, addr [4]byte, prefixLen int, isAdd bool)
	AddDelRoute            []func(addr [4]byte, prefixLen int, isAdd bool)
}

type boundAddressKey struct {
	swIfIndex uint32
	addr      [4]byte
	prefixLen int
}

type boundAddress struct {
	arpAdj   fib.Index
	localAdj fib.Index
}

// InterfaceFib binds interface addresses to routes. It owns no table
// or heap of its own; it drives the ones the rest of ip4-lookup
// already uses.
type InterfaceFib struct {
	Table     *fib.Table
	Heap      *fib.Heap
	Callbacks InterfaceCallbacks

	bound map[boundAddressKey]boundAddress
}

// NewInterfaceFib creates an InterfaceFib over an existing table/heap
// pair (the same ones LookupNode and RewriteNode consult).
func NewInterfaceFib(table *fib.Table, heap *fib.Heap) *InterfaceFib {
	return &InterfaceFib{Table: table, Heap: heap, bound: make(map[boundAddressKey]boundAddress)}
}

// AddDelInterfaceAddress binds (isAdd true) or unbinds (isAdd false)
// addr/prefixLen to swIfIndex. Binding installs two routes via
// fib.Table.AddRoute: the prefix route pointed at a fresh
// fib.KindArpDiscover adjacency scoped to swIfIndex, so that forwarding
// onto the connected subnet triggers neighbor discovery, and the /32
// host route pointed at a fresh fib.KindLocal adjacency, so that
// traffic addressed to this interface itself is delivered locally.
// Unbinding removes both symmetrically. Either way, every registered
// AddDelInterfaceAddress callback fires once, followed by every
// registered AddDelRoute callback for each of the two routes, in
// registration order.
func (f *InterfaceFib) AddDelInterfaceAddress(swIfIndex uint32, addr [4]byte, prefixLen int, isAdd bool) error {
	key := boundAddressKey{swIfIndex: swIfIndex, addr: addr, prefixLen: prefixLen}
	a := netip.AddrFrom4(addr)

	if isAdd {
		if _, exists := f.bound[key]; exists {
			return fmt.Errorf("ip4: address %s/%d already bound to sw-interface %d", a, prefixLen, swIfIndex)
		}

		arpAdj := f.Heap.Add(fib.Adjacency{Kind: fib.KindArpDiscover, SwIfIndex: swIfIndex})
		if err := f.Table.AddRoute(a, prefixLen, arpAdj, fib.AddDelFlags{}); err != nil {
			return err
		}
		localAdj := f.Heap.Add(fib.Adjacency{Kind: fib.KindLocal, SwIfIndex: swIfIndex})
		if err := f.Table.AddRoute(a, 32, localAdj, fib.AddDelFlags{}); err != nil {
			f.Table.AddRoute(a, prefixLen, arpAdj, fib.AddDelFlags{Del: true})
			return err
		}
		f.bound[key] = boundAddress{arpAdj: arpAdj, localAdj: localAdj}
	} else {
		bound, exists := f.bound[key]
		if !exists {
			return fmt.Errorf("ip4: address %s/%d is not bound to sw-interface %d", a, prefixLen, swIfIndex)
		}
		if err := f.Table.AddRoute(a, prefixLen, bound.arpAdj, fib.AddDelFlags{Del: true}); err != nil {
			return err
		}
		if err := f.Table.AddRoute(a, 32, bound.localAdj, fib.AddDelFlags{Del: true}); err != nil {
			return err
		}
		delete(f.bound, key)
	}

	for _, cb := range f.Callbacks.AddDelInterfaceAddress {
		cb(swIfIndex, addr, prefixLen, isAdd)
	}
	routedPrefixLens := []int{prefixLen}
	if prefixLen != 32 {
		routedPrefixLens = append(routedPrefixLens, 32)
	}
	for _, cb := range f.Callbacks.AddDelRoute {
		for _, pl := range routedPrefixLens {
			cb(addr, pl, isAdd)
		}
	}
	return nil
}
