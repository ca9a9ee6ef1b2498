package ip6

import (
	"fmt"
	"net/netip"

	"github.com/packetgraph/vnet/fib"
)

// InterfaceCallbacks are the two IPv6 control-plane notification
// registries — interface-address add/del and route add/del — the IPv6
// analog of ip4.InterfaceCallbacks.
type InterfaceCallbacks struct {
	AddDelInterfaceAddress []func(swIfIndex uint32, addr [16]byte, prefixLen int, isAdd bool)
	AddDelRoute            []func(addr [16]byte, prefixLen int, isAdd bool)
}

type boundAddressKey struct {
	swIfIndex uint32
	addr      [16]byte
	prefixLen int
}

type boundAddress struct {
	arpAdj   fib.Index
	localAdj fib.Index
}

// InterfaceFib binds interface addresses to routes, the IPv6 analog of
// ip4.InterfaceFib, over fib.HashTable rather than fib.Table (the
// per-length hash variant is what ip6-lookup already uses).
type InterfaceFib struct {
	Table     *fib.HashTable
	Heap      *fib.Heap
	Callbacks InterfaceCallbacks

	bound map[boundAddressKey]boundAddress
}

// NewInterfaceFib creates an InterfaceFib over an existing
// hash-table/heap pair (the same ones LookupNode and RewriteNode
// consult).
func NewInterfaceFib(table *fib.HashTable, heap *fib.Heap) *InterfaceFib {
	return &InterfaceFib{Table: table, Heap: heap, bound: make(map[boundAddressKey]boundAddress)}
}

// AddDelInterfaceAddress binds (isAdd true) or unbinds (isAdd false)
// addr/prefixLen to swIfIndex, installing (or removing) the prefix
// route to a fib.KindArpDiscover adjacency and the /128 host route to a
// fib.KindLocal adjacency, exactly as ip4.InterfaceFib.AddDelInterfaceAddress
// does for IPv4. Every registered AddDelInterfaceAddress callback fires
// once, followed by every registered AddDelRoute callback for each of
// the two routes.
func (f *InterfaceFib) AddDelInterfaceAddress(swIfIndex uint32, addr [16]byte, prefixLen int, isAdd bool) error {
	key := boundAddressKey{swIfIndex: swIfIndex, addr: addr, prefixLen: prefixLen}
	a := netip.AddrFrom16(addr)

	if isAdd {
		if _, exists := f.bound[key]; exists {
			return fmt.Errorf("ip6: address %s/%d already bound to sw-interface %d", a, prefixLen, swIfIndex)
		}

		arpAdj := f.Heap.Add(fib.Adjacency{Kind: fib.KindArpDiscover, SwIfIndex: swIfIndex})
		if err := f.Table.AddRoute(a, prefixLen, arpAdj, fib.AddDelFlags{}); err != nil {
			return err
		}
		localAdj := f.Heap.Add(fib.Adjacency{Kind: fib.KindLocal, SwIfIndex: swIfIndex})
		if err := f.Table.AddRoute(a, 128, localAdj, fib.AddDelFlags{}); err != nil {
			f.Table.AddRoute(a, prefixLen, arpAdj, fib.AddDelFlags{Del: true})
			return err
		}
		f.bound[key] = boundAddress{arpAdj: arpAdj, localAdj: localAdj}
	} else {
		bound, exists := f.bound[key]
		if !exists {
			return fmt.Errorf("ip6: address %s/%d is not bound to sw-interface %d", a, prefixLen, swIfIndex)
		}
		if err := f.Table.AddRoute(a, prefixLen, bound.arpAdj, fib.AddDelFlags{Del: true}); err != nil {
			return err
		}
		if err := f.Table.AddRoute(a, 128, bound.localAdj, fib.AddDelFlags{Del: true}); err != nil {
			return err
		}
		delete(f.bound, key)
	}

	for _, cb := range f.Callbacks.AddDelInterfaceAddress {
		cb(swIfIndex, addr, prefixLen, isAdd)
	}
	routedPrefixLens := []int{prefixLen}
	if prefixLen != 128 {
		routedPrefixLens = append(routedPrefixLens, 128)
	}
	for _, cb := range f.Callbacks.AddDelRoute {
		for _, pl := range routedPrefixLens {
			cb(addr, pl, isAdd)
		}
	}
	return nil
}
