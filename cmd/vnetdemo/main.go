// Command vnetdemo wires a complete graph end-to-end — pg generator ->
// ethernet-input -> ip4-input -> ip4-lookup -> ip4-rewrite -> the
// interface's tx node — and runs it for a handful of iterations.
package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"net/netip"
	"time"

	"github.com/packetgraph/vnet/buffer"
	"github.com/packetgraph/vnet/device"
	"github.com/packetgraph/vnet/ethernet"
	"github.com/packetgraph/vnet/fib"
	"github.com/packetgraph/vnet/ip4"
	"github.com/packetgraph/vnet/pg"
	"github.com/packetgraph/vnet/vlib"
	"github.com/packetgraph/vnet/vnet"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	fl, err := buffer.NewFreeList(0, 64, 512, 64, buffer.BackingHeap)
	if err != nil {
		return fmt.Errorf("vnetdemo: free list: %w", err)
	}

	g := vlib.NewGraph()

	dropIdx, _ := g.RegisterNode(vlib.Descriptor{Name: "error-drop", Kind: vlib.KindInternal})
	g.Node(dropIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		fmt.Printf("error-drop: dropped %d packets\n", len(frame.Buffers))
		return len(frame.Buffers)
	}

	mgr := vnet.NewManager()
	loop := device.NewLoopbackClass()
	deviceClassIdx := mgr.RegisterDeviceClass(loop)
	hwClassIdx := mgr.RegisterHwClass(device.EthernetHwClass{})

	// The interface layer drives the graph through these hooks: a new
	// hw-interface gets its output/tx node pair registered here, and a
	// deleted one gets its tx node quiesced so in-flight frames drain
	// to error-drop.
	mgr.Graph = vnet.GraphHooks{
		RegisterOutputTxNodes: func(hwName string) (uint32, uint32, error) {
			txIdx, err := g.RegisterNode(vlib.Descriptor{Name: hwName + "-tx", Kind: vlib.KindInternal})
			if err != nil {
				return 0, 0, err
			}
			g.Node(txIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
				if frame == nil {
					return 0
				}
				bufs := make([]uint32, len(frame.Buffers))
				for i, idx := range frame.Buffers {
					bufs[i] = uint32(idx)
				}
				hw, err := mgr.HwInterfaceByName(hwName)
				if err != nil {
					return 0
				}
				n, err := loop.TxFunction(hw, bufs)
				if err != nil {
					log.Printf("vnetdemo: tx: %v", err)
				}
				fmt.Printf("%s-tx: transmitted %d packets\n", hwName, n)
				return len(frame.Buffers)
			}

			outIdx, err := g.RegisterNode(vlib.Descriptor{Name: hwName + "-output", Kind: vlib.KindInternal})
			if err != nil {
				return 0, 0, err
			}
			outNode := g.Node(outIdx)
			txEdge := outNode.AddNext(txIdx, hwName+"-tx")
			outNode.Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
				if frame == nil {
					return 0
				}
				for _, idx := range frame.Buffers {
					rt.Enqueue(txEdge, idx)
				}
				return frame.NVectors
			}
			return uint32(outIdx), uint32(txIdx), nil
		},
		ReserveNodeName: g.ReserveName,
		QuiesceTxNode: func(txNode uint32) {
			g.Node(vlib.NodeIndex(txNode)).IsDeleted = true
		},
	}

	hwIdx, err := mgr.RegisterInterface(deviceClassIdx, 0, hwClassIdx, 0, []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})
	if err != nil {
		return fmt.Errorf("vnetdemo: register interface: %w", err)
	}
	if err := mgr.SetHwInterfaceFlags(hwIdx, vnet.HwFlagLinkUp); err != nil {
		return err
	}
	loop0, err := mgr.HwInterface(hwIdx)
	if err != nil {
		return err
	}

	heap := fib.NewHeap()
	table := fib.NewTable(heap)
	adjIdx := heap.Add(fib.Adjacency{
		Kind:       fib.KindRewrite,
		Rewrite:    append([]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, 0x08, 0x00),
		MaxL3Bytes: 1500,
	})
	dst := netip.MustParseAddr("10.0.0.0")
	if err := table.AddRoute(dst, 24, adjIdx, fib.AddDelFlags{}); err != nil {
		return err
	}

	// Binding loop0's own address installs the paired arp-discover/local
	// routes, on a subnet distinct from the forwarding route above so
	// the two don't collide in the trie.
	ifib := ip4.NewInterfaceFib(table, heap)
	ifib.Callbacks.AddDelInterfaceAddress = append(ifib.Callbacks.AddDelInterfaceAddress,
		func(swIfIndex uint32, addr [4]byte, prefixLen int, isAdd bool) {
			fmt.Printf("ip4-interface-address: sw_if_index=%d addr=%v/%d add=%v\n", swIfIndex, addr, prefixLen, isAdd)
		})
	if err := ifib.AddDelInterfaceAddress(uint32(loop0.SwIfIndex), [4]byte{10, 0, 1, 1}, 24, true); err != nil {
		return err
	}

	rewriteIdx, _ := g.RegisterNode(vlib.Descriptor{Name: "ip4-rewrite", Kind: vlib.KindInternal})
	rewriteNode := g.Node(rewriteIdx)
	rwTxEdge := rewriteNode.AddNext(vlib.NodeIndex(loop0.OutputNodeIndex), "loop0-output")
	rwDropEdge := rewriteNode.AddNext(dropIdx, "error-drop")
	adjFor := func(adjIndex uint32) (*fib.Adjacency, error) { return heap.Get(fib.Index(adjIndex)) }
	rewriteNode.Function = ip4.RewriteNode(fl.Get, adjFor, rwTxEdge, rwDropEdge)

	lookupIdx, _ := g.RegisterNode(vlib.Descriptor{Name: "ip4-lookup", Kind: vlib.KindInternal})
	lookupNode := g.Node(lookupIdx)
	lookupRewriteEdge := lookupNode.AddNext(rewriteIdx, "ip4-rewrite")
	lookupDropEdge := lookupNode.AddNext(dropIdx, "error-drop")
	lookupPuntEdge := lookupNode.AddNext(dropIdx, "punt")
	lookupLocalEdge := lookupNode.AddNext(dropIdx, "local")
	lookupArpEdge := lookupNode.AddNext(dropIdx, "arp")
	lookupNode.Function = ip4.LookupNode(fl.Get, table, heap, lookupRewriteEdge, lookupDropEdge, lookupPuntEdge, lookupLocalEdge, lookupArpEdge)

	inputIdx, _ := g.RegisterNode(vlib.Descriptor{Name: "ip4-input", Kind: vlib.KindInternal, NumErrors: 5})
	inputNode := g.Node(inputIdx)
	inputLookupEdge := inputNode.AddNext(lookupIdx, "ip4-lookup")
	inputDropEdge := inputNode.AddNext(dropIdx, "error-drop")
	inputPuntEdge := inputNode.AddNext(dropIdx, "punt")
	inputNode.Function = ip4.InputNode(fl.Get, [4]byte{10, 0, 0, 3}, inputLookupEdge, inputDropEdge, inputPuntEdge)

	ethIdx, _ := g.RegisterNode(vlib.Descriptor{Name: "ethernet-input", Kind: vlib.KindInternal, NumErrors: 2})
	ethNode := g.Node(ethIdx)
	ethIP4Edge := ethNode.AddNext(inputIdx, "ip4-input")
	ethDropEdge := ethNode.AddNext(dropIdx, "error-drop")
	edgeFor := func(l3Type uint16) (vlib.EdgeIndex, bool) {
		if l3Type == ethernet.TypeIP4 {
			return ethIP4Edge, true
		}
		return 0, false
	}
	subIfFor := func(rxSwIfIndex uint32, vlanID uint16) (uint32, bool) {
		hw, err := mgr.HwInterface(hwIdx)
		if err != nil {
			return 0, false
		}
		sw, ok := hw.SubInterfaceByID(uint32(vlanID))
		return uint32(sw), ok
	}
	ethNode.Function = ethernet.InputNode(fl.Get, edgeFor, subIfFor, ethDropEdge)

	stream := pg.NewStream("eth-increment", uint32(ethIdx), 0, 1)
	stream.NPacketsLimit = 5
	stream.RatePacketsPerSecond = 0 // unrated: drain everything in one tick
	stream.EditGroups = []*pg.EditGroup{
		ethernetEditGroup(),
		ip4EditGroup(),
	}
	if err := stream.Enable(); err != nil {
		return fmt.Errorf("vnetdemo: enable stream: %w", err)
	}

	start := time.Now()
	pgIdx, _ := g.RegisterNode(vlib.Descriptor{
		Name:     "pg-input",
		Kind:     vlib.KindInput,
		Function: pg.InputNode(stream, fl.Alloc, fl.Get, func() float64 { return time.Since(start).Seconds() }),
	})
	g.Node(pgIdx).AddNext(ethIdx, "ethernet-input")

	l := vlib.NewLoop(g, vlib.DefaultConfig())
	l.SetErrorDropNode(dropIdx)
	now := time.Now()
	// pg-input produces all 5 packets on the first tick (unrated); each
	// downstream hop (ethernet-input -> ip4-input -> ip4-lookup ->
	// ip4-rewrite -> loop0-output -> loop0-tx) only drains one stage
	// further per iteration when the stage's node index is lower than
	// its producer's, so enough iterations must run to walk the chain.
	for i := 0; i < 8; i++ {
		l.RunOnce(now.Add(time.Duration(i) * time.Millisecond))
	}
	fmt.Printf("pg stream generated %d packets total\n", stream.NPacketsGenerated)
	return nil
}

// ethernetEditGroup builds the stream's 14-byte Ethernet header: a
// fixed src mac, an incrementing dst mac
// 00:00:00:00:00:00 -> 00:00:00:00:00:04, ethertype 0x0800.
func ethernetEditGroup() *pg.EditGroup {
	fixed := make([]byte, ethernet.HeaderLen)
	copy(fixed[6:12], []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x00})
	binary.BigEndian.PutUint16(fixed[12:14], ethernet.TypeIP4)
	return &pg.EditGroup{
		Name:  "ethernet",
		Fixed: fixed,
		Edits: []pg.Edit{
			{Kind: pg.EditIncrement, ByteOffset: 0, Low: []byte{0, 0, 0, 0, 0, 0}, High: []byte{0, 0, 0, 0, 0, 4}},
		},
	}
}

// ip4EditGroup builds a fixed 20-byte + 64-byte-payload IPv4 header
// addressed into the 10.0.0.0/24 route registered above, with a
// checksum fixup run after every edit.
func ip4EditGroup() *pg.EditGroup {
	fixed := make([]byte, ip4.HeaderLen+64)
	fixed[0] = 0x45
	binary.BigEndian.PutUint16(fixed[2:4], uint16(len(fixed)))
	fixed[8] = 64
	fixed[9] = 17 // UDP
	copy(fixed[12:16], []byte{10, 0, 0, 2})
	copy(fixed[16:20], []byte{10, 0, 0, 3})
	return &pg.EditGroup{
		Name:  "ip4",
		Fixed: fixed,
		Fixup: func(data []byte) {
			binary.BigEndian.PutUint16(data[10:12], 0)
			binary.BigEndian.PutUint16(data[10:12], ip4.Checksum(data[:ip4.HeaderLen]))
		},
	}
}
