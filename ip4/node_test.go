package ip4_test

import (
	"encoding/binary"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/buffer"
	"github.com/packetgraph/vnet/ethernet"
	"github.com/packetgraph/vnet/fib"
	"github.com/packetgraph/vnet/ip4"
	"github.com/packetgraph/vnet/vlib"
)

// wellFormedEthernetIP4Packet builds an Ethernet header (arbitrary
// dst/src, ethertype 0x0800) wrapping a well-formed IPv4 header
// (ihl=5, correct checksum) plus a payload.
func wellFormedEthernetIP4Packet(src, dst [4]byte, ttl, proto uint8, payloadLen int) []byte {
	eth := make([]byte, ethernet.HeaderLen)
	copy(eth[0:6], []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}) // placeholder dst, overwritten by rewrite
	copy(eth[6:12], []byte{0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C})
	binary.BigEndian.PutUint16(eth[12:14], ethernet.TypeIP4)

	ip := make([]byte, ip4.HeaderLen+payloadLen)
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], uint16(len(ip)))
	ip[8] = ttl
	ip[9] = proto
	copy(ip[12:16], src[:])
	copy(ip[16:20], dst[:])
	binary.BigEndian.PutUint16(ip[10:12], 0)
	binary.BigEndian.PutUint16(ip[10:12], ip4.Checksum(ip[:ip4.HeaderLen]))

	return append(eth, ip...)
}

// TestEthernetIP4ForwardPath exercises the forwarding pipeline
// end-to-end: ethernet-input -> ip4-input -> ip4-lookup -> ip4-rewrite
// -> tx, asserting the rewritten MACs/ethertype, the decremented TTL,
// and the incrementally-updated checksum.
func TestEthernetIP4ForwardPath(t *testing.T) {
	fl, err := buffer.NewFreeList(0, 8, 512, 64, buffer.BackingHeap)
	require.NoError(t, err)
	g := vlib.NewGraph()

	heap := fib.NewHeap()
	table := fib.NewTable(heap)
	rewriteBytes := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, // dst mac
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, // src mac
		0x08, 0x00, // ethertype
	}
	adjIdx := heap.Add(fib.Adjacency{Kind: fib.KindRewrite, Rewrite: rewriteBytes, MaxL3Bytes: 1500})
	dst := netip.MustParseAddr("10.0.0.0")
	require.NoError(t, table.AddRoute(dst, 24, adjIdx, fib.AddDelFlags{}))

	var txReceived []buffer.Index
	txIdx, err := g.RegisterNode(vlib.Descriptor{Name: "tx0", Kind: vlib.KindInternal})
	require.NoError(t, err)
	g.Node(txIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		txReceived = append(txReceived, frame.Buffers...)
		return len(frame.Buffers)
	}
	dropIdx, err := g.RegisterNode(vlib.Descriptor{Name: "error-drop", Kind: vlib.KindInternal})
	require.NoError(t, err)
	g.Node(dropIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		return len(frame.Buffers)
	}

	rewriteIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip4-rewrite", Kind: vlib.KindInternal})
	require.NoError(t, err)
	rewriteNode := g.Node(rewriteIdx)
	rwTxEdge := rewriteNode.AddNext(txIdx, "tx0")
	rwDropEdge := rewriteNode.AddNext(dropIdx, "error-drop")
	adjFor := func(resolved uint32) (*fib.Adjacency, error) { return heap.Get(fib.Index(resolved)) }
	rewriteNode.Function = ip4.RewriteNode(fl.Get, adjFor, rwTxEdge, rwDropEdge)

	lookupIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip4-lookup", Kind: vlib.KindInternal})
	require.NoError(t, err)
	lookupNode := g.Node(lookupIdx)
	lookupRewriteEdge := lookupNode.AddNext(rewriteIdx, "ip4-rewrite")
	lookupDropEdge := lookupNode.AddNext(dropIdx, "error-drop")
	lookupPuntEdge := lookupNode.AddNext(dropIdx, "punt")
	lookupLocalEdge := lookupNode.AddNext(dropIdx, "local")
	lookupArpEdge := lookupNode.AddNext(dropIdx, "arp")
	lookupNode.Function = ip4.LookupNode(fl.Get, table, heap, lookupRewriteEdge, lookupDropEdge, lookupPuntEdge, lookupLocalEdge, lookupArpEdge)

	inputIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip4-input", Kind: vlib.KindInternal, NumErrors: 5})
	require.NoError(t, err)
	inputNode := g.Node(inputIdx)
	inputLookupEdge := inputNode.AddNext(lookupIdx, "ip4-lookup")
	inputDropEdge := inputNode.AddNext(dropIdx, "error-drop")
	inputPuntEdge := inputNode.AddNext(dropIdx, "punt")
	inputNode.Function = ip4.InputNode(fl.Get, [4]byte{10, 0, 0, 3}, inputLookupEdge, inputDropEdge, inputPuntEdge)

	ethIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ethernet-input", Kind: vlib.KindInternal, NumErrors: 2})
	require.NoError(t, err)
	ethNode := g.Node(ethIdx)
	ethIP4Edge := ethNode.AddNext(inputIdx, "ip4-input")
	ethDropEdge := ethNode.AddNext(dropIdx, "error-drop")
	edgeFor := func(l3Type uint16) (vlib.EdgeIndex, bool) {
		if l3Type == ethernet.TypeIP4 {
			return ethIP4Edge, true
		}
		return 0, false
	}
	ethNode.Function = ethernet.InputNode(fl.Get, edgeFor, nil, ethDropEdge)

	idxs := fl.Alloc(1)
	require.Len(t, idxs, 1)
	buf := fl.Get(idxs[0])
	packet := wellFormedEthernetIP4Packet([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 3}, 64, 1, 16)
	copy(buf.Data()[int(buf.CurrentData):], packet)
	buf.CurrentLength = uint16(len(packet))

	loop := vlib.NewLoop(g, vlib.DefaultConfig())
	loop.InjectFrame(ethIdx, idxs)
	now := time.Now()
	for i := 0; i < 8; i++ {
		loop.RunOnce(now.Add(time.Duration(i) * time.Millisecond))
	}

	require.Equal(t, idxs, txReceived)

	out := buf.Bytes()
	assert.Equal(t, rewriteBytes, out[:len(rewriteBytes)])

	ipOut := out[ethernet.HeaderLen:]
	assert.EqualValues(t, 63, ipOut[8], "ttl must be decremented by one")
	assert.EqualValues(t, 0, ip4.Checksum(ipOut[:ip4.HeaderLen]), "checksum must still fold to zero after the ttl decrement")
}

// TestInputNodePuntsOptions: an IPv4 header with ihl=6 (options
// present) is punted, not dropped.
func TestInputNodePuntsOptions(t *testing.T) {
	fl, err := buffer.NewFreeList(0, 8, 512, 64, buffer.BackingHeap)
	require.NoError(t, err)
	g := vlib.NewGraph()

	var puntReceived, dropReceived []buffer.Index
	puntIdx, err := g.RegisterNode(vlib.Descriptor{Name: "punt", Kind: vlib.KindInternal})
	require.NoError(t, err)
	g.Node(puntIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		puntReceived = append(puntReceived, frame.Buffers...)
		return len(frame.Buffers)
	}
	dropIdx, err := g.RegisterNode(vlib.Descriptor{Name: "error-drop", Kind: vlib.KindInternal})
	require.NoError(t, err)
	g.Node(dropIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		dropReceived = append(dropReceived, frame.Buffers...)
		return len(frame.Buffers)
	}
	lookupIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip4-lookup", Kind: vlib.KindInternal})
	require.NoError(t, err)
	g.Node(lookupIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		return len(frame.Buffers)
	}

	inputIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip4-input", Kind: vlib.KindInternal, NumErrors: 5})
	require.NoError(t, err)
	inputNode := g.Node(inputIdx)
	lookupEdge := inputNode.AddNext(lookupIdx, "ip4-lookup")
	dropEdge := inputNode.AddNext(dropIdx, "error-drop")
	puntEdge := inputNode.AddNext(puntIdx, "punt")
	inputNode.Function = ip4.InputNode(fl.Get, [4]byte{10, 0, 0, 3}, lookupEdge, dropEdge, puntEdge)

	idxs := fl.Alloc(1)
	require.Len(t, idxs, 1)
	buf := fl.Get(idxs[0])
	packet := make([]byte, ip4.HeaderLen+4)
	packet[0] = 0x46 // version 4, ihl 6
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(packet)))
	packet[8] = 64
	copy(buf.Data()[int(buf.CurrentData):], packet)
	buf.CurrentLength = uint16(len(packet))

	loop := vlib.NewLoop(g, vlib.DefaultConfig())
	loop.InjectFrame(inputIdx, idxs)
	now := time.Now()
	loop.RunOnce(now)
	loop.RunOnce(now.Add(time.Millisecond)) // drains punt's pending queue

	assert.Equal(t, idxs, puntReceived)
	assert.Empty(t, dropReceived)
}

// TestInputNodeTimeExceeded: ttl=1 is turned into an ICMP
// time-exceeded reply sent back toward lookup rather than forwarded or
// silently dropped.
func TestInputNodeTimeExceeded(t *testing.T) {
	fl, err := buffer.NewFreeList(0, 8, 512, 64, buffer.BackingHeap)
	require.NoError(t, err)
	g := vlib.NewGraph()

	var lookupReceived []buffer.Index
	lookupIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip4-lookup", Kind: vlib.KindInternal})
	require.NoError(t, err)
	g.Node(lookupIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		lookupReceived = append(lookupReceived, frame.Buffers...)
		return len(frame.Buffers)
	}
	dropIdx, err := g.RegisterNode(vlib.Descriptor{Name: "error-drop", Kind: vlib.KindInternal})
	require.NoError(t, err)
	g.Node(dropIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		return len(frame.Buffers)
	}

	inputIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip4-input", Kind: vlib.KindInternal, NumErrors: 5})
	require.NoError(t, err)
	inputNode := g.Node(inputIdx)
	lookupEdge := inputNode.AddNext(lookupIdx, "ip4-lookup")
	dropEdge := inputNode.AddNext(dropIdx, "error-drop")
	puntEdge := inputNode.AddNext(dropIdx, "punt")
	inputNode.Function = ip4.InputNode(fl.Get, [4]byte{10, 0, 0, 3}, lookupEdge, dropEdge, puntEdge)

	idxs := fl.Alloc(1)
	require.Len(t, idxs, 1)
	buf := fl.Get(idxs[0])
	packet := wellFormedEthernetIP4Packet([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 3}, 1, 1, 16)[ethernet.HeaderLen:]
	copy(buf.Data()[int(buf.CurrentData):], packet)
	buf.CurrentLength = uint16(len(packet))

	loop := vlib.NewLoop(g, vlib.DefaultConfig())
	loop.InjectFrame(inputIdx, idxs)
	now := time.Now()
	loop.RunOnce(now)
	loop.RunOnce(now.Add(time.Millisecond)) // drains lookup's pending queue

	require.Equal(t, idxs, lookupReceived, "a ttl-expired packet is rewritten into an ICMP reply and still routed via lookup")
}
