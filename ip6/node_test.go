package ip6_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetgraph/vnet/buffer"
	"github.com/packetgraph/vnet/fib"
	"github.com/packetgraph/vnet/ip6"
	"github.com/packetgraph/vnet/vlib"
)

func TestInputNodeDecrementsHopLimitAndForwards(t *testing.T) {
	fl, err := buffer.NewFreeList(0, 8, 512, 64, buffer.BackingHeap)
	require.NoError(t, err)
	g := vlib.NewGraph()

	var lookupReceived []buffer.Index
	lookupIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip6-lookup", Kind: vlib.KindInternal})
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

	inputIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip6-input", Kind: vlib.KindInternal, NumErrors: 2})
	require.NoError(t, err)
	inputNode := g.Node(inputIdx)
	dropEdge := inputNode.AddNext(dropIdx, "error-drop")
	lookupEdge := inputNode.AddNext(lookupIdx, "ip6-lookup")
	inputNode.Function = ip6.InputNode(fl.Get, dropEdge, lookupEdge)

	idxs := fl.Alloc(1)
	require.Len(t, idxs, 1)
	buf := fl.Get(idxs[0])
	var src, dst [16]byte
	src[15], dst[15] = 2, 3
	packet := wellFormedPacket(src, dst, 64, 58, 16)
	copy(buf.Data()[int(buf.CurrentData):], packet)
	buf.CurrentLength = uint16(len(packet))

	loop := vlib.NewLoop(g, vlib.DefaultConfig())
	loop.InjectFrame(inputIdx, idxs)
	now := time.Now()
	loop.RunOnce(now)
	loop.RunOnce(now.Add(time.Millisecond)) // drains lookup's pending queue

	require.Equal(t, idxs, lookupReceived)
	assert.EqualValues(t, 63, buf.Bytes()[7])
}

func TestNeighborSolicitationNodeRepliesForLocalTarget(t *testing.T) {
	fl, err := buffer.NewFreeList(0, 8, 512, 64, buffer.BackingHeap)
	require.NoError(t, err)
	g := vlib.NewGraph()

	var replyReceived []buffer.Index
	replyIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip6-rewrite", Kind: vlib.KindInternal})
	require.NoError(t, err)
	g.Node(replyIdx).Function = func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		if frame == nil {
			return 0
		}
		replyReceived = append(replyReceived, frame.Buffers...)
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

	var target [16]byte
	target[15] = 9
	ourMAC := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	nsIdx, err := g.RegisterNode(vlib.Descriptor{Name: "icmp6-neighbor-solicitation", Kind: vlib.KindInternal, NumErrors: 3})
	require.NoError(t, err)
	nsNode := g.Node(nsIdx)
	dropEdge := nsNode.AddNext(dropIdx, "error-drop")
	replyEdge := nsNode.AddNext(replyIdx, "ip6-rewrite")
	isLocal := func(addr [16]byte) bool { return addr == target }
	hwAddrFor := func(buffer.Index) []byte { return ourMAC }
	nsNode.Function = ip6.NeighborSolicitationNode(fl.Get, isLocal, hwAddrFor, replyEdge, dropEdge)

	idxs := fl.Alloc(1)
	require.Len(t, idxs, 1)
	buf := fl.Get(idxs[0])

	var solicitor [16]byte
	solicitor[15] = 2
	icmp := neighborSolicitation(target, []byte{1, 2, 3, 4, 5, 6})
	packet := wellFormedPacket(solicitor, target, 255, 58, 0)
	packet = append(packet[:ip6.HeaderLen], icmp...)
	copy(buf.Data()[int(buf.CurrentData):], packet)
	buf.CurrentLength = uint16(len(packet))

	loop := vlib.NewLoop(g, vlib.DefaultConfig())
	loop.InjectFrame(nsIdx, idxs)
	now := time.Now()
	loop.RunOnce(now)
	loop.RunOnce(now.Add(time.Millisecond)) // drains the reply edge's pending queue

	require.Equal(t, idxs, replyReceived)

	replyData := buf.Bytes()
	replyHeader, err := ip6.Parse(replyData)
	require.NoError(t, err)
	assert.Equal(t, netip.AddrFrom16(target), replyHeader.Src)
	assert.Equal(t, netip.AddrFrom16(solicitor), replyHeader.Dst)
	assert.EqualValues(t, 255, replyHeader.HopLimit)

	icmpOut := replyData[ip6.HeaderLen:]
	assert.EqualValues(t, ip6.TypeNeighborAdvertisement, icmpOut[0])
}

func TestLookupAndRewriteNodesForwardToTx(t *testing.T) {
	fl, err := buffer.NewFreeList(0, 8, 512, 64, buffer.BackingHeap)
	require.NoError(t, err)
	g := vlib.NewGraph()

	heap := fib.NewHeap()
	table := fib.NewHashTable(heap, 128)
	rewriteBytes := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x86, 0xDD}
	adjIdx := heap.Add(fib.Adjacency{Kind: fib.KindRewrite, Rewrite: rewriteBytes, MaxL3Bytes: 1500})
	dst := netip.MustParseAddr("2001:db8::3")
	require.NoError(t, table.AddRoute(dst, 64, adjIdx, fib.AddDelFlags{}))

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

	rewriteIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip6-rewrite", Kind: vlib.KindInternal})
	require.NoError(t, err)
	rewriteNode := g.Node(rewriteIdx)
	txEdge := rewriteNode.AddNext(txIdx, "tx0")
	rwDropEdge := rewriteNode.AddNext(dropIdx, "error-drop")
	adjFor := func(resolved uint32) (*fib.Adjacency, error) { return heap.Get(fib.Index(resolved)) }
	rewriteNode.Function = ip6.RewriteNode(fl.Get, adjFor, txEdge, rwDropEdge)

	lookupIdx, err := g.RegisterNode(vlib.Descriptor{Name: "ip6-lookup", Kind: vlib.KindInternal})
	require.NoError(t, err)
	lookupNode := g.Node(lookupIdx)
	lookupRewriteEdge := lookupNode.AddNext(rewriteIdx, "ip6-rewrite")
	lookupDropEdge := lookupNode.AddNext(dropIdx, "error-drop")
	lookupLocalEdge := lookupNode.AddNext(dropIdx, "local") // unused in this test
	lookupArpEdge := lookupNode.AddNext(dropIdx, "arp")     // unused in this test
	lookupNode.Function = ip6.LookupNode(fl.Get, table, heap, lookupRewriteEdge, lookupDropEdge, lookupLocalEdge, lookupArpEdge)

	idxs := fl.Alloc(1)
	require.Len(t, idxs, 1)
	buf := fl.Get(idxs[0])
	var src [16]byte
	src[15] = 2
	packet := wellFormedPacket(src, dst.As16(), 63, 58, 16)
	copy(buf.Data()[int(buf.CurrentData):], packet)
	buf.CurrentLength = uint16(len(packet))

	loop := vlib.NewLoop(g, vlib.DefaultConfig())
	loop.InjectFrame(lookupIdx, idxs)
	now := time.Now()
	for i := 0; i < 6; i++ {
		loop.RunOnce(now.Add(time.Duration(i) * time.Millisecond))
	}

	require.Equal(t, idxs, txReceived)
	assert.Equal(t, rewriteBytes, buf.Bytes()[:len(rewriteBytes)])
}
