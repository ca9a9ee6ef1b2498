package pg

import (
	"github.com/packetgraph/vnet/buffer"
	"github.com/packetgraph/vnet/vlib"
)

// InputNode builds the pg-input node function for one stream: on each
// dispatch it asks the stream how many packets this tick owes
// (rate-shaped), renders them, copies each into a pre-primed buffer
// from the stream's fifo, and enqueues the buffer on the stream's
// configured next edge. clock supplies the loop's notion of now in
// seconds; the node keeps the previous reading so the stream only ever
// sees elapsed time.
//
// Allocation under-fulfillment is not an error: when the fifo's
// free-list runs dry mid-tick the remaining packets of the tick are
// simply not produced, and the stream's generated count is rolled back
// so the shortfall is retried next dispatch.
func InputNode(s *Stream, alloc func(count int) []buffer.Index, get func(buffer.Index) *buffer.Buffer, clock func() float64) vlib.NodeFunc {
	fifo := NewBufferFifo(alloc, get, s.FixedTemplate())
	var lastTime float64
	started := false

	return func(rt *vlib.NodeRuntime, frame *vlib.Frame) int {
		now := clock()
		elapsed := 0.0
		if started {
			elapsed = now - lastTime
		}
		lastTime = now
		started = true

		packets, err := s.Tick(elapsed)
		if err != nil {
			return 0
		}

		produced := 0
		for _, pkt := range packets {
			idx, ok := fifo.Get()
			if !ok {
				break
			}
			b := get(idx)
			copy(b.Data()[int(b.CurrentData):], pkt)
			b.CurrentLength = uint16(len(pkt))
			rt.Enqueue(vlib.EdgeIndex(s.NextEdge), idx)
			produced++
		}

		if short := len(packets) - produced; short > 0 {
			s.NPacketsGenerated -= uint64(short)
			if s.NPacketsLimit != 0 && s.NPacketsGenerated < s.NPacketsLimit {
				s.Enabled = true // Tick may have auto-disabled on the rolled-back count
			}
		}
		return produced
	}
}
