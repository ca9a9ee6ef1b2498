package pg

import "github.com/packetgraph/vnet/buffer"

// BufferFifo caches pre-primed buffers for one buffer-chain position
// of a stream: each cached buffer already holds the stream's fixed
// template, so per-packet work is limited to applying the non-fixed
// edits and each group's post-fixup.
type BufferFifo struct {
	alloc    func(count int) []buffer.Index
	get      func(buffer.Index) *buffer.Buffer
	template []byte

	primed []buffer.Index
}

// NewBufferFifo creates an empty fifo priming buffers with template.
// alloc and get are the owning free-list's Alloc/Get, passed as
// closures so pg never holds a free-list of its own.
func NewBufferFifo(alloc func(count int) []buffer.Index, get func(buffer.Index) *buffer.Buffer, template []byte) *BufferFifo {
	return &BufferFifo{alloc: alloc, get: get, template: append([]byte(nil), template...)}
}

// Refill allocates up to count fresh buffers, paints the template into
// each, and pushes them onto the fifo. It returns how many were
// actually primed; a short return means the free-list is exhausted and
// the caller should produce fewer packets this tick.
func (f *BufferFifo) Refill(count int) int {
	idxs := f.alloc(count)
	for _, idx := range idxs {
		b := f.get(idx)
		copy(b.Data()[int(b.CurrentData):], f.template)
		b.CurrentLength = uint16(len(f.template))
		b.Flags |= buffer.FlagLocallyGenerated
		f.primed = append(f.primed, idx)
	}
	return len(idxs)
}

// Get pops one primed buffer, refilling on demand. ok is false when
// the backing free-list cannot supply any more buffers.
func (f *BufferFifo) Get() (buffer.Index, bool) {
	if len(f.primed) == 0 {
		if f.Refill(defaultFifoRefill) == 0 {
			return 0, false
		}
	}
	idx := f.primed[len(f.primed)-1]
	f.primed = f.primed[:len(f.primed)-1]
	return idx, true
}

// Len reports how many primed buffers are waiting.
func (f *BufferFifo) Len() int { return len(f.primed) }

const defaultFifoRefill = 32
