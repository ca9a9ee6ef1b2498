package buffer

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Backing selects how a free-list's slab memory is obtained.
type Backing int

const (
	// BackingHeap allocates an ordinary Go byte slice.
	BackingHeap Backing = iota
	// BackingPhysical mmaps an anonymous region, the portable stand-in
	// for a DMA-capable physical-memory region: a real device-class
	// implementation would hand this region's address to hardware
	// descriptors instead of copying into it.
	BackingPhysical
)

// FreeList is a typed pool of reusable, fixed-size buffer segments.
type FreeList struct {
	mu sync.Mutex

	id          int
	segmentSize int
	headroom    int
	backing     Backing

	slab  []byte
	unmap func() error
	bufs  []Buffer
	free  []Index // stack of indices currently available
	inUse map[Index]bool
}

// NewFreeList creates a free-list of n segments, each segmentSize bytes,
// with headroom bytes of left-headroom reserved in each segment.
func NewFreeList(id, n, segmentSize, headroom int, backing Backing) (*FreeList, error) {
	if headroom < 0 || headroom >= segmentSize {
		return nil, fmt.Errorf("buffer: invalid headroom %d for segment size %d", headroom, segmentSize)
	}

	fl := &FreeList{
		id:          id,
		segmentSize: segmentSize,
		headroom:    headroom,
		backing:     backing,
		bufs:        make([]Buffer, n),
		free:        make([]Index, 0, n),
		inUse:       make(map[Index]bool, n),
	}

	total := n * segmentSize
	switch backing {
	case BackingPhysical:
		region, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return nil, fmt.Errorf("buffer: mmap physical region: %w", err)
		}
		fl.slab = region
		fl.unmap = func() error { return unix.Munmap(region) }
	default:
		fl.slab = make([]byte, total)
	}

	for i := 0; i < n; i++ {
		fl.bufs[i].data = fl.slab[i*segmentSize : (i+1)*segmentSize]
		fl.bufs[i].reset(headroom)
		// Index 0 is reserved so the zero value of Index never aliases
		// a live buffer; the free-list's own indices start at 1.
		fl.free = append(fl.free, Index(i+1))
	}

	return fl, nil
}

// ID is the small integer identifying this free-list.
func (fl *FreeList) ID() int { return fl.id }

// SegmentSize is the fixed segment size backing this free-list.
func (fl *FreeList) SegmentSize() int { return fl.segmentSize }

// Close releases any mmap'd backing. Safe to call on heap-backed lists.
func (fl *FreeList) Close() error {
	if fl.unmap != nil {
		return fl.unmap()
	}
	return nil
}

func (fl *FreeList) bufAt(idx Index) *Buffer {
	return &fl.bufs[int(idx)-1]
}

// Alloc returns up to count fresh buffer indices. A short read (fewer
// than count) is legal; the caller must check len(result) and retry or
// back off.
func (fl *FreeList) Alloc(count int) []Index {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	n := count
	if n > len(fl.free) {
		n = len(fl.free)
	}
	out := make([]Index, n)
	for i := 0; i < n; i++ {
		last := len(fl.free) - 1
		idx := fl.free[last]
		fl.free = fl.free[:last]
		fl.inUse[idx] = true
		fl.bufAt(idx).reset(fl.headroom)
		out[i] = idx
	}
	return out
}

// Get returns the Buffer for a live index.
func (fl *FreeList) Get(idx Index) *Buffer {
	return fl.bufAt(idx)
}

// Free returns indices to the free-list. When followChain is set, each
// head index's NextBuffer chain is walked and every segment in the
// chain is released.
func (fl *FreeList) Free(indices []Index, followChain bool) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	for _, idx := range indices {
		if err := fl.freeOneLocked(idx); err != nil {
			return err
		}
		if followChain {
			b := fl.bufAt(idx)
			for b.Flags.Has(FlagNextPresent) {
				next := b.NextBuffer
				if err := fl.freeOneLocked(next); err != nil {
					return err
				}
				b = fl.bufAt(next)
			}
		}
	}
	return nil
}

func (fl *FreeList) freeOneLocked(idx Index) error {
	if !fl.inUse[idx] {
		return fmt.Errorf("buffer: double free of index %d on free-list %d", idx, fl.id)
	}
	delete(fl.inUse, idx)
	fl.free = append(fl.free, idx)
	return nil
}

// LengthInChain returns the total live payload length across the chain
// rooted at head.
func (fl *FreeList) LengthInChain(head Index) int {
	total := 0
	b := fl.bufAt(head)
	for {
		total += int(b.CurrentLength)
		if !b.Flags.Has(FlagNextPresent) {
			break
		}
		b = fl.bufAt(b.NextBuffer)
	}
	return total
}

// Contents copies the logical payload of the chain rooted at head into
// out, returning the number of bytes written. out must be at least
// LengthInChain(head) bytes.
func (fl *FreeList) Contents(head Index, out []byte) int {
	n := 0
	b := fl.bufAt(head)
	for {
		n += copy(out[n:], b.Bytes())
		if !b.Flags.Has(FlagNextPresent) {
			break
		}
		b = fl.bufAt(b.NextBuffer)
	}
	return n
}
