package buffer

import (
	"fmt"
	"sync"
)

// DefaultSegmentSize is the stock segment size for interned free-lists.
const DefaultSegmentSize = 512

// DefaultHeadroom is reserved in every segment so protocol nodes can
// prepend headers (Ethernet + VLAN tags, MPLS labels) without a copy.
const DefaultHeadroom = 128

// DefaultListCapacity is the default number of segments per interned
// free-list.
const DefaultListCapacity = 1024

// Pool owns a set of free-lists and interns one per distinct rounded
// segment size.
type Pool struct {
	mu sync.Mutex

	listCapacity int
	byID         map[int]*FreeList
	idBySize     map[int]int
	nextID       int
}

// NewPool creates an empty buffer pool. listCapacity is the segment
// count used when a new free-list is interned on demand.
func NewPool(listCapacity int) *Pool {
	if listCapacity <= 0 {
		listCapacity = DefaultListCapacity
	}
	return &Pool{
		listCapacity: listCapacity,
		byID:         make(map[int]*FreeList),
		idBySize:     make(map[int]int),
	}
}

func roundUpPow2(size, min int) int {
	n := min
	for n < size {
		n <<= 1
	}
	return n
}

// FreeListForSize interns (creating if necessary) the free-list whose
// segment size is round_up(size+DefaultHeadroom, power_of_two) >=
// DefaultSegmentSize, so that size octets fit after the reserved
// headroom, and returns its id.
func (p *Pool) FreeListForSize(size int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rounded := roundUpPow2(size+DefaultHeadroom, DefaultSegmentSize)
	if id, ok := p.idBySize[rounded]; ok {
		return id, nil
	}

	id := p.nextID
	p.nextID++

	fl, err := NewFreeList(id, p.listCapacity, rounded, DefaultHeadroom, BackingHeap)
	if err != nil {
		return 0, fmt.Errorf("buffer: intern free-list for size %d: %w", size, err)
	}
	p.byID[id] = fl
	p.idBySize[rounded] = id
	return id, nil
}

// RegisterPhysical interns a free-list of the given size backed by
// mmap'd physical memory (DMA-capable), returning its id. Unlike
// FreeListForSize this is never deduplicated by size: a caller that
// needs a dedicated physical region (e.g. one per device ring) gets a
// fresh free-list every call.
func (p *Pool) RegisterPhysical(segmentSize, count int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++

	fl, err := NewFreeList(id, count, segmentSize, DefaultHeadroom, BackingPhysical)
	if err != nil {
		return 0, err
	}
	p.byID[id] = fl
	return id, nil
}

// List returns the free-list for an id, or an error if unknown.
func (p *Pool) List(id int) (*FreeList, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fl, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("buffer: no free-list with id %d", id)
	}
	return fl, nil
}

// Alloc is a convenience wrapper calling FreeList.Alloc on the named list.
func (p *Pool) Alloc(freeListID, count int) ([]Index, error) {
	fl, err := p.List(freeListID)
	if err != nil {
		return nil, err
	}
	return fl.Alloc(count), nil
}

// Free is a convenience wrapper calling FreeList.Free on the named list.
func (p *Pool) Free(freeListID int, indices []Index, followChain bool) error {
	fl, err := p.List(freeListID)
	if err != nil {
		return err
	}
	return fl.Free(indices, followChain)
}

// Close releases every free-list's backing memory.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, fl := range p.byID {
		if err := fl.Close(); err != nil {
			return err
		}
	}
	return nil
}
