package fib

import (
	"fmt"
	"math"
)

// DefaultWeightErrorTolerance is the stock acceptance bound for
// multipath weight-normalization error.
const DefaultWeightErrorTolerance = 0.01

// NextHop is one weighted member of a multipath group, addressing an
// already-resolved rewrite adjacency.
type NextHop struct {
	Adj    Index
	Weight uint32
}

// Multipath builds and rebuilds the normalized, contiguous,
// power-of-two-sized adjacency blocks that back weighted-ECMP
// forwarding.
type Multipath struct {
	heap      *Heap
	tolerance float64

	// groups records, per top-level multipath adjacency, the weighted
	// hop list it was built from and the per-hop slot allocation, so
	// AddDelNextHop can rebuild and release blocks without
	// reverse-engineering them out of the heap.
	groups map[Index]*multipathGroup
}

type multipathGroup struct {
	hops       []NextHop
	slotCounts []int
	first      Index
	log2n      uint8
}

// NewMultipath creates a multipath builder over heap using tolerance
// as the acceptance bound for weight-normalization error.
// tolerance <= 0 uses DefaultWeightErrorTolerance.
func NewMultipath(heap *Heap, tolerance float64) *Multipath {
	if tolerance <= 0 {
		tolerance = DefaultWeightErrorTolerance
	}
	return &Multipath{heap: heap, tolerance: tolerance, groups: make(map[Index]*multipathGroup)}
}

func nextPow2(n int) uint8 {
	if n <= 1 {
		return 0
	}
	log2 := uint8(0)
	for (1 << log2) < n {
		log2++
	}
	return log2
}

// normalize computes, for block size 2^log2n, the integer slot count
// per next-hop that best approximates weight_i / sum(weights), largest
// remainder method (minimizes total rounding error, deterministic).
func normalize(hops []NextHop, log2n uint8) []int {
	n := 1 << log2n
	var total uint64
	for _, h := range hops {
		total += uint64(h.Weight)
	}
	slots := make([]int, len(hops))
	type remainder struct {
		idx int
		rem float64
	}
	var rems []remainder
	assigned := 0
	for i, h := range hops {
		exact := float64(h.Weight) / float64(total) * float64(n)
		slots[i] = int(math.Floor(exact))
		assigned += slots[i]
		rems = append(rems, remainder{idx: i, rem: exact - math.Floor(exact)})
	}
	leftover := n - assigned
	// Largest-remainder method: hand out the remaining slots to the
	// hops whose fractional part was closest to rounding up.
	for leftover > 0 {
		best := -1
		bestRem := -1.0
		for _, r := range rems {
			if r.rem > bestRem {
				bestRem = r.rem
				best = r.idx
			}
		}
		slots[best]++
		for i := range rems {
			if rems[i].idx == best {
				rems[i].rem = -2 // consumed, never picked again this pass
				break
			}
		}
		leftover--
	}
	return slots
}

func maxWeightError(hops []NextHop, slots []int, n int) float64 {
	var total uint64
	for _, h := range hops {
		total += uint64(h.Weight)
	}
	worst := 0.0
	for i, h := range hops {
		want := float64(h.Weight) / float64(total)
		got := float64(slots[i]) / float64(n)
		if e := math.Abs(want - got); e > worst {
			worst = e
		}
	}
	return worst
}

// Build constructs a new contiguous block of rewrite adjacencies sized
// to the next power of two >= sum(weights), with each next-hop's
// resolved rewrite occupying slots proportional to its weight, then
// wraps the block in one top-level multipath adjacency. It returns the
// top-level adjacency's index, or an error if the best achievable
// normalization exceeds the configured tolerance.
// Each hop's underlying rewrite adjacency must already be resolved in
// the heap; Build copies its rewrite fields into every slot it wins
// and refs it once per slot so a later Unref of a slot can't outlive
// the shared rewrite data.
func (m *Multipath) Build(hops []NextHop) (Index, error) {
	var total uint64
	for _, h := range hops {
		total += uint64(h.Weight)
	}
	if total == 0 {
		return MissIndex, fmt.Errorf("fib: multipath requires at least one weighted next hop")
	}

	log2n := nextPow2(int(total))
	slots := normalize(hops, log2n)
	if e := maxWeightError(hops, slots, 1<<log2n); e > m.tolerance {
		return MissIndex, fmt.Errorf("fib: multipath weight error %.4f exceeds tolerance %.4f", e, m.tolerance)
	}

	first := m.heap.AddBlock(log2n)
	slot := 0
	for i, h := range hops {
		src, err := m.heap.Get(h.Adj)
		if err != nil {
			return MissIndex, err
		}
		for s := 0; s < slots[i]; s++ {
			dst, _ := m.heap.Get(first + Index(slot))
			*dst = Adjacency{
				Kind:          KindRewrite,
				SwIfIndex:     src.SwIfIndex,
				L3Type:        src.L3Type,
				MaxL3Bytes:    src.MaxL3Bytes,
				Rewrite:       src.Rewrite,
				CountersIndex: src.CountersIndex,
				refcount:      1,
			}
			m.heap.Ref(h.Adj)
			slot++
		}
	}

	top := m.heap.Add(Adjacency{Kind: KindMultipath, FirstAdjIndex: first, Log2Count: log2n})
	m.groups[top] = &multipathGroup{
		hops:       cloneHops(hops),
		slotCounts: slots,
		first:      first,
		log2n:      log2n,
	}
	return top, nil
}

func cloneHops(hops []NextHop) []NextHop {
	out := make([]NextHop, len(hops))
	copy(out, hops)
	return out
}

// free releases a previously-built group: every slot in its block, the
// per-slot refs Build took on each hop's underlying adjacency, and the
// top-level multipath adjacency itself.
func (m *Multipath) free(top Index) error {
	g, ok := m.groups[top]
	if !ok {
		return fmt.Errorf("fib: adjacency %d is not a multipath group", top)
	}
	for s := 0; s < 1<<g.log2n; s++ {
		m.heap.Unref(g.first + Index(s))
	}
	for i, h := range g.hops {
		for s := 0; s < g.slotCounts[i]; s++ {
			m.heap.Unref(h.Adj)
		}
	}
	m.heap.Unref(top)
	delete(m.groups, top)
	return nil
}

// AddDelNextHop atomically edits a multipath group: starting from the
// group behind oldTop (or from nothing when oldTop is MissIndex), add
// weight to nextHop or delete it, rebuild a fresh normalized block,
// release the old one, and return the new top-level adjacency index.
// Deleting the last hop returns MissIndex. Callers holding FIB entries
// on oldTop are expected to Remap(oldTop, newTop) on their tables so
// stale entries heal lazily.
func (m *Multipath) AddDelNextHop(oldTop Index, nextHop Index, weight uint32, isDel bool) (Index, error) {
	var hops []NextHop
	if oldTop != MissIndex {
		g, ok := m.groups[oldTop]
		if !ok {
			return MissIndex, fmt.Errorf("fib: adjacency %d is not a multipath group", oldTop)
		}
		hops = cloneHops(g.hops)
	}

	pos := -1
	for i, h := range hops {
		if h.Adj == nextHop {
			pos = i
			break
		}
	}

	if isDel {
		if pos < 0 {
			return MissIndex, fmt.Errorf("fib: next hop %d not in multipath group %d", nextHop, oldTop)
		}
		hops = append(hops[:pos], hops[pos+1:]...)
	} else if pos >= 0 {
		hops[pos].Weight += weight
	} else {
		hops = append(hops, NextHop{Adj: nextHop, Weight: weight})
	}

	var newTop Index = MissIndex
	if len(hops) > 0 {
		var err error
		newTop, err = m.Build(hops)
		if err != nil {
			return MissIndex, err
		}
	}

	if oldTop != MissIndex {
		if err := m.free(oldTop); err != nil {
			return MissIndex, err
		}
	}
	return newTop, nil
}

// SelectSlot picks the slot within a multipath block of size 2^log2n
// for flowHash: first + (flowHash mod 2^log2n).
func SelectSlot(first Index, log2n uint8, flowHash uint32) Index {
	mask := uint32(1)<<log2n - 1
	return first + Index(flowHash&mask)
}
