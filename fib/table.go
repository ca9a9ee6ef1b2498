package fib

import (
	"fmt"
	"net/netip"

	"github.com/gaissmai/bart"
)

// AddDelFlags qualify a route add/delete.
type AddDelFlags struct {
	Del              bool
	KeepOldAdjacency bool
	NoRedistribute   bool
	NotLastInGroup   bool
	Neighbor         bool
}

// Table is the fast FIB variant: a multibit trie over the destination
// address, backed by github.com/gaissmai/bart's compressed Table[V].
// Lookup is longest-prefix-match from the widest prefix down to 0,
// returning the miss adjacency when nothing matches.
type Table struct {
	heap  *Heap
	remap *remapTable
	trie  *bart.Table[Index]
}

// NewTable creates an empty fast-variant FIB over heap.
func NewTable(heap *Heap) *Table {
	return &Table{heap: heap, remap: newRemapTable(), trie: new(bart.Table[Index])}
}

// AddRoute installs (or, with flags.Del, removes) dst/prefixLen ->
// adjIndex. The fast variant inserts directly into the compressed
// trie; bart.Table already preserves any more-specific existing prefix
// (Insert replaces only the exact prefix/len pair).
func (t *Table) AddRoute(dst netip.Addr, prefixLen int, adjIndex Index, flags AddDelFlags) error {
	pfx, err := dst.Prefix(prefixLen)
	if err != nil {
		return fmt.Errorf("fib: invalid prefix %s/%d: %w", dst, prefixLen, err)
	}
	if flags.Del {
		t.trie.Delete(pfx)
		if !flags.KeepOldAdjacency {
			t.heap.Unref(adjIndex)
		}
		return nil
	}
	t.trie.Insert(pfx, adjIndex)
	t.heap.Ref(adjIndex)
	return nil
}

// Lookup performs longest-prefix-match on dst, returning the
// (possibly remapped) adjacency index, or MissIndex if nothing
// matches.
func (t *Table) Lookup(dst netip.Addr) Index {
	idx, ok := t.trie.Lookup(dst)
	if !ok {
		return MissIndex
	}
	return t.remap.resolve(idx)
}

// Remap records an old->new adjacency substitution effective for
// future lookups through this table.
func (t *Table) Remap(old, new Index) { t.heap.Remap(t.remap, old, new) }

// HashTable is the simple FIB variant: one map[netip.Prefix]Index per
// prefix length. Lookup walks prefix lengths from widest to 0.
type HashTable struct {
	heap   *Heap
	remap  *remapTable
	maxLen int
	byLen  []map[netip.Prefix]Index
}

// NewHashTable creates an empty simple-variant FIB over heap. maxLen
// is 32 for IPv4 tables, 128 for IPv6.
func NewHashTable(heap *Heap, maxLen int) *HashTable {
	ht := &HashTable{heap: heap, remap: newRemapTable(), maxLen: maxLen, byLen: make([]map[netip.Prefix]Index, maxLen+1)}
	for i := range ht.byLen {
		ht.byLen[i] = make(map[netip.Prefix]Index)
	}
	return ht
}

// AddRoute installs dst/prefixLen -> adjIndex into the per-length map
// for prefixLen.
func (ht *HashTable) AddRoute(dst netip.Addr, prefixLen int, adjIndex Index, flags AddDelFlags) error {
	if prefixLen < 0 || prefixLen > ht.maxLen {
		return fmt.Errorf("fib: prefix length %d out of range [0,%d]", prefixLen, ht.maxLen)
	}
	pfx, err := dst.Prefix(prefixLen)
	if err != nil {
		return fmt.Errorf("fib: invalid prefix %s/%d: %w", dst, prefixLen, err)
	}
	pfx = pfx.Masked()
	if flags.Del {
		delete(ht.byLen[prefixLen], pfx)
		if !flags.KeepOldAdjacency {
			ht.heap.Unref(adjIndex)
		}
		return nil
	}
	ht.byLen[prefixLen][pfx] = adjIndex
	ht.heap.Ref(adjIndex)
	return nil
}

// Lookup performs longest-prefix-match from ht.maxLen down to 0.
func (ht *HashTable) Lookup(dst netip.Addr) Index {
	for length := ht.maxLen; length >= 0; length-- {
		pfx, err := dst.Prefix(length)
		if err != nil {
			continue
		}
		if idx, ok := ht.byLen[length][pfx.Masked()]; ok {
			return ht.remap.resolve(idx)
		}
	}
	return MissIndex
}

// Remap records an old->new adjacency substitution for future
// lookups through this table.
func (ht *HashTable) Remap(old, new Index) { ht.heap.Remap(ht.remap, old, new) }
