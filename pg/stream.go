package pg

import (
	"fmt"
	"math/rand"
)

// PacketSizeEditKind selects how a stream's per-packet length varies,
// reusing the same fixed/increment/random categories field edits use.
type PacketSizeEditKind int

const (
	PacketSizeFixed PacketSizeEditKind = iota
	PacketSizeIncrement
	PacketSizeRandom
)

// EditGroup describes one header layer: its fixed template bytes plus
// a mask (1 bits mark bytes the template actually constrains) and the
// non-fixed Edits layered on top, plus an optional Fixup invoked after
// every edit has been applied (e.g. to compute a checksum over the
// finished header).
type EditGroup struct {
	Name  string
	Fixed []byte
	Mask  []byte
	Edits []Edit
	Fixup func(group []byte)
}

func (g *EditGroup) validate() error {
	if g.Mask != nil && len(g.Mask) != len(g.Fixed) {
		return fmt.Errorf("pg: edit group %q mask length %d != fixed length %d", g.Name, len(g.Mask), len(g.Fixed))
	}
	for _, e := range g.Edits {
		if e.ByteOffset < 0 || e.ByteOffset+len(e.Low) > len(g.Fixed) {
			return fmt.Errorf("pg: edit group %q edit at offset %d overruns its %d-byte template", g.Name, e.ByteOffset, len(g.Fixed))
		}
	}
	return nil
}

// render produces one packet's worth of bytes for this group: the
// fixed template with every edit's value painted on top, then Fixup
// if set.
func (g *EditGroup) render(rng *rand.Rand) ([]byte, error) {
	out := append([]byte(nil), g.Fixed...)
	for i := range g.Edits {
		v, err := g.Edits[i].Next(rng)
		if err != nil {
			return nil, fmt.Errorf("pg: edit group %q: %w", g.Name, err)
		}
		copy(out[g.Edits[i].ByteOffset:], v)
	}
	if g.Fixup != nil {
		g.Fixup(out)
	}
	return out, nil
}

// Stream is one synthetic input source.
type Stream struct {
	Name    string
	Enabled bool

	NodeIndex uint32
	NextEdge  uint8

	MinPacketBytes, MaxPacketBytes int
	PacketSizeEditKind             PacketSizeEditKind

	EditGroups []*EditGroup

	// ReplayTemplates, when non-empty, puts the stream into replay
	// mode: Tick plays these packets back round-robin at their
	// original length with no edits applied, instead of rendering
	// EditGroups.
	ReplayTemplates [][]byte

	NPacketsLimit        uint64
	RatePacketsPerSecond float64

	timeLastGenerate  float64
	packetAccumulator float64
	NPacketsGenerated uint64
	replayCursor      int
	sizeCursor        int

	rng *rand.Rand
}

// NewStream creates a stream with the given name and node/edge target.
// seed makes the random edit kind and random packet-size kind
// reproducible; pass 0 for a fixed, test-friendly sequence.
func NewStream(name string, nodeIndex uint32, nextEdge uint8, seed int64) *Stream {
	return &Stream{Name: name, NodeIndex: nodeIndex, NextEdge: nextEdge, rng: rand.New(rand.NewSource(seed))}
}

// Enable validates every edit group, resets increment/accumulator
// state, and marks the stream enabled. Edit validation happens once
// here, not per packet; a replay stream (non-empty ReplayTemplates)
// skips it.
func (s *Stream) Enable() error {
	if len(s.ReplayTemplates) == 0 {
		for _, g := range s.EditGroups {
			if err := g.validate(); err != nil {
				return err
			}
			for i := range g.Edits {
				if g.Edits[i].Kind == EditUnspecified {
					return fmt.Errorf("pg: stream %q has an unresolved edit in group %q", s.Name, g.Name)
				}
				g.Edits[i].reset()
			}
		}
	}
	s.timeLastGenerate = 0
	s.packetAccumulator = 0
	s.NPacketsGenerated = 0
	s.replayCursor = 0
	s.sizeCursor = 0
	s.Enabled = true
	return nil
}

// Disable stops generation. The auto-disable on reaching
// NPacketsLimit calls this too.
func (s *Stream) Disable() { s.Enabled = false }

// GeneratePacket renders one packet by concatenating every edit
// group's rendered bytes in order.
func (s *Stream) GeneratePacket() ([]byte, error) {
	var out []byte
	for _, g := range s.EditGroups {
		b, err := g.render(s.rng)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// FixedTemplate concatenates every edit group's fixed bytes, the
// packet image a pre-primed buffer starts from before any non-fixed
// edit is applied.
func (s *Stream) FixedTemplate() []byte {
	var out []byte
	for _, g := range s.EditGroups {
		out = append(out, g.Fixed...)
	}
	return out
}

// nextPacketSize returns the target length of the next packet, per
// PacketSizeEditKind: fixed pins MinPacketBytes, increment cycles
// Min..Max inclusive wrapping back to Min, random draws uniformly in
// [Min, Max] — the same categories and wrap rule as field edits.
func (s *Stream) nextPacketSize() int {
	if s.MaxPacketBytes <= s.MinPacketBytes {
		return s.MinPacketBytes
	}
	span := s.MaxPacketBytes - s.MinPacketBytes + 1
	switch s.PacketSizeEditKind {
	case PacketSizeIncrement:
		size := s.MinPacketBytes + s.sizeCursor
		s.sizeCursor = (s.sizeCursor + 1) % span
		return size
	case PacketSizeRandom:
		return s.MinPacketBytes + s.rng.Intn(span)
	default:
		return s.MinPacketBytes
	}
}

// resizeToTarget pads (with zeros) or trims pkt to the target size. A
// zero or negative target leaves pkt alone, so streams that never set
// Min/MaxPacketBytes generate exactly their edit groups' length.
func resizeToTarget(pkt []byte, target int) []byte {
	if target <= 0 || target == len(pkt) {
		return pkt
	}
	if target < len(pkt) {
		return pkt[:target]
	}
	return append(pkt, make([]byte, target-len(pkt))...)
}

// nextReplayTemplate returns the next template in round-robin order, a
// fresh copy at its original length with no edits applied. Only called
// once ReplayTemplates is known non-empty.
func (s *Stream) nextReplayTemplate() []byte {
	pkt := append([]byte(nil), s.ReplayTemplates[s.replayCursor]...)
	s.replayCursor = (s.replayCursor + 1) % len(s.ReplayTemplates)
	return pkt
}
