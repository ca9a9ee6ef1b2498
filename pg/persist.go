package pg

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// persistVersion is prefixed to every saved blob so a future format
// change can detect and reject stale state.
const persistVersion = 1

// streamSnapshot is the serializable subset of Stream: names, edit
// groups, and the enabled bitmap (as a per-stream bool). Unexported
// scheduling state (timeLastGenerate, packetAccumulator, rng) is
// intentionally not persisted — Load always resumes streams as freshly
// enabled.
type streamSnapshot struct {
	Name                 string
	Enabled              bool
	NodeIndex            uint32
	NextEdge             uint8
	MinPacketBytes       int
	MaxPacketBytes       int
	PacketSizeEditKind   PacketSizeEditKind
	EditGroups           []editGroupSnapshot
	ReplayTemplates      [][]byte
	NPacketsLimit        uint64
	RatePacketsPerSecond float64
}

type editGroupSnapshot struct {
	Name  string
	Fixed []byte
	Mask  []byte
	Edits []Edit
}

func toSnapshot(s *Stream) streamSnapshot {
	snap := streamSnapshot{
		Name: s.Name, Enabled: s.Enabled, NodeIndex: s.NodeIndex, NextEdge: s.NextEdge,
		MinPacketBytes: s.MinPacketBytes, MaxPacketBytes: s.MaxPacketBytes,
		PacketSizeEditKind: s.PacketSizeEditKind, NPacketsLimit: s.NPacketsLimit,
		RatePacketsPerSecond: s.RatePacketsPerSecond, ReplayTemplates: s.ReplayTemplates,
	}
	for _, g := range s.EditGroups {
		snap.EditGroups = append(snap.EditGroups, editGroupSnapshot{Name: g.Name, Fixed: g.Fixed, Mask: g.Mask, Edits: g.Edits})
	}
	return snap
}

// Save serializes streams (names, edit groups, enabled bitmap) with
// encoding/gob. Fixup callbacks are
// function values and cannot be persisted; Load returns streams with
// Fixup unset, which callers must re-attach per edit group name before
// re-enabling a checksum-fixup group.
func Save(streams []*Stream) ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(persistVersion); err != nil {
		return nil, err
	}
	snaps := make([]streamSnapshot, len(streams))
	for i, s := range streams {
		snaps[i] = toSnapshot(s)
	}
	if err := gob.NewEncoder(&buf).Encode(snaps); err != nil {
		return nil, fmt.Errorf("pg: encode stream set: %w", err)
	}
	return buf.Bytes(), nil
}

// Load deserializes a blob written by Save into a fresh set of
// streams, each with its own seeded RNG (seed is shared across all
// loaded streams; pass distinct seeds afterward if independent
// sequences are required).
func Load(data []byte, seed int64) ([]*Stream, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("pg: empty stream set blob")
	}
	version, body := data[0], data[1:]
	if version != persistVersion {
		return nil, fmt.Errorf("pg: unsupported stream set version %d", version)
	}

	var snaps []streamSnapshot
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&snaps); err != nil {
		return nil, fmt.Errorf("pg: decode stream set: %w", err)
	}

	streams := make([]*Stream, len(snaps))
	for i, snap := range snaps {
		s := NewStream(snap.Name, snap.NodeIndex, snap.NextEdge, seed)
		s.MinPacketBytes = snap.MinPacketBytes
		s.MaxPacketBytes = snap.MaxPacketBytes
		s.PacketSizeEditKind = snap.PacketSizeEditKind
		s.NPacketsLimit = snap.NPacketsLimit
		s.RatePacketsPerSecond = snap.RatePacketsPerSecond
		s.ReplayTemplates = snap.ReplayTemplates
		for _, g := range snap.EditGroups {
			s.EditGroups = append(s.EditGroups, &EditGroup{Name: g.Name, Fixed: g.Fixed, Mask: g.Mask, Edits: g.Edits})
		}
		if snap.Enabled {
			if err := s.Enable(); err != nil {
				return nil, fmt.Errorf("pg: re-enabling stream %q: %w", snap.Name, err)
			}
		}
		streams[i] = s
	}
	return streams, nil
}
