// Package pg implements the packet generator: synthetic input streams
// of edit groups driving the same input-node interface real drivers
// use.
package pg

import (
	"encoding/binary"
	"fmt"
	"math/rand"
)

// EditKind discriminates how an Edit's bytes are produced for each
// generated packet.
type EditKind int

const (
	// EditInvalid poisons a zero-value Edit.
	EditInvalid EditKind = iota
	// EditFixed never changes across the stream's packets.
	EditFixed
	// EditIncrement counts from Low to High inclusive, wrapping back
	// to Low, one step per packet.
	EditIncrement
	// EditRandom draws a uniformly random value in [Low, High] per
	// packet.
	EditRandom
	// EditUnspecified must be resolved by the owning protocol's pg
	// handler before the stream is enabled.
	EditUnspecified
)

// Edit is one non-fixed field within an edit group: a byte range
// within the group's header template, and the rule that fills it for
// each generated packet. Edits are byte-aligned; sub-byte bitfields
// are pre-merged into the group's fixed template instead.
type Edit struct {
	Kind          EditKind
	ByteOffset    int
	Low, High     []byte // network byte order, same width as the field
	lastIncrement uint64
}

func bytesToUint(b []byte) uint64 {
	var buf [8]byte
	copy(buf[8-len(b):], b)
	return binary.BigEndian.Uint64(buf[:])
}

func uintToBytes(v uint64, width int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[8-width:]
}

// Next produces this edit's bytes for the next packet in sequence,
// mutating increment state as it goes.
func (e *Edit) Next(rng *rand.Rand) ([]byte, error) {
	width := len(e.Low)
	switch e.Kind {
	case EditFixed:
		return e.Low, nil
	case EditIncrement:
		lo, hi := bytesToUint(e.Low), bytesToUint(e.High)
		cur := e.lastIncrement
		if cur < lo || cur > hi {
			cur = lo
		}
		next := cur + 1
		if next > hi {
			next = lo
		}
		e.lastIncrement = next
		return uintToBytes(cur, width), nil
	case EditRandom:
		lo, hi := bytesToUint(e.Low), bytesToUint(e.High)
		if hi < lo {
			return nil, fmt.Errorf("pg: random edit has high < low")
		}
		span := hi - lo + 1
		v := lo
		if span > 1 {
			v = lo + uint64(rng.Int63n(int64(span)))
		}
		return uintToBytes(v, width), nil
	case EditUnspecified:
		return nil, fmt.Errorf("pg: unspecified edit at byte offset %d was never resolved", e.ByteOffset)
	default:
		return nil, fmt.Errorf("pg: invalid edit kind")
	}
}

// reset rewinds increment state so a stream can be re-enabled from the
// start of its sequence.
func (e *Edit) reset() { e.lastIncrement = 0 }
