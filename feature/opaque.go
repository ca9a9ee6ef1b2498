package feature

import "encoding/binary"

// Per-buffer dispatch state, stored at the front of a buffer's opaque
// area: the current config index plus the byte cursor into its
// compiled buffer_config string. Each feature node loads this, walks
// one step with Cursor, and stores the advanced cursor back. This
// package never sees the buffer type itself; callers hand in the
// opaque slice.
const StateBytes = 6

// StoreState writes (configIndex, cursor) into opaque[0:StateBytes].
func StoreState(opaque []byte, configIndex uint32, cursor uint16) {
	binary.BigEndian.PutUint32(opaque[0:4], configIndex)
	binary.BigEndian.PutUint16(opaque[4:6], cursor)
}

// LoadState reads back what StoreState wrote.
func LoadState(opaque []byte) (configIndex uint32, cursor uint16) {
	return binary.BigEndian.Uint32(opaque[0:4]), binary.BigEndian.Uint16(opaque[4:6])
}

// NextEdge performs one dispatch step against the config at
// configIndex: read the edge byte at cursor, skip it and the feature's
// own featureBytesLen config bytes, and return the advanced cursor for
// the caller to store back. ok is false when the chain is exhausted
// (the packet has passed its last feature) or the cursor is out of
// range.
func (c *Compiler) NextEdge(configIndex uint32, cursor uint16, featureBytesLen int) (edge uint8, next uint16, ok bool) {
	cfg, err := c.Get(configIndex)
	if err != nil {
		return 0, cursor, false
	}
	cur := &Cursor{data: cfg.BufferConfig, offset: int(cursor)}
	edge, _, ok = cur.Next(featureBytesLen)
	if !ok {
		return 0, cursor, false
	}
	return edge, uint16(cur.offset), true
}
