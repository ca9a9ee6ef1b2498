package rewrite

import "github.com/packetgraph/vnet/buffer"

// Apply paints s onto buf's head and advances buf's current-data
// pointer to cover the new bytes. It returns ErrMTUExceeded (after
// still performing the paint and advance, so the caller sees the
// finished header when routing the packet to an MTU-exceeded sink)
// when the buffer's resulting length exceeds maxL3PacketBytes.
func Apply(buf *buffer.Buffer, s *String, maxL3PacketBytes int) error {
	n := s.Len()
	if n == 0 {
		return nil
	}

	data := buf.Data()
	headroom := int(buf.CurrentData)
	if err := s.Paint(data, headroom); err != nil {
		return err
	}
	if err := buf.Advance(-n); err != nil {
		return err
	}

	if maxL3PacketBytes > 0 && int(buf.CurrentLength) > maxL3PacketBytes {
		return ErrMTUExceeded
	}
	return nil
}

// ApplyTwo paints two buffers in one call, the dual of Apply used by
// the two-at-a-time inner loop pattern lookup nodes run. Each buffer's
// error is reported independently so a failure on one never blocks the
// other.
func ApplyTwo(buf0, buf1 *buffer.Buffer, s0, s1 *String, maxL3PacketBytes0, maxL3PacketBytes1 int) (err0, err1 error) {
	err0 = Apply(buf0, s0, maxL3PacketBytes0)
	err1 = Apply(buf1, s1, maxL3PacketBytes1)
	return err0, err1
}
