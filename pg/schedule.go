package pg

// NPacketsThisTick computes how many packets an enabled stream should
// generate this dispatch tick:
//
//	n_packets_this_tick = min(n_packets_limit_remaining,
//	                           rate_pps * elapsed + packet_accumulator_fraction)
//
// The fractional remainder is kept in s.packetAccumulator so the
// long-run average rate converges to the configured target even
// though only whole packets are ever produced in one tick. A
// non-positive rate is treated as "unrated" whatever the elapsed
// time: return whatever remains of the packet limit, generating
// everything in one shot.
func (s *Stream) NPacketsThisTick(elapsed float64) uint64 {
	remaining := s.remainingLimit()
	if remaining == 0 {
		return 0
	}

	if s.RatePacketsPerSecond <= 0 {
		return remaining
	}

	s.packetAccumulator += s.RatePacketsPerSecond * elapsed
	whole := uint64(s.packetAccumulator)
	if whole > remaining {
		whole = remaining
	}
	s.packetAccumulator -= float64(whole)
	return whole
}

// remainingLimit returns how many more packets this stream may
// generate before NPacketsLimit (0 meaning unlimited) is hit.
func (s *Stream) remainingLimit() uint64 {
	if s.NPacketsLimit == 0 {
		return ^uint64(0)
	}
	if s.NPacketsGenerated >= s.NPacketsLimit {
		return 0
	}
	return s.NPacketsLimit - s.NPacketsGenerated
}

// Tick generates up to NPacketsThisTick(elapsed) packets, advancing
// NPacketsGenerated and auto-disabling once the limit is reached.
func (s *Stream) Tick(elapsed float64) ([][]byte, error) {
	if !s.Enabled {
		return nil, nil
	}

	n := s.NPacketsThisTick(elapsed)
	out := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		var pkt []byte
		if len(s.ReplayTemplates) > 0 {
			pkt = s.nextReplayTemplate() // replay preserves original lengths, no size edit
		} else {
			var err error
			pkt, err = s.GeneratePacket()
			if err != nil {
				return out, err
			}
			pkt = resizeToTarget(pkt, s.nextPacketSize())
		}
		out = append(out, pkt)
		s.NPacketsGenerated++
	}

	if s.NPacketsLimit != 0 && s.NPacketsGenerated >= s.NPacketsLimit {
		s.Disable()
	}
	return out, nil
}
