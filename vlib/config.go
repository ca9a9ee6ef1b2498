// Package vlib implements the node/frame graph runtime: node and frame
// types, the per-iteration main loop, input-node rate shaping, and
// process-node cooperative suspension.
package vlib

// Config collects the small set of tunables the runtime exports. There
// is no environment/CLI layer in this package; callers build a Config
// explicitly and pass it to NewLoop.
type Config struct {
	BufferSegmentSize             int
	MinFreeListBuffers            int
	MultipathWeightErrorTolerance float64
	DefaultTTLv4                  uint8
	DefaultTTLv6                  uint8
	PerNodeTraceCapacity          int
}

// DefaultConfig returns the stock tunable values.
func DefaultConfig() Config {
	return Config{
		BufferSegmentSize:             512,
		MinFreeListBuffers:            1024,
		MultipathWeightErrorTolerance: 0.01,
		DefaultTTLv4:                  64,
		DefaultTTLv6:                  64,
		PerNodeTraceCapacity:          1024,
	}
}
