package vlib

// Well-known edge names every protocol input/lookup node is expected to
// register when it has a drop/punt sink available.
const (
	EdgeDrop = "error-drop"
	EdgePunt = "error-punt"
)

// ErrorDropNode counts per-producing-node error ids and then frees the
// buffer. Punt works identically except it is understood to hand the
// buffer to a host-stack sink instead of freeing it; both share this
// implementation and differ only in which edge the caller wires them
// to.
type ErrorDropNode struct {
	graph *Graph

	// Free is called once per dropped buffer index. Wiring an actual
	// buffer.Pool.Free here is the caller's job: this package has no
	// buffer.Pool dependency of its own.
	Free func(idx uint32)
}

// NewErrorDropFunc returns a NodeFunc counting each buffer's Error field
// (read out of band via errorOf, since vlib does not know the buffer
// layout) against the producing node's error counters, then releasing
// the buffer via free.
func NewErrorDropFunc(graph *Graph, errorOf func(bufIdx uint32) (node NodeIndex, errorID int), free func(bufIdx uint32)) NodeFunc {
	return func(rt *NodeRuntime, frame *Frame) int {
		if frame == nil {
			return 0
		}
		for _, idx := range frame.Buffers {
			raw := uint32(idx)
			if nodeIdx, errID := errorOf(raw); errID >= 0 {
				graph.Node(nodeIdx).CountError(errID, 1)
			}
			if free != nil {
				free(raw)
			}
		}
		return frame.NVectors
	}
}
