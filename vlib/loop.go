package vlib

import (
	"fmt"
	"sync"
	"time"

	"github.com/packetgraph/vnet/buffer"
)

// Loop is the single-threaded cooperative main loop: one worker owns
// the graph, polls input nodes at their configured rate, drains
// internal nodes whose incoming frames are non-empty in graph order,
// and runs process nodes whose wait condition has fired.
//
// Loop keeps one pending frame queue per node, fed by whichever
// upstream node last produced output for it.
type Loop struct {
	mu     sync.Mutex
	graph  *Graph
	config Config

	pending map[NodeIndex][]*Frame

	processes *processScheduler

	dropNode    NodeIndex
	hasDropNode bool

	iterations uint64
}

// NewLoop builds a Loop over g using cfg's tunables.
func NewLoop(g *Graph, cfg Config) *Loop {
	return &Loop{
		graph:     g,
		config:    cfg,
		pending:   make(map[NodeIndex][]*Frame),
		processes: newProcessScheduler(),
	}
}

// Graph returns the graph this loop dispatches.
func (l *Loop) Graph() *Graph { return l.graph }

// Config returns the loop's tunables.
func (l *Loop) Config() Config { return l.config }

// SetErrorDropNode names the node that receives frames addressed to a
// deleted node: outstanding frames destined for a deleted tx node are
// redirected to the error-drop node so buffers are released instead of
// transmitted.
func (l *Loop) SetErrorDropNode(idx NodeIndex) {
	l.mu.Lock()
	l.dropNode = idx
	l.hasDropNode = true
	l.mu.Unlock()
}

func (l *Loop) enqueueFrame(to NodeIndex, f *Frame) {
	l.mu.Lock()
	l.pending[to] = append(l.pending[to], f)
	l.mu.Unlock()
}

// InjectFrame lets an external producer (a device's rx interrupt
// handler, a test) hand a frame directly to a node, bypassing the
// normal node-to-node edge.
func (l *Loop) InjectFrame(to NodeIndex, indices []buffer.Index) {
	f := newFrame()
	for _, idx := range indices {
		f.append(idx)
	}
	l.enqueueFrame(to, f)
}

// RunOnce executes one iteration of the main loop: poll inputs, drain
// internal nodes, run ready processes. It returns the total number of
// buffers processed by internal/input node functions this iteration.
func (l *Loop) RunOnce(now time.Time) int {
	total := 0

	for _, n := range l.graph.NodesOfKind(KindPreInput) {
		total += l.dispatchInput(n, now)
	}
	for _, n := range l.graph.NodesOfKind(KindInput) {
		total += l.dispatchInput(n, now)
	}

	for _, n := range l.graph.NodesOfKind(KindInternal) {
		total += l.drainNode(n)
	}

	l.processes.RunReady(now)

	l.iterations++
	return total
}

func (l *Loop) dispatchInput(n *Node, now time.Time) int {
	if !n.Enabled || n.IsDeleted || n.Function == nil {
		return 0
	}
	if n.PollingRate > 0 && !n.interruptPending {
		minInterval := time.Duration(float64(time.Second) / n.PollingRate)
		if !n.LastDispatch.IsZero() && now.Sub(n.LastDispatch) < minInterval {
			return 0
		}
	}
	n.interruptPending = false
	n.LastDispatch = now

	rt := newNodeRuntime(l, n)
	processed := n.Function(rt, nil)
	rt.finish()
	return processed
}

func (l *Loop) drainNode(n *Node) int {
	if n.IsDeleted {
		l.mu.Lock()
		frames := l.pending[n.Index]
		l.pending[n.Index] = nil
		redirect := l.hasDropNode && l.dropNode != n.Index
		drop := l.dropNode
		l.mu.Unlock()
		if redirect {
			for _, f := range frames {
				l.enqueueFrame(drop, f)
			}
		}
		return 0
	}
	if !n.Enabled || n.Function == nil {
		return 0
	}

	l.mu.Lock()
	frames := l.pending[n.Index]
	l.pending[n.Index] = nil
	l.mu.Unlock()

	total := 0
	for _, f := range frames {
		rt := newNodeRuntime(l, n)
		processed := n.Function(rt, f)
		rt.finish()
		if processed > f.NVectors {
			panic(fmt.Sprintf("vlib: node %q reported %d buffers processed from a %d-buffer frame; recent traces: %v",
				n.Name, processed, f.NVectors, n.Traces()))
		}
		total += processed
	}
	return total
}

// Processes exposes the process-node scheduler so callers can register
// process nodes and signal events.
func (l *Loop) Processes() *processScheduler { return l.processes }

// Run drives RunOnce until stop is closed, ticking once per tick so an
// idle graph doesn't spin.
func (l *Loop) Run(stop <-chan struct{}, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-t.C:
			l.RunOnce(now)
		}
	}
}
