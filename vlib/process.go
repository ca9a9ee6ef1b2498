package vlib

import (
	"container/heap"
	"sync"
	"time"
)

// ProcessFunc is the body of a process node: a cooperative task that
// runs until it returns (completion) or calls p.SuspendFor/p.WaitForEvent,
// which parks it on the scheduler's wake list until the next iteration
// past the deadline/event. These two calls are the only suspension
// points; everything between them runs to completion.
type ProcessFunc func(p *Process)

// Process is one cooperative task running on its own goroutine, parked
// on the scheduler between suspension points.
type Process struct {
	id        uint32
	scheduler *processScheduler
	wake      chan interface{}
	done      chan struct{}
}

// SuspendFor parks the calling process until at least d has elapsed,
// then returns.
func (p *Process) SuspendFor(d time.Duration) {
	p.scheduler.parkTimer(p, time.Now().Add(d))
	<-p.wake
}

// WaitForEvent parks the calling process until eventID is signaled via
// Scheduler.SignalEvent, returning whatever data was signaled.
func (p *Process) WaitForEvent(eventID uint32) interface{} {
	p.scheduler.parkEvent(p, eventID)
	return <-p.wake
}

type timerEntry struct {
	at      time.Time
	process *Process
	index   int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) { e := x.(*timerEntry); e.index = len(*h); *h = append(*h, e) }
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// processScheduler parks suspended processes on a timer heap keyed by
// wake-time, or on a per-event-id waiter list, and resumes them from
// the main loop's RunOnce.
type processScheduler struct {
	mu      sync.Mutex
	timers  timerHeap
	waiters map[uint32][]*Process
	nextID  uint32
}

func newProcessScheduler() *processScheduler {
	return &processScheduler{waiters: make(map[uint32][]*Process)}
}

// Spawn starts fn as a process node, running immediately on its own
// goroutine. Once fn returns, the process is done and will not be
// scheduled again.
func (s *processScheduler) Spawn(fn ProcessFunc) *Process {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	p := &Process{id: id, scheduler: s, wake: make(chan interface{}, 1), done: make(chan struct{})}
	go func() {
		fn(p)
		close(p.done)
	}()
	return p
}

func (s *processScheduler) parkTimer(p *Process, at time.Time) {
	s.mu.Lock()
	heap.Push(&s.timers, &timerEntry{at: at, process: p})
	s.mu.Unlock()
}

func (s *processScheduler) parkEvent(p *Process, eventID uint32) {
	s.mu.Lock()
	s.waiters[eventID] = append(s.waiters[eventID], p)
	s.mu.Unlock()
}

// SignalEvent wakes every process parked on eventID, delivering data to
// each. The signal is one-shot: waiters registered after the signal
// park until the next one.
func (s *processScheduler) SignalEvent(eventID uint32, data interface{}) {
	s.mu.Lock()
	waiting := s.waiters[eventID]
	delete(s.waiters, eventID)
	s.mu.Unlock()

	for _, p := range waiting {
		p.wake <- data
	}
}

// RunReady wakes every timer-parked process whose deadline has passed.
func (s *processScheduler) RunReady(now time.Time) {
	var ready []*Process

	s.mu.Lock()
	for len(s.timers) > 0 && !s.timers[0].at.After(now) {
		e := heap.Pop(&s.timers).(*timerEntry)
		ready = append(ready, e.process)
	}
	s.mu.Unlock()

	for _, p := range ready {
		p.wake <- nil
	}
}
