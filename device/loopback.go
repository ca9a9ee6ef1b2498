// Package device provides concrete vnet.DeviceClass/vnet.HwClass
// implementations that need no real hardware: a loopback device that
// echoes its own transmissions back to its rx side (useful for tests
// and for driving pg streams) and a null device that silently discards
// everything.
package device

import (
	"fmt"
	"sync"

	"github.com/packetgraph/vnet/vnet"
)

// LoopbackClass is a vnet.DeviceClass whose TxFunction feeds
// transmitted buffer indices straight into a per-instance rx queue
// that a test or the packet generator can drain.
type LoopbackClass struct {
	mu    sync.Mutex
	rx    map[uint32][]uint32 // hw instance -> queued buffer indices
	state map[uint32]bool     // hw instance -> admin-up
}

// NewLoopbackClass creates an empty loopback device class.
func NewLoopbackClass() *LoopbackClass {
	return &LoopbackClass{rx: make(map[uint32][]uint32), state: make(map[uint32]bool)}
}

func (c *LoopbackClass) Name() string { return "loopback" }

// TxFunction enqueues every buffer index onto this hw instance's own
// rx queue instead of handing it to real hardware.
func (c *LoopbackClass) TxFunction(hw *vnet.HwInterface, buffers []uint32) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state[uint32(hw.Index)] {
		return 0, fmt.Errorf("device: loopback instance %d is admin-down", hw.Index)
	}
	c.rx[uint32(hw.Index)] = append(c.rx[uint32(hw.Index)], buffers...)
	return len(buffers), nil
}

// Drain removes and returns every buffer index queued for hw.
func (c *LoopbackClass) Drain(hw *vnet.HwInterface) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := uint32(hw.Index)
	out := c.rx[idx]
	c.rx[idx] = nil
	return out
}

func (c *LoopbackClass) AdminUpDown(hw *vnet.HwInterface, up bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[uint32(hw.Index)] = up
	return nil
}

func (c *LoopbackClass) ClearCounters(hw *vnet.HwInterface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rx, uint32(hw.Index))
}

func (c *LoopbackClass) FormatDeviceName(instance uint32) string {
	return fmt.Sprintf("loop%d", instance)
}

func (c *LoopbackClass) FormatDevice(hw *vnet.HwInterface) string {
	return fmt.Sprintf("loopback device %s", hw.Name)
}

func (c *LoopbackClass) HwClassChange(hw *vnet.HwInterface, newHwClass int) error {
	return nil // loopback has no class-specific per-instance state to migrate
}
