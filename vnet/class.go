//go:generate mockgen -source=class.go -destination=mock/mock_class.go -package=mock_vnet

package vnet

import "fmt"

// DeviceClass is the vtable a concrete driver (a NIC driver, a
// loopback stub, ...) implements. Concrete drivers are thin
// collaborators behind this interface; the core only needs the vtable
// shape and an open set of implementations.
type DeviceClass interface {
	Name() string
	TxFunction(hw *HwInterface, buffers []uint32) (sent int, err error)
	AdminUpDown(hw *HwInterface, up bool) error
	ClearCounters(hw *HwInterface)
	FormatDeviceName(instance uint32) string
	FormatDevice(hw *HwInterface) string
	HwClassChange(hw *HwInterface, newHwClass int) error
}

// HwClass is the vtable describing a hardware-class's framing: how it
// formats/parses addresses and headers and paints an L3->L2 rewrite
// string for a given sw-interface.
type HwClass interface {
	Name() string
	FormatAddress(addr []byte) string
	FormatHeader(data []byte) string
	UnformatHwAddress(s string) ([]byte, error)
	UnformatHeader(data []byte) (headerLen int, err error)
	RewriteForSwInterface(sw *SwInterface, l3Type uint16, dstAddr []byte, maxBytes int) ([]byte, error)
	RewriteForHwInterface(hw *HwInterface, l3Type uint16, dstAddr []byte, maxBytes int) ([]byte, error)
	IsValidClassForInterface(hw *HwInterface) bool
	HwClassChange(hw *HwInterface, oldInstance uint32) (newInstance uint32, err error)
}

// classRegistry is a static array of vtables populated at startup by
// each driver module calling Register*.
type classRegistry struct {
	deviceClasses []DeviceClass
	hwClasses     []HwClass
	deviceByName  map[string]int
	hwByName      map[string]int
}

func newClassRegistry() *classRegistry {
	return &classRegistry{deviceByName: make(map[string]int), hwByName: make(map[string]int)}
}

// RegisterDeviceClass adds d to the registry, returning its stable
// index.
func (m *Manager) RegisterDeviceClass(d DeviceClass) int {
	idx := len(m.classes.deviceClasses)
	m.classes.deviceClasses = append(m.classes.deviceClasses, d)
	m.classes.deviceByName[d.Name()] = idx
	return idx
}

// RegisterHwClass adds h to the registry, returning its stable index.
func (m *Manager) RegisterHwClass(h HwClass) int {
	idx := len(m.classes.hwClasses)
	m.classes.hwClasses = append(m.classes.hwClasses, h)
	m.classes.hwByName[h.Name()] = idx
	return idx
}

func (m *Manager) deviceClass(idx int) (DeviceClass, error) {
	if idx < 0 || idx >= len(m.classes.deviceClasses) {
		return nil, fmt.Errorf("vnet: unknown device class index %d", idx)
	}
	return m.classes.deviceClasses[idx], nil
}

func (m *Manager) hwClass(idx int) (HwClass, error) {
	if idx < 0 || idx >= len(m.classes.hwClasses) {
		return nil, fmt.Errorf("vnet: unknown hw class index %d", idx)
	}
	return m.classes.hwClasses[idx], nil
}
