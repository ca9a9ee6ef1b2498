package vnet

import (
	"fmt"
	"sync"
)

// Callbacks are the control-plane notification registries: plain
// slices of function values, appended to by the owner, invoked in
// registration order.
type Callbacks struct {
	HwInterfaceAddDel      []func(hw *HwInterface, isAdd bool)
	HwInterfaceLinkUpDown  []func(hw *HwInterface, isUp bool)
	SwInterfaceAddDel      []func(sw *SwInterface, isAdd bool)
	SwInterfaceAdminUpDown []func(sw *SwInterface, isUp bool)
}

// GraphHooks connect the interface layer to whatever node graph owns
// the data path, without this package importing it: RegisterInterface
// calls RegisterOutputTxNodes to allocate the per-interface output and
// tx nodes, and DeleteHwInterface calls ReserveNodeName and
// QuiesceTxNode so the deleted interface's tx node name is held for
// reuse and its outstanding frames are released rather than
// transmitted. Any hook may be nil.
type GraphHooks struct {
	RegisterOutputTxNodes func(hwName string) (outputNode, txNode uint32, err error)
	ReserveNodeName       func(name string)
	QuiesceTxNode         func(txNode uint32)
}

// Manager owns the hw/sw interface pools, the device/hw class
// registries, counters, and callback registries. It is an explicit
// context handle; there is no process-wide singleton, so several
// independent instances (per tenant, per test) can coexist.
type Manager struct {
	mu sync.Mutex

	hw []*HwInterface
	sw []*SwInterface

	classes   *classRegistry
	Callbacks Callbacks
	Counters  *CounterCollector
	Graph     GraphHooks

	nameToHwIndex map[string]HwIfIndex
	reservedNames map[string]bool
}

// NewManager creates an empty interface manager.
func NewManager() *Manager {
	return &Manager{
		classes:       newClassRegistry(),
		Counters:      NewCounterCollector(1),
		nameToHwIndex: make(map[string]HwIfIndex),
		reservedNames: make(map[string]bool),
	}
}

// RegisterInterface allocates a hw-interface and its default
// hardware-kind sw-interface, invoking the registered hw-interface and
// sw-interface add callbacks.
func (m *Manager) RegisterInterface(deviceClassIdx int, deviceInstance uint32, hwClassIdx int, hwClassInstance uint32, hwAddress []byte) (HwIfIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dc, err := m.deviceClass(deviceClassIdx)
	if err != nil {
		return 0, err
	}
	if _, err := m.hwClass(hwClassIdx); err != nil {
		return 0, err
	}

	hwIdx := HwIfIndex(len(m.hw))
	name := fmt.Sprintf("%s%d", dc.Name(), deviceInstance)

	hw := &HwInterface{
		Index:            hwIdx,
		DeviceClassIndex: deviceClassIdx,
		DeviceInstance:   deviceInstance,
		HwClassIndex:     hwClassIdx,
		HwClassInstance:  hwClassInstance,
		Name:             name,
		HwAddress:        append([]byte(nil), hwAddress...),
		subIfIndexByID:   make(map[uint32]SwIfIndex),
	}
	if m.Graph.RegisterOutputTxNodes != nil {
		outputNode, txNode, err := m.Graph.RegisterOutputTxNodes(name)
		if err != nil {
			return 0, fmt.Errorf("vnet: register output/tx nodes for %s: %w", name, err)
		}
		hw.OutputNodeIndex = outputNode
		hw.TxNodeIndex = txNode
	}

	m.hw = append(m.hw, hw)
	m.nameToHwIndex[name] = hwIdx

	swIdx := SwIfIndex(len(m.sw))
	sw := &SwInterface{Index: swIdx, Kind: SwKindHardware, HwIfIndex: hwIdx}
	sw.SupSwIfIndex = swIdx
	m.sw = append(m.sw, sw)
	hw.SwIfIndex = swIdx

	m.Counters.ensure(int(swIdx) + 1)

	for _, cb := range m.Callbacks.HwInterfaceAddDel {
		cb(hw, true)
	}
	for _, cb := range m.Callbacks.SwInterfaceAddDel {
		cb(sw, true)
	}

	return hwIdx, nil
}

// DeleteHwInterface deletes a hardware interface and its supported
// sw-interfaces, and reserves its tx-node name for later reuse.
func (m *Manager) DeleteHwInterface(idx HwIfIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hw, err := m.hwInterfaceLocked(idx)
	if err != nil {
		return err
	}

	for _, sw := range m.sw {
		if !sw.deleted && sw.Kind == SwKindHardware && sw.HwIfIndex == idx {
			sw.deleted = true
			for _, cb := range m.Callbacks.SwInterfaceAddDel {
				cb(sw, false)
			}
		}
		if !sw.deleted && sw.Kind == SwKindSub {
			if sup, _ := m.swInterfaceLocked(sw.SupSwIfIndex); sup != nil && sup.HwIfIndex == idx {
				sw.deleted = true
				for _, cb := range m.Callbacks.SwInterfaceAddDel {
					cb(sw, false)
				}
			}
		}
	}

	hw.deleted = true
	delete(m.nameToHwIndex, hw.Name)
	m.reservedNames[txNodeName(hw)] = true
	if m.Graph.ReserveNodeName != nil {
		m.Graph.ReserveNodeName(txNodeName(hw))
	}
	if m.Graph.QuiesceTxNode != nil {
		m.Graph.QuiesceTxNode(hw.TxNodeIndex)
	}

	for _, cb := range m.Callbacks.HwInterfaceAddDel {
		cb(hw, false)
	}
	return nil
}

func txNodeName(hw *HwInterface) string { return hw.Name + "-tx" }

// CreateSubInterface creates a sub-interface of sup keyed by id (e.g. a
// VLAN tag), recording it in the parent hw-interface's
// sub_interface_by_id mapping.
func (m *Manager) CreateSubInterface(sup SwIfIndex, id uint32) (SwIfIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	supSw, err := m.swInterfaceLocked(sup)
	if err != nil {
		return 0, err
	}
	if supSw.Kind != SwKindHardware {
		return 0, fmt.Errorf("%w: sub-interfaces may only be created on a hardware sw-interface", ErrInvalidArgument)
	}
	hw, err := m.hwInterfaceLocked(supSw.HwIfIndex)
	if err != nil {
		return 0, err
	}
	if _, exists := hw.subIfIndexByID[id]; exists {
		return 0, fmt.Errorf("%w: sub-interface id %d already exists", ErrInvalidArgument, id)
	}

	swIdx := SwIfIndex(len(m.sw))
	sw := &SwInterface{Index: swIdx, Kind: SwKindSub, SupSwIfIndex: sup, HwIfIndex: supSw.HwIfIndex, SubID: id}
	m.sw = append(m.sw, sw)
	hw.subIfIndexByID[id] = swIdx
	m.Counters.ensure(int(swIdx) + 1)

	for _, cb := range m.Callbacks.SwInterfaceAddDel {
		cb(sw, true)
	}
	return swIdx, nil
}

// SetHwInterfaceFlags toggles link state, dispatching registered
// hw_interface_link_up_down callbacks exactly once per actual
// transition.
func (m *Manager) SetHwInterfaceFlags(idx HwIfIndex, flags HwFlags) error {
	m.mu.Lock()
	hw, err := m.hwInterfaceLocked(idx)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	wasUp := hw.Flags&HwFlagLinkUp != 0
	isUp := flags&HwFlagLinkUp != 0
	hw.Flags = flags
	m.mu.Unlock()

	if wasUp != isUp {
		for _, cb := range m.Callbacks.HwInterfaceLinkUpDown {
			cb(hw, isUp)
		}
	}
	return nil
}

// SetSwInterfaceFlags toggles admin/punt state, dispatching registered
// sw_interface_admin_up_down callbacks exactly once per actual
// transition.
func (m *Manager) SetSwInterfaceFlags(idx SwIfIndex, flags SwFlags) error {
	m.mu.Lock()
	sw, err := m.swInterfaceLocked(idx)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	wasUp := sw.Flags&SwFlagAdminUp != 0
	isUp := flags&SwFlagAdminUp != 0
	sw.Flags = flags
	m.mu.Unlock()

	if wasUp != isUp {
		for _, cb := range m.Callbacks.SwInterfaceAdminUpDown {
			cb(sw, isUp)
		}
	}
	return nil
}

// SetHwInterfaceClass migrates hw to a new hw-class, legal only when
// every sub-sw-interface is admin-down.
func (m *Manager) SetHwInterfaceClass(idx HwIfIndex, newHwClassIdx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hw, err := m.hwInterfaceLocked(idx)
	if err != nil {
		return err
	}
	for subID, subIdx := range hw.subIfIndexByID {
		sub, err := m.swInterfaceLocked(subIdx)
		if err != nil {
			return err
		}
		if sub.Flags&SwFlagAdminUp != 0 {
			return fmt.Errorf("%w: sub-interface id %d is admin-up", ErrInUse, subID)
		}
	}

	newClass, err := m.hwClass(newHwClassIdx)
	if err != nil {
		return err
	}
	newInstance, err := newClass.HwClassChange(hw, hw.HwClassInstance)
	if err != nil {
		return err
	}
	hw.HwClassIndex = newHwClassIdx
	hw.HwClassInstance = newInstance
	return nil
}

func (m *Manager) hwInterfaceLocked(idx HwIfIndex) (*HwInterface, error) {
	if int(idx) >= len(m.hw) || m.hw[idx].deleted {
		return nil, fmt.Errorf("%w: hw-interface %d", ErrNotFound, idx)
	}
	return m.hw[idx], nil
}

func (m *Manager) swInterfaceLocked(idx SwIfIndex) (*SwInterface, error) {
	if int(idx) >= len(m.sw) || m.sw[idx].deleted {
		return nil, fmt.Errorf("%w: sw-interface %d", ErrNotFound, idx)
	}
	return m.sw[idx], nil
}

// HwInterface returns the hw-interface at idx.
func (m *Manager) HwInterface(idx HwIfIndex) (*HwInterface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hwInterfaceLocked(idx)
}

// HwInterfaceByName resolves a hw-interface by the name
// RegisterInterface derived for it (device class name + instance).
func (m *Manager) HwInterfaceByName(name string) (*HwInterface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.nameToHwIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: hw-interface %q", ErrNotFound, name)
	}
	return m.hwInterfaceLocked(idx)
}

// SwInterface returns the sw-interface at idx.
func (m *Manager) SwInterface(idx SwIfIndex) (*SwInterface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.swInterfaceLocked(idx)
}

// RewriteForSwInterface asks the supporting hw-interface's class to
// produce an L2 rewrite string for the given sw-interface.
func (m *Manager) RewriteForSwInterface(idx SwIfIndex, l3Type uint16, dstAddr []byte, maxBytes int) ([]byte, error) {
	m.mu.Lock()
	sw, err := m.swInterfaceLocked(idx)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	hw, err := m.hwInterfaceLocked(sw.HwIfIndex)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	hc, err := m.hwClass(hw.HwClassIndex)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return hc.RewriteForSwInterface(sw, l3Type, dstAddr, maxBytes)
}
