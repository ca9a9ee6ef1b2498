package device

import "github.com/packetgraph/vnet/vnet"

// NullClass is a vnet.DeviceClass that silently discards every
// transmitted buffer, for interfaces that exist only to anchor a
// sw-interface/FIB table (e.g. a punt sink) without a real backing
// device.
type NullClass struct{}

func (NullClass) Name() string { return "null" }

func (NullClass) TxFunction(hw *vnet.HwInterface, buffers []uint32) (int, error) {
	return len(buffers), nil
}

func (NullClass) AdminUpDown(hw *vnet.HwInterface, up bool) error { return nil }

func (NullClass) ClearCounters(hw *vnet.HwInterface) {}

func (NullClass) FormatDeviceName(instance uint32) string { return "null" }

func (NullClass) FormatDevice(hw *vnet.HwInterface) string { return "null device" }

func (NullClass) HwClassChange(hw *vnet.HwInterface, newHwClass int) error { return nil }
