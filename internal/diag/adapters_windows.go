//go:build windows

package diag

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/simwidget/overlay/internal/d3d"
)

// Adapters enumerates DXGI adapters in the order address resolution sees
// them: index zero is the one the probe device lands on.
func Adapters() ([]Adapter, error) {
	factory, err := d3d.CreateFactory1()
	if err != nil {
		return nil, fmt.Errorf("diag: %w", err)
	}
	defer d3d.Release(factory)

	var adapters []Adapter
	for i := 0; ; i++ {
		var adapter uintptr
		hr := d3d.CallRaw(factory, d3d.DXGIFactory1EnumAdapters1,
			uintptr(i), uintptr(unsafe.Pointer(&adapter)))
		if uint32(hr) == d3d.DXGIErrorNotFound {
			break
		}
		if int32(hr) < 0 {
			return adapters, fmt.Errorf("diag: EnumAdapters1(%d): 0x%08X", i, uint32(hr))
		}

		var desc d3d.AdapterDesc1
		if _, err := d3d.Call(adapter, d3d.DXGIAdapter1GetDesc1,
			uintptr(unsafe.Pointer(&desc))); err != nil {
			d3d.Release(adapter)
			return adapters, fmt.Errorf("diag: GetDesc1(%d): %w", i, err)
		}
		d3d.Release(adapter)

		adapters = append(adapters, Adapter{
			Index:            i,
			Name:             windows.UTF16ToString(desc.Description[:]),
			VendorID:         desc.VendorID,
			DeviceID:         desc.DeviceID,
			DedicatedVideoMB: uint64(desc.DedicatedVideoMemory) / 1024 / 1024,
			Software:         desc.Flags&d3d.AdapterFlagSoftware != 0,
		})
	}
	return adapters, nil
}

// Collect builds the full report. WMI failures degrade to the DXGI half;
// losing driver versions should not hide the adapter list.
func Collect() (Report, error) {
	adapters, err := Adapters()
	if err != nil {
		return Report{}, err
	}
	controllers, err := VideoControllers()
	if err != nil {
		log.Warn("WMI video controller query failed", "error", err)
	}
	return Report{Adapters: adapters, Controllers: controllers}, nil
}
