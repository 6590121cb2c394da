//go:build windows

package d3d

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modD3D12 = windows.NewLazySystemDLL("d3d12.dll")

	procD3D12CreateDevice     = modD3D12.NewProc("D3D12CreateDevice")
	procD3D11On12CreateDevice = modD3D11.NewProc("D3D11On12CreateDevice")
)

// D3D12 constants.
const (
	CommandListTypeDirect = 0 // D3D12_COMMAND_LIST_TYPE_DIRECT

	ResourceStatePresent      = 0   // D3D12_RESOURCE_STATE_PRESENT
	ResourceStateRenderTarget = 0x4 // D3D12_RESOURCE_STATE_RENDER_TARGET
)

// ID3D12Device and ID3D11On12Device method ordinals. ID3D11On12Device is a
// bare IUnknown extension, so its three methods start right at 3.
const (
	D3D12DeviceCreateCommandQueue = 8

	D3D11On12CreateWrappedResource   = 3
	D3D11On12ReleaseWrappedResources = 4
	D3D11On12AcquireWrappedResources = 5
)

// D3D12 and interop interface GUIDs.
var (
	IID_ID3D12Device       = GUID{0x189819f1, 0x1db6, 0x4b57, [8]byte{0xbe, 0x54, 0x18, 0x21, 0x33, 0x9b, 0x85, 0xf7}}
	IID_ID3D12CommandQueue = GUID{0x0ec870a6, 0x5d7e, 0x4c22, [8]byte{0x8c, 0xfc, 0x5b, 0xaa, 0xe0, 0x76, 0x16, 0xed}}
	IID_ID3D12Resource     = GUID{0x696442be, 0xa72e, 0x4059, [8]byte{0xbc, 0x79, 0x5b, 0x5c, 0x98, 0x04, 0x0f, 0xad}}
	IID_ID3D11On12Device   = GUID{0x85611e73, 0x70a9, 0x490e, [8]byte{0x96, 0x14, 0xa9, 0xe3, 0x02, 0x77, 0x79, 0x04}}
)

// CommandQueueDesc matches D3D12_COMMAND_QUEUE_DESC.
type CommandQueueDesc struct {
	Type     int32
	Priority int32
	Flags    uint32
	NodeMask uint32
}

// ResourceFlags11 matches D3D11_RESOURCE_FLAGS, the D3D11-side description
// of a wrapped 12 resource.
type ResourceFlags11 struct {
	BindFlags           uint32
	MiscFlags           uint32
	CPUAccessFlags      uint32
	StructureByteStride uint32
}

// CreateDevice12 creates a D3D12 device on the default adapter.
func CreateDevice12() (uintptr, error) {
	var device uintptr
	hr, _, _ := procD3D12CreateDevice.Call(
		0, // pAdapter (NULL = default)
		uintptr(FeatureLevel11_0),
		uintptr(unsafe.Pointer(&IID_ID3D12Device)),
		uintptr(unsafe.Pointer(&device)),
	)
	if int32(hr) < 0 {
		return 0, fmt.Errorf("D3D12CreateDevice failed: 0x%08X", uint32(hr))
	}
	return device, nil
}

// CreateCommandQueue12 creates a direct command queue on a D3D12 device.
func CreateCommandQueue12(device12 uintptr) (uintptr, error) {
	desc := CommandQueueDesc{Type: CommandListTypeDirect}
	var queue uintptr
	_, err := Call(device12, D3D12DeviceCreateCommandQueue,
		uintptr(unsafe.Pointer(&desc)),
		uintptr(unsafe.Pointer(&IID_ID3D12CommandQueue)),
		uintptr(unsafe.Pointer(&queue)),
	)
	if err != nil {
		return 0, fmt.Errorf("ID3D12Device::CreateCommandQueue: %w", err)
	}
	return queue, nil
}

// CreateDevice11On12 layers a D3D11 device over an existing D3D12 device
// and its command queue. The returned device is the doorway for wrapping
// D3D12 resources into D3D11 ones.
func CreateDevice11On12(device12, queue uintptr) (device11, context11 uintptr, err error) {
	featureLevel := uint32(FeatureLevel11_0)
	queues := [1]uintptr{queue}
	hr, _, _ := procD3D11On12CreateDevice.Call(
		device12,
		uintptr(CreateDeviceBGRASupport),
		uintptr(unsafe.Pointer(&featureLevel)),
		1,
		uintptr(unsafe.Pointer(&queues[0])),
		1, // NumQueues
		0, // NodeMask
		uintptr(unsafe.Pointer(&device11)),
		uintptr(unsafe.Pointer(&context11)),
		0, // pChosenFeatureLevel
	)
	if int32(hr) < 0 {
		return 0, 0, fmt.Errorf("D3D11On12CreateDevice failed: 0x%08X", uint32(hr))
	}
	return device11, context11, nil
}
