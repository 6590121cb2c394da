//go:build windows

package d3d

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modD3D11 = windows.NewLazySystemDLL("d3d11.dll")

	procD3D11CreateDevice             = modD3D11.NewProc("D3D11CreateDevice")
	procD3D11CreateDeviceAndSwapChain = modD3D11.NewProc("D3D11CreateDeviceAndSwapChain")
)

// D3D11 creation constants.
const (
	DriverTypeHardware = 1 // D3D_DRIVER_TYPE_HARDWARE
	FeatureLevel11_0   = 0xb000
	SDKVersion11       = 7

	// BGRA support is mandatory for Direct2D interop on the device.
	CreateDeviceBGRASupport = 0x20
)

// D3D11 resource constants.
const (
	Usage11Default = 0
	Usage11Staging = 3

	Bind11RenderTarget = 0x20

	CPUAccess11Read = 0x20000

	Map11Read = 1 // D3D11_MAP_READ
)

// ID3D11Device, ID3D11DeviceContext, and ID3D11Texture2D method ordinals.
const (
	D3D11DeviceCreateTexture2D     = 5
	D3D11DeviceGetImmediateContext = 40

	D3D11CtxMap          = 14
	D3D11CtxUnmap        = 15
	D3D11CtxCopyResource = 47
	D3D11CtxFlush        = 111

	D3D11Texture2DGetDesc = 10
)

// D3D11 interface GUIDs.
var (
	IID_ID3D11Device    = GUID{0xdb6f6ddb, 0xac77, 0x4e88, [8]byte{0x82, 0x53, 0x81, 0x9d, 0xf9, 0xbb, 0xf1, 0x40}}
	IID_ID3D11Texture2D = GUID{0x6f15aaf2, 0xd208, 0x4e89, [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
	IID_ID3D11Resource  = GUID{0xdc8e63f3, 0xd12b, 0x4952, [8]byte{0xb4, 0x7b, 0x5e, 0x45, 0x02, 0x6a, 0x86, 0x2d}}
)

// Texture2DDesc matches D3D11_TEXTURE2D_DESC.
type Texture2DDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleCount    uint32 // DXGI_SAMPLE_DESC.Count
	SampleQuality  uint32 // DXGI_SAMPLE_DESC.Quality
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

// MappedSubresource matches D3D11_MAPPED_SUBRESOURCE.
type MappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

// CreateDevice11 creates a hardware D3D11 device with the given creation
// flags and returns the device and its immediate context.
func CreateDevice11(flags uint32) (device, context uintptr, err error) {
	featureLevel := uint32(FeatureLevel11_0)
	var actualLevel uint32
	hr, _, _ := procD3D11CreateDevice.Call(
		0, // pAdapter (NULL = default)
		uintptr(DriverTypeHardware),
		0, // Software
		uintptr(flags),
		uintptr(unsafe.Pointer(&featureLevel)),
		1,
		uintptr(SDKVersion11),
		uintptr(unsafe.Pointer(&device)),
		uintptr(unsafe.Pointer(&actualLevel)),
		uintptr(unsafe.Pointer(&context)),
	)
	if int32(hr) < 0 {
		return 0, 0, fmt.Errorf("D3D11CreateDevice failed: 0x%08X", uint32(hr))
	}
	return device, context, nil
}

// CreateDevice11AndSwapChain creates a hardware D3D11 device together with
// a swap chain described by desc (the target window rides in the desc).
func CreateDevice11AndSwapChain(desc *SwapChainDesc, flags uint32) (device, context, swapChain uintptr, err error) {
	featureLevel := uint32(FeatureLevel11_0)
	var actualLevel uint32
	hr, _, _ := procD3D11CreateDeviceAndSwapChain.Call(
		0, // pAdapter (NULL = default)
		uintptr(DriverTypeHardware),
		0, // Software
		uintptr(flags),
		uintptr(unsafe.Pointer(&featureLevel)),
		1,
		uintptr(SDKVersion11),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&swapChain)),
		uintptr(unsafe.Pointer(&device)),
		uintptr(unsafe.Pointer(&actualLevel)),
		uintptr(unsafe.Pointer(&context)),
	)
	if int32(hr) < 0 {
		return 0, 0, 0, fmt.Errorf("D3D11CreateDeviceAndSwapChain failed: 0x%08X", uint32(hr))
	}
	return device, context, swapChain, nil
}
