package d3d

// DXGI formats and flags used by the engine.
const (
	FormatUnknown       = 0
	FormatR8G8B8A8UNorm = 28 // DXGI_FORMAT_R8G8B8A8_UNORM
	FormatB8G8R8A8UNorm = 87 // DXGI_FORMAT_B8G8R8A8_UNORM

	UsageRenderTargetOutput = 0x20 // DXGI_USAGE_RENDER_TARGET_OUTPUT

	SwapEffectDiscard     = 0
	SwapEffectFlipDiscard = 4
)

// HRESULT values the per-frame path distinguishes. Failures have the high
// bit set; DXGI_STATUS_OCCLUDED is a success code meaning the window is not
// visible. D2DERR_RECREATE_TARGET means the 2D target's device went away
// and the drawing stack must be rebuilt.
const (
	DXGIStatusOccluded     = 0x087A0001
	DXGIErrorInvalidCall   = 0x887A0001
	DXGIErrorNotFound      = 0x887A0002
	DXGIErrorDeviceRemoved = 0x887A0005
	DXGIErrorDeviceReset   = 0x887A0007
	DXGIErrorAccessLost    = 0x887A0026
	D2DErrRecreateTarget   = 0x8899000C
)

// IDXGISwapChain method ordinals.
//
// Fixed by the COM ABI and must be exact. IUnknown occupies 0-2,
// IDXGIObject 3-6, IDXGIDeviceSubObject adds GetDevice at 7, then
// IDXGISwapChain's own methods begin with Present at 8.
// GetCurrentBackBufferIndex arrives with the IDXGISwapChain3 upgrade at 36.
const (
	DXGISwapChainGetDevice     = 7
	DXGISwapChainPresent       = 8
	DXGISwapChainGetBuffer     = 9
	DXGISwapChainGetDesc       = 12
	DXGISwapChainResizeBuffers = 13

	DXGISwapChain3GetCurrentBackBufferIndex = 36
)

// IDXGIFactory family and IDXGIAdapter1 ordinals.
const (
	DXGIFactory1EnumAdapters1          = 12 // IDXGIFactory1
	DXGIFactory2CreateSwapChainForHwnd = 15 // IDXGIFactory2

	DXGIAdapter1GetDesc1 = 10 // IDXGIAdapter1
)

type Rational struct {
	Numerator   uint32
	Denominator uint32
}

// ModeDesc matches DXGI_MODE_DESC.
type ModeDesc struct {
	Width            uint32
	Height           uint32
	RefreshRate      Rational
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

// SampleDesc matches DXGI_SAMPLE_DESC.
type SampleDesc struct {
	Count   uint32
	Quality uint32
}

// SwapChainDesc matches DXGI_SWAP_CHAIN_DESC.
type SwapChainDesc struct {
	BufferDesc   ModeDesc
	SampleDesc   SampleDesc
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow uintptr
	Windowed     int32 // BOOL
	SwapEffect   uint32
	Flags        uint32
}

// SwapChainDesc1 matches DXGI_SWAP_CHAIN_DESC1, used with
// IDXGIFactory2::CreateSwapChainForHwnd.
type SwapChainDesc1 struct {
	Width       uint32
	Height      uint32
	Format      uint32
	Stereo      int32 // BOOL
	SampleDesc  SampleDesc
	BufferUsage uint32
	BufferCount uint32
	Scaling     uint32
	SwapEffect  uint32
	AlphaMode   uint32
	Flags       uint32
}

// LUID matches the Windows LUID struct.
type LUID struct {
	LowPart  uint32
	HighPart int32
}

// AdapterDesc1 matches DXGI_ADAPTER_DESC1.
type AdapterDesc1 struct {
	Description           [128]uint16
	VendorID              uint32
	DeviceID              uint32
	SubSysID              uint32
	Revision              uint32
	DedicatedVideoMemory  uintptr
	DedicatedSystemMemory uintptr
	SharedSystemMemory    uintptr
	AdapterLUID           LUID
	Flags                 uint32
}

// DXGI_ADAPTER_DESC1 flag: software rasterizer, not real hardware.
const AdapterFlagSoftware = 2
