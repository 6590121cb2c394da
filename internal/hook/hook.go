// Package hook resolves where a DirectX swap chain implementation keeps its
// Present and ResizeBuffers entries and redirects them through an
// interceptor. Resolution runs once against a throwaway swap chain; the
// interceptor then patches the shared vtable slots so every later Present
// in the process flows through the engine first.
package hook

import "github.com/simwidget/overlay/internal/logging"

var log = logging.L("hook")

// Family selects the DirectX API family a hook targets.
type Family int

const (
	FamilyAuto Family = iota
	FamilyDX11
	FamilyDX12
)

func (f Family) String() string {
	switch f {
	case FamilyDX11:
		return "dx11"
	case FamilyDX12:
		return "dx12"
	default:
		return "auto"
	}
}

// ParseFamily maps a configuration string onto a Family.
func ParseFamily(s string) Family {
	switch s {
	case "dx11":
		return FamilyDX11
	case "dx12":
		return FamilyDX12
	default:
		return FamilyAuto
	}
}

// Addresses is the resolver's product: the entries found at the Present and
// ResizeBuffers ordinals plus the addresses of the vtable slots holding
// them. The slots outlive the throwaway swap chain they were read from
// because the implementation shares one static table across all its swap
// chain instances.
type Addresses struct {
	Present       uintptr
	ResizeBuffers uintptr
	PresentSlot   uintptr
	ResizeSlot    uintptr
}

// PresentFunc handles an intercepted IDXGISwapChain::Present call. The
// handler is responsible for forwarding to the original and returning its
// HRESULT.
type PresentFunc func(swapChain, syncInterval, flags uintptr) uintptr

// ResizeFunc handles an intercepted IDXGISwapChain::ResizeBuffers call,
// with the same forwarding responsibility.
type ResizeFunc func(swapChain, bufferCount, width, height, format, flags uintptr) uintptr
