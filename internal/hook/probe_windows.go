//go:build windows

package hook

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/simwidget/overlay/internal/d3d"
)

const probeClassName = "simwidget-probe"

var (
	probeClassOnce sync.Once
	probeClassErr  error
	probeClassPtr  *uint16
)

func registerProbeClass() error {
	probeClassOnce.Do(func() {
		probeClassPtr, probeClassErr = syscall.UTF16PtrFromString(probeClassName)
		if probeClassErr != nil {
			return
		}
		wndProc := syscall.NewCallback(func(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
			return win.DefWindowProc(hwnd, msg, wParam, lParam)
		})
		wc := win.WNDCLASSEX{
			LpfnWndProc:   wndProc,
			HInstance:     win.GetModuleHandle(nil),
			LpszClassName: probeClassPtr,
		}
		wc.CbSize = uint32(unsafe.Sizeof(wc))
		if win.RegisterClassEx(&wc) == 0 {
			probeClassErr = errors.New("RegisterClassEx failed")
		}
	})
	return probeClassErr
}

// probeWindow creates a small window that is never shown. Swap chain
// creation demands a real HWND even for a chain that never presents.
func probeWindow() (win.HWND, error) {
	if err := registerProbeClass(); err != nil {
		return 0, err
	}
	hwnd := win.CreateWindowEx(0, probeClassPtr, probeClassPtr, win.WS_OVERLAPPEDWINDOW,
		0, 0, 64, 64, 0, 0, win.GetModuleHandle(nil), nil)
	if hwnd == 0 {
		return 0, errors.New("CreateWindowEx failed")
	}
	return hwnd, nil
}

// Resolve creates a throwaway device and swap chain for the family, reads
// the Present and ResizeBuffers entries out of the swap chain's vtable, and
// releases every temporary again in reverse creation order. Any failure is
// fatal for the hook instance; the host keeps rendering untouched.
func Resolve(family Family) (Addresses, error) {
	if family == FamilyAuto {
		family = DetectFamily()
	}
	hwnd, err := probeWindow()
	if err != nil {
		return Addresses{}, fmt.Errorf("hook: probe window: %w", err)
	}
	defer win.DestroyWindow(hwnd)

	var addrs Addresses
	switch family {
	case FamilyDX12:
		addrs, err = resolveDX12(hwnd)
	default:
		addrs, err = resolveDX11(hwnd)
	}
	if err != nil {
		return Addresses{}, err
	}
	log.Info("present address resolved",
		"family", family.String(),
		"present", fmt.Sprintf("0x%X", addrs.Present),
		"resize", fmt.Sprintf("0x%X", addrs.ResizeBuffers))
	return addrs, nil
}

func addressesFrom(chain uintptr) Addresses {
	return Addresses{
		Present:       d3d.VtblEntry(chain, d3d.DXGISwapChainPresent),
		ResizeBuffers: d3d.VtblEntry(chain, d3d.DXGISwapChainResizeBuffers),
		PresentSlot:   d3d.VtblSlot(chain, d3d.DXGISwapChainPresent),
		ResizeSlot:    d3d.VtblSlot(chain, d3d.DXGISwapChainResizeBuffers),
	}
}

func resolveDX11(hwnd win.HWND) (Addresses, error) {
	desc := d3d.SwapChainDesc{
		BufferDesc: d3d.ModeDesc{
			Width:       2,
			Height:      2,
			RefreshRate: d3d.Rational{Numerator: 60, Denominator: 1},
			Format:      d3d.FormatB8G8R8A8UNorm,
		},
		SampleDesc:   d3d.SampleDesc{Count: 1},
		BufferUsage:  d3d.UsageRenderTargetOutput,
		BufferCount:  1,
		OutputWindow: uintptr(hwnd),
		Windowed:     1,
		SwapEffect:   d3d.SwapEffectDiscard,
	}
	device, context, chain, err := d3d.CreateDevice11AndSwapChain(&desc, d3d.CreateDeviceBGRASupport)
	if err != nil {
		return Addresses{}, fmt.Errorf("hook: dx11 probe: %w", err)
	}
	addrs := addressesFrom(chain)
	d3d.Release(chain)
	d3d.Release(context)
	d3d.Release(device)
	return addrs, nil
}

func resolveDX12(hwnd win.HWND) (Addresses, error) {
	device12, err := d3d.CreateDevice12()
	if err != nil {
		return Addresses{}, fmt.Errorf("hook: dx12 probe: %w", err)
	}
	queue, err := d3d.CreateCommandQueue12(device12)
	if err != nil {
		d3d.Release(device12)
		return Addresses{}, fmt.Errorf("hook: dx12 probe: %w", err)
	}
	factory, err := d3d.CreateFactory1()
	if err != nil {
		d3d.Release(queue)
		d3d.Release(device12)
		return Addresses{}, fmt.Errorf("hook: dx12 probe: %w", err)
	}
	factory2, err := d3d.QueryInterface(factory, &d3d.IID_IDXGIFactory2)
	if err != nil {
		d3d.Release(factory)
		d3d.Release(queue)
		d3d.Release(device12)
		return Addresses{}, fmt.Errorf("hook: dx12 probe: QueryInterface IDXGIFactory2: %w", err)
	}

	// Flip-model chains present through a command queue, the same shape a
	// real D3D12 host uses.
	desc := d3d.SwapChainDesc1{
		Width:       2,
		Height:      2,
		Format:      d3d.FormatB8G8R8A8UNorm,
		SampleDesc:  d3d.SampleDesc{Count: 1},
		BufferUsage: d3d.UsageRenderTargetOutput,
		BufferCount: 2,
		SwapEffect:  d3d.SwapEffectFlipDiscard,
	}
	var chain uintptr
	_, err = d3d.Call(factory2, d3d.DXGIFactory2CreateSwapChainForHwnd,
		queue,
		uintptr(hwnd),
		uintptr(unsafe.Pointer(&desc)),
		0, // pFullscreenDesc
		0, // pRestrictToOutput
		uintptr(unsafe.Pointer(&chain)),
	)
	if err != nil {
		d3d.Release(factory2)
		d3d.Release(factory)
		d3d.Release(queue)
		d3d.Release(device12)
		return Addresses{}, fmt.Errorf("hook: dx12 probe: CreateSwapChainForHwnd: %w", err)
	}

	addrs := addressesFrom(chain)
	d3d.Release(chain)
	d3d.Release(factory2)
	d3d.Release(factory)
	d3d.Release(queue)
	d3d.Release(device12)
	return addrs, nil
}
