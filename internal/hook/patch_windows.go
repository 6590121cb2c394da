//go:build windows

package hook

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// writeSlot stores value at addr after lifting write protection. Vtables
// live in read-only pages, so the writable window is kept as small as
// possible and the previous protection goes back immediately.
func writeSlot(addr, value uintptr) error {
	size := unsafe.Sizeof(value)
	var old uint32
	if err := windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READWRITE, &old); err != nil {
		return fmt.Errorf("VirtualProtect: %w", err)
	}
	*(*uintptr)(unsafe.Pointer(addr)) = value
	var scratch uint32
	windows.VirtualProtect(addr, size, old, &scratch)
	return nil
}

// newTrampolines wraps the interceptor's handlers into native-callable
// entry points. Callback cells are process-permanent, so one pair is made
// per interceptor and reused across reinstalls.
func newTrampolines(ic *Interceptor) (present, resize uintptr) {
	present = windows.NewCallback(func(swapChain, syncInterval, flags uintptr) uintptr {
		return ic.handlePresent(swapChain, syncInterval, flags)
	})
	resize = windows.NewCallback(func(swapChain, bufferCount, width, height, format, flags uintptr) uintptr {
		return ic.handleResize(swapChain, bufferCount, width, height, format, flags)
	})
	return present, resize
}

func currentThreadID() uint32 {
	return windows.GetCurrentThreadId()
}

func bindPresent(addr uintptr) func(swapChain, syncInterval, flags uintptr) uintptr {
	return func(swapChain, syncInterval, flags uintptr) uintptr {
		ret, _, _ := syscall.SyscallN(addr, swapChain, syncInterval, flags)
		return ret
	}
}

func bindResize(addr uintptr) func(swapChain, bufferCount, width, height, format, flags uintptr) uintptr {
	return func(swapChain, bufferCount, width, height, format, flags uintptr) uintptr {
		ret, _, _ := syscall.SyscallN(addr, swapChain, bufferCount, width, height, format, flags)
		return ret
	}
}

// DetectFamily reports which DirectX runtime the current process has
// loaded already. A process rendering through D3D12 always has d3d12.dll
// mapped; plain D3D11 hosts usually do not.
func DetectFamily() Family {
	name, err := windows.UTF16PtrFromString("d3d12.dll")
	if err != nil {
		return FamilyDX11
	}
	var h windows.Handle
	if err := windows.GetModuleHandleEx(windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, name, &h); err == nil && h != 0 {
		return FamilyDX12
	}
	return FamilyDX11
}
