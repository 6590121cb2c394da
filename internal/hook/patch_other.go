//go:build !windows

package hook

import "unsafe"

// Non-Windows builds exist so the interceptor's slot bookkeeping stays
// testable on any development machine. Slots here are ordinary Go memory
// and nothing native ever runs through a trampoline.

func writeSlot(addr, value uintptr) error {
	*(*uintptr)(unsafe.Pointer(addr)) = value
	return nil
}

func newTrampolines(ic *Interceptor) (present, resize uintptr) {
	// Distinct nonzero markers, unique per interceptor instance.
	return uintptr(unsafe.Pointer(ic)), uintptr(unsafe.Pointer(ic)) + 1
}

func currentThreadID() uint32 { return 1 }

func bindPresent(addr uintptr) func(swapChain, syncInterval, flags uintptr) uintptr {
	return func(swapChain, syncInterval, flags uintptr) uintptr { return 0 }
}

func bindResize(addr uintptr) func(swapChain, bufferCount, width, height, format, flags uintptr) uintptr {
	return func(swapChain, bufferCount, width, height, format, flags uintptr) uintptr { return 0 }
}

// DetectFamily has nothing to inspect off Windows.
func DetectFamily() Family { return FamilyDX11 }
