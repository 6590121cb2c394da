//go:build windows

package d3d

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Call invokes the COM method at vtable index idx on obj and interprets the
// return value as an HRESULT.
func Call(obj uintptr, idx int, args ...uintptr) (uintptr, error) {
	all := make([]uintptr, 0, 1+len(args))
	all = append(all, obj)
	all = append(all, args...)
	hr, _, _ := syscall.SyscallN(VtblEntry(obj, idx), all...)
	if int32(hr) < 0 {
		return hr, fmt.Errorf("COM vtable[%d]: HRESULT 0x%08X", idx, uint32(hr))
	}
	return hr, nil
}

// CallRaw is Call without HRESULT interpretation, for methods that return
// void, counts, or DXGI status codes the caller inspects itself.
func CallRaw(obj uintptr, idx int, args ...uintptr) uintptr {
	all := make([]uintptr, 0, 1+len(args))
	all = append(all, obj)
	all = append(all, args...)
	ret, _, _ := syscall.SyscallN(VtblEntry(obj, idx), all...)
	return ret
}

// Release calls IUnknown::Release. Zero handles are ignored.
func Release(obj uintptr) {
	if obj != 0 {
		syscall.SyscallN(VtblEntry(obj, VtblRelease), obj)
	}
}

// QueryInterface asks obj for the interface identified by iid.
func QueryInterface(obj uintptr, iid *GUID) (uintptr, error) {
	var out uintptr
	if _, err := Call(obj, VtblQueryInterface,
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&out)),
	); err != nil {
		return 0, err
	}
	return out, nil
}
