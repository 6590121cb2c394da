// Package d3d carries the COM plumbing shared by the overlay engine's
// graphics packages: interface GUIDs, vtable dispatch by ordinal, and the
// factory entry points for DXGI, Direct3D 11/12, Direct2D, and DirectWrite.
//
// Method ordinals for every interface the engine touches are declared here
// and nowhere else. They are fixed by the COM ABI and must be exact.
package d3d

import "unsafe"

// GUID is a COM GUID (128-bit).
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// IUnknown method ordinals. Every COM interface starts with these three.
const (
	VtblQueryInterface = 0
	VtblAddRef         = 1
	VtblRelease        = 2
)

// A COM interface pointer points at a structure whose first machine word is
// the vtable pointer; the vtable itself is a contiguous array of function
// pointers in declaration order, IUnknown first. VtblSlot and VtblEntry are
// the only place that layout is encoded. Everything else, including the
// interceptor's slot patching, goes through them.

// VtblSlot returns the address of the vtable slot at index idx of obj, for
// callers that read, patch, or restore an entry in place.
func VtblSlot(obj uintptr, idx int) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	return vtbl + uintptr(idx)*unsafe.Sizeof(uintptr(0))
}

// VtblEntry returns the function pointer stored at vtable index idx of obj.
func VtblEntry(obj uintptr, idx int) uintptr {
	return *(*uintptr)(unsafe.Pointer(VtblSlot(obj, idx)))
}
