//go:build windows

package d3d

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modDXGI = windows.NewLazySystemDLL("dxgi.dll")

	procCreateDXGIFactory1 = modDXGI.NewProc("CreateDXGIFactory1")
)

// DXGI interface GUIDs.
var (
	IID_IDXGIFactory1   = GUID{0x770aae78, 0xf26f, 0x4dba, [8]byte{0xa8, 0x29, 0x25, 0x3c, 0x83, 0xd1, 0xb3, 0x87}}
	IID_IDXGIFactory2   = GUID{0x50c83a1c, 0xe072, 0x4c48, [8]byte{0x87, 0xb0, 0x36, 0x30, 0xfa, 0x36, 0xa6, 0xd0}}
	IID_IDXGIDevice     = GUID{0x54ec77fa, 0x1377, 0x44e6, [8]byte{0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}}
	IID_IDXGISurface    = GUID{0xcafcb56c, 0x6ac3, 0x4889, [8]byte{0xbf, 0x47, 0x9e, 0x23, 0xbb, 0xd2, 0x60, 0xec}}
	IID_IDXGISwapChain3 = GUID{0x94d99bdb, 0xf1f8, 0x4ab0, [8]byte{0xb2, 0x36, 0x7d, 0xa0, 0x17, 0x0e, 0xda, 0xb1}}
)

// CreateFactory1 creates an IDXGIFactory1 for adapter enumeration and
// swap chain construction.
func CreateFactory1() (uintptr, error) {
	var factory uintptr
	hr, _, _ := procCreateDXGIFactory1.Call(
		uintptr(unsafe.Pointer(&IID_IDXGIFactory1)),
		uintptr(unsafe.Pointer(&factory)),
	)
	if int32(hr) < 0 {
		return 0, fmt.Errorf("CreateDXGIFactory1 failed: 0x%08X", uint32(hr))
	}
	return factory, nil
}
