//go:build windows

package d3d

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modD2D1   = windows.NewLazySystemDLL("d2d1.dll")
	modDWrite = windows.NewLazySystemDLL("dwrite.dll")

	procD2D1CreateFactory   = modD2D1.NewProc("D2D1CreateFactory")
	procDWriteCreateFactory = modDWrite.NewProc("DWriteCreateFactory")
)

// Direct2D and DirectWrite interface GUIDs.
var (
	IID_ID2D1Factory1  = GUID{0xbb12d362, 0xdaee, 0x4b9a, [8]byte{0xaa, 0x1d, 0x14, 0xba, 0x40, 0x1c, 0xfa, 0x1f}}
	IID_IDWriteFactory = GUID{0xb859ee5a, 0xd838, 0x4b5b, [8]byte{0xa2, 0xe8, 0x1a, 0xdc, 0x7d, 0x93, 0xdb, 0x48}}
)

// CreateFactoryD2D1 creates a single-threaded ID2D1Factory1. The engine
// confines every 2D call to the render thread, so the single-threaded
// factory's cheaper locking mode applies.
func CreateFactoryD2D1() (uintptr, error) {
	var factory uintptr
	hr, _, _ := procD2D1CreateFactory.Call(
		uintptr(D2DFactoryTypeSingleThreaded),
		uintptr(unsafe.Pointer(&IID_ID2D1Factory1)),
		0, // pFactoryOptions
		uintptr(unsafe.Pointer(&factory)),
	)
	if int32(hr) < 0 {
		return 0, fmt.Errorf("D2D1CreateFactory failed: 0x%08X", uint32(hr))
	}
	return factory, nil
}

// CreateFactoryDWrite creates the shared IDWriteFactory used to build text
// formats.
func CreateFactoryDWrite() (uintptr, error) {
	var factory uintptr
	hr, _, _ := procDWriteCreateFactory.Call(
		uintptr(DWriteFactoryTypeShared),
		uintptr(unsafe.Pointer(&IID_IDWriteFactory)),
		uintptr(unsafe.Pointer(&factory)),
	)
	if int32(hr) < 0 {
		return 0, fmt.Errorf("DWriteCreateFactory failed: 0x%08X", uint32(hr))
	}
	return factory, nil
}
