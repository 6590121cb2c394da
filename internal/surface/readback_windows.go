//go:build windows

package surface

import (
	"fmt"
	"unsafe"

	"github.com/simwidget/overlay/internal/d3d"
)

// readback copies a render-thread texture into CPU memory through a staging
// texture. Both bridges use it to feed the mirror sink; the D3D12 family
// goes through its wrapped D3D11 resources, so one D3D11 implementation
// serves both.
//
// Map stalls until the GPU finishes the copy, which is why capture only
// happens when a sink is attached and only every captureEvery-th frame.
type readback struct {
	device  uintptr
	context uintptr
	staging uintptr
	width   uint32
	height  uint32
	buf     []byte
	frames  uint64
}

const captureEvery = 2

func newReadback(device, context uintptr, width, height, format uint32) (*readback, error) {
	desc := d3d.Texture2DDesc{
		Width:          width,
		Height:         height,
		MipLevels:      1,
		ArraySize:      1,
		Format:         format,
		SampleCount:    1,
		Usage:          d3d.Usage11Staging,
		CPUAccessFlags: d3d.CPUAccess11Read,
	}
	var staging uintptr
	_, err := d3d.Call(device, d3d.D3D11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&desc)),
		0, // pInitialData
		uintptr(unsafe.Pointer(&staging)))
	if err != nil {
		return nil, fmt.Errorf("surface: create staging texture: %w", err)
	}
	return &readback{
		device:  device,
		context: context,
		staging: staging,
		width:   width,
		height:  height,
		buf:     make([]byte, int(width)*int(height)*4),
	}, nil
}

// capture copies src into the staging texture, maps it, and hands the
// tightly packed BGRA rows to the sink. Failures are returned for the
// caller's flood guard; they never fail the frame.
func (r *readback) capture(src uintptr, sink Sink) error {
	r.frames++
	if r.frames%captureEvery != 0 {
		return nil
	}

	d3d.CallRaw(r.context, d3d.D3D11CtxCopyResource, r.staging, src)

	var mapped d3d.MappedSubresource
	if _, err := d3d.Call(r.context, d3d.D3D11CtxMap,
		r.staging, 0, uintptr(d3d.Map11Read), 0,
		uintptr(unsafe.Pointer(&mapped))); err != nil {
		return fmt.Errorf("surface: map staging texture: %w", err)
	}

	// Staging rows carry pitch padding; the wire format wants them packed.
	rowBytes := int(r.width) * 4
	for y := 0; y < int(r.height); y++ {
		srcRow := unsafe.Slice((*byte)(unsafe.Pointer(mapped.PData+uintptr(y)*uintptr(mapped.RowPitch))), rowBytes)
		copy(r.buf[y*rowBytes:(y+1)*rowBytes], srcRow)
	}

	d3d.CallRaw(r.context, d3d.D3D11CtxUnmap, r.staging, 0)

	sink.Frame(r.width, r.height, r.buf)
	return nil
}

func (r *readback) release() {
	d3d.Release(r.staging)
	r.staging = 0
}
