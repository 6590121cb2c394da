//go:build windows

package surface

import (
	"fmt"
	"unsafe"

	"github.com/simwidget/overlay/internal/d3d"
	"github.com/simwidget/overlay/internal/framectx"
)

// DX11 is the draw surface bridge for the D3D11 family: one slot over
// backbuffer zero, with a Direct2D render target created straight on the
// backbuffer's DXGI surface. DISCARD-model chains only ever expose buffer
// zero, so there is no per-frame acquire cycle; the target is created once
// and reused until resize or device loss.
type DX11 struct {
	device     uintptr
	context    uintptr
	backbuffer uintptr
	surface    uintptr
	d2dFactory uintptr
	dwFactory  uintptr
	rt         uintptr
	brush      uintptr
	formats    [4]uintptr

	guard  pairGuard
	target d2dTarget

	sink     Sink
	rb       *readback
	rbWarned bool
}

// NewDX11 builds an empty DX11 bridge. sink may be nil; when set, completed
// frames are copied off the backbuffer for the mirror service.
func NewDX11(sink Sink) *DX11 {
	return &DX11{sink: sink}
}

// Init builds the single buffer slot and every shared drawing resource for
// the swap chain. On any failure everything already created is released and
// the bridge is back at baseline.
func (b *DX11) Init(swapChain uintptr) (ferr error) {
	defer func() {
		if ferr != nil {
			b.Release()
		}
	}()

	var desc d3d.SwapChainDesc
	if _, err := d3d.Call(swapChain, d3d.DXGISwapChainGetDesc,
		uintptr(unsafe.Pointer(&desc))); err != nil {
		return fmt.Errorf("surface: IDXGISwapChain::GetDesc: %w", err)
	}

	if _, err := d3d.Call(swapChain, d3d.DXGISwapChainGetDevice,
		uintptr(unsafe.Pointer(&d3d.IID_ID3D11Device)),
		uintptr(unsafe.Pointer(&b.device))); err != nil {
		return fmt.Errorf("surface: IDXGISwapChain::GetDevice: %w", err)
	}
	d3d.CallRaw(b.device, d3d.D3D11DeviceGetImmediateContext,
		uintptr(unsafe.Pointer(&b.context)))

	if _, err := d3d.Call(swapChain, d3d.DXGISwapChainGetBuffer,
		0,
		uintptr(unsafe.Pointer(&d3d.IID_ID3D11Texture2D)),
		uintptr(unsafe.Pointer(&b.backbuffer))); err != nil {
		return fmt.Errorf("surface: IDXGISwapChain::GetBuffer(0): %w", err)
	}

	var err error
	if b.surface, err = d3d.QueryInterface(b.backbuffer, &d3d.IID_IDXGISurface); err != nil {
		return fmt.Errorf("surface: backbuffer is not a DXGI surface: %w", err)
	}

	if b.d2dFactory, err = d3d.CreateFactoryD2D1(); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	if b.dwFactory, err = d3d.CreateFactoryDWrite(); err != nil {
		return fmt.Errorf("surface: %w", err)
	}

	// FORMAT_UNKNOWN lets Direct2D adopt whatever format the host chose for
	// its backbuffer instead of pinning one here.
	props := d3d.RenderTargetProperties{
		Type: d3d.D2DRenderTargetTypeDefault,
		PixelFormat: d3d.PixelFormat{
			Format:    d3d.FormatUnknown,
			AlphaMode: d3d.D2DAlphaModePremultiplied,
		},
	}
	if _, err := d3d.Call(b.d2dFactory, d3d.D2DFactoryCreateDxgiSurfaceRenderTarget,
		b.surface,
		uintptr(unsafe.Pointer(&props)),
		uintptr(unsafe.Pointer(&b.rt))); err != nil {
		return fmt.Errorf("surface: ID2D1Factory::CreateDxgiSurfaceRenderTarget: %w", err)
	}

	if b.brush, err = newSolidBrush(b.rt); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	if b.formats, err = newTextFormats(b.dwFactory); err != nil {
		return fmt.Errorf("surface: %w", err)
	}

	if b.sink != nil {
		b.rb, err = newReadback(b.device, b.context,
			desc.BufferDesc.Width, desc.BufferDesc.Height, desc.BufferDesc.Format)
		if err != nil {
			// The overlay works without the mirror; log and carry on.
			log.Warn("mirror readback unavailable", "error", err)
			b.rb = nil
		}
	}

	b.guard = pairGuard{n: 1}
	b.target = d2dTarget{
		rt:      b.rt,
		brush:   b.brush,
		formats: &b.formats,
		width:   float32(desc.BufferDesc.Width),
		height:  float32(desc.BufferDesc.Height),
	}
	log.Info("dx11 surface ready",
		"width", desc.BufferDesc.Width, "height", desc.BufferDesc.Height)
	return nil
}

// Begin opens the frame on the single slot.
func (b *DX11) Begin() (framectx.DrawTarget, error) {
	if err := b.guard.acquire(0); err != nil {
		return nil, err
	}
	d3d.CallRaw(b.rt, d3d.D2DRTBeginDraw)
	return &b.target, nil
}

// End closes the frame. EndDraw is where Direct2D surfaces every failure
// accumulated during drawing; D2DERR_RECREATE_TARGET means the device went
// away underneath the target and the whole context must be rebuilt.
func (b *DX11) End() error {
	if _, err := b.guard.release(); err != nil {
		return err
	}
	hr := d3d.CallRaw(b.rt, d3d.D2DRTEndDraw, 0, 0)
	if int32(hr) < 0 {
		return fmt.Errorf("surface: ID2D1RenderTarget::EndDraw: 0x%08X", uint32(hr))
	}
	if b.rb != nil {
		if err := b.rb.capture(b.backbuffer, b.sink); err != nil && !b.rbWarned {
			log.Warn("mirror capture failed", "error", err)
			b.rbWarned = true
		}
	}
	return nil
}

// Release tears everything down in reverse creation order.
func (b *DX11) Release() {
	if b.rb != nil {
		b.rb.release()
		b.rb = nil
	}
	releaseTextFormats(&b.formats)
	d3d.Release(b.brush)
	d3d.Release(b.rt)
	d3d.Release(b.dwFactory)
	d3d.Release(b.d2dFactory)
	d3d.Release(b.surface)
	d3d.Release(b.backbuffer)
	d3d.Release(b.context)
	d3d.Release(b.device)
	*b = DX11{sink: b.sink}
}
