//go:build windows

package surface

import (
	"fmt"
	"unsafe"

	"github.com/simwidget/overlay/internal/d3d"
	"github.com/simwidget/overlay/internal/framectx"
)

// DX12 is the draw surface bridge for the D3D12 family. Direct2D cannot
// paint on D3D12 resources, so every backbuffer is wrapped through a
// D3D11On12 interop device into a D3D11 resource, and a D2D bitmap target
// is bound to each wrapped resource's DXGI surface. Flip-model chains
// rotate through all their buffers, one slot per index.
type DX12 struct {
	chain3    uintptr
	device12  uintptr
	queue     uintptr
	device11  uintptr
	context11 uintptr
	on12      uintptr

	d2dFactory uintptr
	d2dDevice  uintptr
	d2dCtx     uintptr
	dwFactory  uintptr

	brush   uintptr
	formats [4]uintptr

	slots  []slot12
	guard  pairGuard
	target d2dTarget

	sink     Sink
	rb       *readback
	rbWarned bool
}

// slot12 owns the per-backbuffer chain of resources: the native D3D12
// buffer, its wrapped D3D11 twin, the DXGI surface view of the twin, and
// the D2D bitmap bound to that surface. Slots are never shared.
type slot12 struct {
	res12   uintptr
	wrapped uintptr
	surface uintptr
	bitmap  uintptr
}

// NewDX12 builds an empty DX12 bridge. sink may be nil.
func NewDX12(sink Sink) *DX12 {
	return &DX12{sink: sink}
}

// Init builds the interop device stack and one slot per backbuffer. On any
// failure everything already created is released, reverse order.
func (b *DX12) Init(swapChain uintptr) (ferr error) {
	defer func() {
		if ferr != nil {
			b.Release()
		}
	}()

	var err error
	if b.chain3, err = d3d.QueryInterface(swapChain, &d3d.IID_IDXGISwapChain3); err != nil {
		return fmt.Errorf("surface: swap chain has no IDXGISwapChain3: %w", err)
	}

	var desc d3d.SwapChainDesc
	if _, err := d3d.Call(b.chain3, d3d.DXGISwapChainGetDesc,
		uintptr(unsafe.Pointer(&desc))); err != nil {
		return fmt.Errorf("surface: IDXGISwapChain::GetDesc: %w", err)
	}
	if desc.BufferCount == 0 {
		return fmt.Errorf("surface: swap chain reports zero buffers")
	}

	if _, err := d3d.Call(b.chain3, d3d.DXGISwapChainGetDevice,
		uintptr(unsafe.Pointer(&d3d.IID_ID3D12Device)),
		uintptr(unsafe.Pointer(&b.device12))); err != nil {
		return fmt.Errorf("surface: IDXGISwapChain::GetDevice(ID3D12Device): %w", err)
	}

	if b.queue, err = d3d.CreateCommandQueue12(b.device12); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	if b.device11, b.context11, err = d3d.CreateDevice11On12(b.device12, b.queue); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	if b.on12, err = d3d.QueryInterface(b.device11, &d3d.IID_ID3D11On12Device); err != nil {
		return fmt.Errorf("surface: interop device has no ID3D11On12Device: %w", err)
	}

	if b.d2dFactory, err = d3d.CreateFactoryD2D1(); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	dxgiDevice, err := d3d.QueryInterface(b.device11, &d3d.IID_IDXGIDevice)
	if err != nil {
		return fmt.Errorf("surface: interop device has no IDXGIDevice: %w", err)
	}
	_, err = d3d.Call(b.d2dFactory, d3d.D2DFactory1CreateDevice,
		dxgiDevice, uintptr(unsafe.Pointer(&b.d2dDevice)))
	d3d.Release(dxgiDevice)
	if err != nil {
		return fmt.Errorf("surface: ID2D1Factory1::CreateDevice: %w", err)
	}
	if _, err := d3d.Call(b.d2dDevice, d3d.D2DDeviceCreateDeviceContext,
		uintptr(d3d.D2DDeviceContextOptionsNone),
		uintptr(unsafe.Pointer(&b.d2dCtx))); err != nil {
		return fmt.Errorf("surface: ID2D1Device::CreateDeviceContext: %w", err)
	}
	if b.dwFactory, err = d3d.CreateFactoryDWrite(); err != nil {
		return fmt.Errorf("surface: %w", err)
	}

	b.slots = make([]slot12, 0, desc.BufferCount)
	for i := uint32(0); i < desc.BufferCount; i++ {
		s, err := b.buildSlot(i)
		if err != nil {
			return fmt.Errorf("surface: slot %d: %w", i, err)
		}
		b.slots = append(b.slots, s)
	}

	if b.brush, err = newSolidBrush(b.d2dCtx); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	if b.formats, err = newTextFormats(b.dwFactory); err != nil {
		return fmt.Errorf("surface: %w", err)
	}

	if b.sink != nil {
		b.rb, err = newReadback(b.device11, b.context11,
			desc.BufferDesc.Width, desc.BufferDesc.Height, desc.BufferDesc.Format)
		if err != nil {
			log.Warn("mirror readback unavailable", "error", err)
			b.rb = nil
		}
	}

	b.guard = pairGuard{n: len(b.slots)}
	b.target = d2dTarget{
		rt:      b.d2dCtx,
		brush:   b.brush,
		formats: &b.formats,
		width:   float32(desc.BufferDesc.Width),
		height:  float32(desc.BufferDesc.Height),
	}
	log.Info("dx12 surface ready",
		"buffers", desc.BufferCount,
		"width", desc.BufferDesc.Width, "height", desc.BufferDesc.Height)
	return nil
}

func (b *DX12) buildSlot(index uint32) (s slot12, ferr error) {
	defer func() {
		if ferr != nil {
			s.release()
		}
	}()

	if _, err := d3d.Call(b.chain3, d3d.DXGISwapChainGetBuffer,
		uintptr(index),
		uintptr(unsafe.Pointer(&d3d.IID_ID3D12Resource)),
		uintptr(unsafe.Pointer(&s.res12))); err != nil {
		return s, fmt.Errorf("IDXGISwapChain::GetBuffer: %w", err)
	}

	// The hook runs at Present time, when the buffer sits in PRESENT state;
	// in and out states are both PRESENT so the acquire/release pair leaves
	// the host's state tracking exactly where it found it.
	flags := d3d.ResourceFlags11{BindFlags: d3d.Bind11RenderTarget}
	if _, err := d3d.Call(b.on12, d3d.D3D11On12CreateWrappedResource,
		s.res12,
		uintptr(unsafe.Pointer(&flags)),
		uintptr(d3d.ResourceStatePresent),
		uintptr(d3d.ResourceStatePresent),
		uintptr(unsafe.Pointer(&d3d.IID_ID3D11Resource)),
		uintptr(unsafe.Pointer(&s.wrapped))); err != nil {
		return s, fmt.Errorf("ID3D11On12Device::CreateWrappedResource: %w", err)
	}

	var err error
	if s.surface, err = d3d.QueryInterface(s.wrapped, &d3d.IID_IDXGISurface); err != nil {
		return s, fmt.Errorf("wrapped resource has no IDXGISurface: %w", err)
	}

	props := d3d.BitmapProperties1{
		PixelFormat: d3d.PixelFormat{
			Format:    d3d.FormatUnknown,
			AlphaMode: d3d.D2DAlphaModePremultiplied,
		},
		Options: d3d.D2DBitmapOptionsTarget | d3d.D2DBitmapOptionsCannotDraw,
	}
	if _, err := d3d.Call(b.d2dCtx, d3d.D2DDCCreateBitmapFromDxgiSurface,
		s.surface,
		uintptr(unsafe.Pointer(&props)),
		uintptr(unsafe.Pointer(&s.bitmap))); err != nil {
		return s, fmt.Errorf("ID2D1DeviceContext::CreateBitmapFromDxgiSurface: %w", err)
	}
	return s, nil
}

func (s *slot12) release() {
	d3d.Release(s.bitmap)
	d3d.Release(s.surface)
	d3d.Release(s.wrapped)
	d3d.Release(s.res12)
	*s = slot12{}
}

// Begin acquires the wrapped resource for the backbuffer about to be
// presented and binds its bitmap as the active 2D target.
func (b *DX12) Begin() (framectx.DrawTarget, error) {
	idx := int(d3d.CallRaw(b.chain3, d3d.DXGISwapChain3GetCurrentBackBufferIndex))
	if err := b.guard.acquire(idx); err != nil {
		return nil, err
	}
	s := &b.slots[idx]
	d3d.CallRaw(b.on12, d3d.D3D11On12AcquireWrappedResources,
		uintptr(unsafe.Pointer(&s.wrapped)), 1)
	d3d.CallRaw(b.d2dCtx, d3d.D2DDCSetTarget, s.bitmap)
	d3d.CallRaw(b.d2dCtx, d3d.D2DRTBeginDraw)
	return &b.target, nil
}

// End finishes drawing, releases the wrapped resource, and flushes the
// interop context so the 2D work lands before the host's Present runs.
// Release happens even when EndDraw failed; the acquire/release pair must
// close either way or the slot is corrupt for the host too.
func (b *DX12) End() error {
	idx, err := b.guard.release()
	if err != nil {
		return err
	}
	s := &b.slots[idx]

	hr := d3d.CallRaw(b.d2dCtx, d3d.D2DRTEndDraw, 0, 0)
	d3d.CallRaw(b.d2dCtx, d3d.D2DDCSetTarget, 0)

	if b.rb != nil && int32(hr) >= 0 {
		if cerr := b.rb.capture(s.wrapped, b.sink); cerr != nil && !b.rbWarned {
			log.Warn("mirror capture failed", "error", cerr)
			b.rbWarned = true
		}
	}

	d3d.CallRaw(b.on12, d3d.D3D11On12ReleaseWrappedResources,
		uintptr(unsafe.Pointer(&s.wrapped)), 1)
	d3d.CallRaw(b.context11, d3d.D3D11CtxFlush)

	if int32(hr) < 0 {
		return fmt.Errorf("surface: ID2D1DeviceContext::EndDraw: 0x%08X", uint32(hr))
	}
	return nil
}

// Release tears everything down in reverse creation order: buffer slots
// first, then the interop device, then the 2D stack.
func (b *DX12) Release() {
	if b.rb != nil {
		b.rb.release()
		b.rb = nil
	}
	releaseTextFormats(&b.formats)
	d3d.Release(b.brush)
	for i := len(b.slots) - 1; i >= 0; i-- {
		b.slots[i].release()
	}
	b.slots = nil
	d3d.Release(b.dwFactory)
	d3d.Release(b.d2dCtx)
	d3d.Release(b.d2dDevice)
	d3d.Release(b.d2dFactory)
	d3d.Release(b.on12)
	d3d.Release(b.context11)
	d3d.Release(b.device11)
	d3d.Release(b.queue)
	d3d.Release(b.device12)
	d3d.Release(b.chain3)
	*b = DX12{sink: b.sink}
}
