//go:build windows

package surface

import (
	"fmt"
	"math"
	"syscall"
	"unsafe"

	"github.com/simwidget/overlay/internal/d3d"
	"github.com/simwidget/overlay/internal/framectx"
)

const fontFamily = "Segoe UI"

// d2dTarget draws through an ID2D1RenderTarget or ID2D1DeviceContext. The
// context extends the render target vtable, so one set of ordinals serves
// both families. Draw calls are void in Direct2D; failures accumulate
// inside the target and surface at EndDraw.
type d2dTarget struct {
	rt      uintptr
	brush   uintptr
	formats *[4]uintptr
	width   float32
	height  float32
}

func (t *d2dTarget) Size() (float32, float32) { return t.width, t.height }

func (t *d2dTarget) setColor(c d3d.ColorF) {
	d3d.CallRaw(t.brush, d3d.D2DBrushSetColor, uintptr(unsafe.Pointer(&c)))
}

func (t *d2dTarget) FillRect(r d3d.RectF, c d3d.ColorF) {
	t.setColor(c)
	d3d.CallRaw(t.rt, d3d.D2DRTFillRectangle,
		uintptr(unsafe.Pointer(&r)), t.brush)
}

func (t *d2dTarget) DrawText(text string, font framectx.Font, r d3d.RectF, c d3d.ColorF) {
	u, err := syscall.UTF16FromString(text)
	if err != nil || len(u) <= 1 {
		return
	}
	t.setColor(c)
	d3d.CallRaw(t.rt, d3d.D2DRTDrawText,
		uintptr(unsafe.Pointer(&u[0])),
		uintptr(len(u)-1), // without the terminator
		(*t.formats)[font],
		uintptr(unsafe.Pointer(&r)),
		t.brush,
		d3d.D2DDrawTextOptionsNone,
		0, // DWRITE_MEASURING_MODE_NATURAL
	)
}

// newSolidBrush creates the one brush a bridge retints for every draw.
func newSolidBrush(rt uintptr) (uintptr, error) {
	white := d3d.ColorF{R: 1, G: 1, B: 1, A: 1}
	var brush uintptr
	_, err := d3d.Call(rt, d3d.D2DRTCreateSolidColorBrush,
		uintptr(unsafe.Pointer(&white)),
		0, // brush properties
		uintptr(unsafe.Pointer(&brush)))
	if err != nil {
		return 0, fmt.Errorf("ID2D1RenderTarget::CreateSolidColorBrush: %w", err)
	}
	return brush, nil
}

// newTextFormats builds the four formats the renderer indexes by
// framectx.Font.
func newTextFormats(dwFactory uintptr) (formats [4]uintptr, err error) {
	defer func() {
		if err != nil {
			releaseTextFormats(&formats)
		}
	}()
	if formats[framectx.FontTitle], err = newTextFormat(dwFactory, d3d.DWriteFontWeightBold, 18, d3d.DWriteTextAlignmentLeading); err != nil {
		return formats, err
	}
	if formats[framectx.FontLabel], err = newTextFormat(dwFactory, d3d.DWriteFontWeightNormal, 14, d3d.DWriteTextAlignmentLeading); err != nil {
		return formats, err
	}
	if formats[framectx.FontValue], err = newTextFormat(dwFactory, d3d.DWriteFontWeightNormal, 14, d3d.DWriteTextAlignmentTrailing); err != nil {
		return formats, err
	}
	if formats[framectx.FontSmall], err = newTextFormat(dwFactory, d3d.DWriteFontWeightNormal, 12, d3d.DWriteTextAlignmentLeading); err != nil {
		return formats, err
	}
	return formats, nil
}

func newTextFormat(dwFactory uintptr, weight int, size float32, alignment int) (uintptr, error) {
	family, err := syscall.UTF16PtrFromString(fontFamily)
	if err != nil {
		return 0, err
	}
	locale, err := syscall.UTF16PtrFromString("en-us")
	if err != nil {
		return 0, err
	}
	var tf uintptr
	// fontSize is a FLOAT past the four register parameters; its bits ride
	// the stack slot unchanged.
	_, err = d3d.Call(dwFactory, d3d.DWFactoryCreateTextFormat,
		uintptr(unsafe.Pointer(family)),
		0, // system font collection
		uintptr(weight),
		uintptr(d3d.DWriteFontStyleNormal),
		uintptr(d3d.DWriteFontStretchNormal),
		uintptr(math.Float32bits(size)),
		uintptr(unsafe.Pointer(locale)),
		uintptr(unsafe.Pointer(&tf)),
	)
	if err != nil {
		return 0, fmt.Errorf("IDWriteFactory::CreateTextFormat: %w", err)
	}
	if alignment != d3d.DWriteTextAlignmentLeading {
		d3d.CallRaw(tf, d3d.DWTextFormatSetTextAlignment, uintptr(alignment))
	}
	return tf, nil
}

func releaseTextFormats(formats *[4]uintptr) {
	for i := len(formats) - 1; i >= 0; i-- {
		d3d.Release(formats[i])
		formats[i] = 0
	}
}
