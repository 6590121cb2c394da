package d3d

// Direct2D enumerations.
const (
	D2DFactoryTypeSingleThreaded = 0

	D2DRenderTargetTypeDefault = 0

	D2DAlphaModePremultiplied = 1
	D2DAlphaModeIgnore        = 2

	D2DBitmapOptionsTarget     = 0x1
	D2DBitmapOptionsCannotDraw = 0x2

	D2DDeviceContextOptionsNone = 0

	D2DDrawTextOptionsNone = 0
)

// DirectWrite enumerations.
const (
	DWriteFactoryTypeShared = 0

	DWriteFontWeightNormal = 400
	DWriteFontWeightBold   = 700

	DWriteFontStyleNormal   = 0
	DWriteFontStretchNormal = 5

	DWriteTextAlignmentLeading  = 0
	DWriteTextAlignmentTrailing = 1
	DWriteTextAlignmentCenter   = 2

	DWriteParagraphAlignmentNear = 0
)

// ID2D1Factory and ID2D1Factory1 method ordinals.
const (
	D2DFactoryCreateDxgiSurfaceRenderTarget = 15
	D2DFactory1CreateDevice                 = 17
)

// ID2D1Device ordinal.
const D2DDeviceCreateDeviceContext = 4

// ID2D1RenderTarget method ordinals. ID2D1DeviceContext extends the render
// target vtable, so the context answers all of these plus its own two below.
const (
	D2DRTCreateSolidColorBrush = 8
	D2DRTFillRectangle         = 17
	D2DRTDrawText              = 27
	D2DRTFlush                 = 42
	D2DRTClear                 = 47
	D2DRTBeginDraw             = 48
	D2DRTEndDraw               = 49

	D2DDCCreateBitmapFromDxgiSurface = 62
	D2DDCSetTarget                   = 74
)

// ID2D1SolidColorBrush ordinal. One brush serves every draw call; SetColor
// retints it instead of allocating per color.
const D2DBrushSetColor = 8

// IDWriteFactory and IDWriteTextFormat method ordinals.
const (
	DWFactoryCreateTextFormat = 15

	DWTextFormatSetTextAlignment      = 3
	DWTextFormatSetParagraphAlignment = 4
)

// ColorF matches D2D1_COLOR_F.
type ColorF struct {
	R float32
	G float32
	B float32
	A float32
}

// RectF matches D2D1_RECT_F.
type RectF struct {
	Left   float32
	Top    float32
	Right  float32
	Bottom float32
}

// PixelFormat matches D2D1_PIXEL_FORMAT.
type PixelFormat struct {
	Format    uint32
	AlphaMode uint32
}

// RenderTargetProperties matches D2D1_RENDER_TARGET_PROPERTIES.
type RenderTargetProperties struct {
	Type        uint32
	PixelFormat PixelFormat
	DpiX        float32
	DpiY        float32
	Usage       uint32
	MinLevel    uint32
}

// BitmapProperties1 matches D2D1_BITMAP_PROPERTIES1.
type BitmapProperties1 struct {
	PixelFormat  PixelFormat
	DpiX         float32
	DpiY         float32
	Options      uint32
	ColorContext uintptr
}
