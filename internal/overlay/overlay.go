// Package overlay draws the telemetry panel onto each frame's draw target.
// The renderer owns layout and colors only; everything it paints comes from
// the latest telemetry snapshot and the optional host stats sampler.
package overlay

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/simwidget/overlay/internal/d3d"
	"github.com/simwidget/overlay/internal/framectx"
	"github.com/simwidget/overlay/internal/hoststats"
	"github.com/simwidget/overlay/internal/logging"
	"github.com/simwidget/overlay/internal/telemetry"
)

var log = logging.L("overlay")

// Corner selects which corner of the frame anchors the panel.
type Corner int32

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

func (c Corner) String() string {
	switch c {
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return "top-left"
	}
}

// ParseCorner maps a configuration string onto a Corner.
func ParseCorner(s string) (Corner, error) {
	switch strings.ToLower(s) {
	case "top-left", "":
		return TopLeft, nil
	case "top-right":
		return TopRight, nil
	case "bottom-left":
		return BottomLeft, nil
	case "bottom-right":
		return BottomRight, nil
	default:
		return TopLeft, fmt.Errorf("overlay: unknown corner %q", s)
	}
}

// Panel geometry. Row heights are fixed; the panel grows with the profile's
// row count.
const (
	panelWidth  = 230
	margin      = 16
	pad         = 10
	titleHeight = 24
	lineHeight  = 16
	rowHeight   = 19
)

var (
	colTitle = d3d.ColorF{R: 1, G: 1, B: 1, A: 1}
	colText  = d3d.ColorF{R: 0.92, G: 0.92, B: 0.92, A: 1}
	colDim   = d3d.ColorF{R: 0.62, G: 0.62, B: 0.62, A: 1}
	colGood  = d3d.ColorF{R: 0.35, G: 0.85, B: 0.4, A: 1}
	colWarn  = d3d.ColorF{R: 0.95, G: 0.75, B: 0.2, A: 1}
	colBad   = d3d.ColorF{R: 0.9, G: 0.3, B: 0.25, A: 1}
)

// Options configures a Renderer.
type Options struct {
	// Snapshot supplies the telemetry state for the frame. Required.
	Snapshot func() telemetry.Snapshot

	// HostStats optionally supplies a host process stats row.
	HostStats func() (hoststats.Stats, bool)

	// Profile selects the data rows; nil uses DefaultProfile.
	Profile *Profile

	Corner  Corner
	Opacity float64 // panel background alpha, clamped to 0..1
}

// Renderer paints the fixed-layout panel. Visibility and corner can be
// flipped from the control channel's goroutine; everything else is owned by
// the render thread.
type Renderer struct {
	snapshot  func() telemetry.Snapshot
	hostStats func() (hoststats.Stats, bool)
	profile   *Profile
	opacity   float32

	visible atomic.Bool
	corner  atomic.Int32
}

// New builds a renderer. The panel starts visible.
func New(opts Options) (*Renderer, error) {
	if opts.Snapshot == nil {
		return nil, fmt.Errorf("overlay: Options.Snapshot is required")
	}
	profile := opts.Profile
	if profile == nil {
		profile = DefaultProfile()
	}
	if err := profile.validate(); err != nil {
		return nil, err
	}
	opacity := opts.Opacity
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	r := &Renderer{
		snapshot:  opts.Snapshot,
		hostStats: opts.HostStats,
		profile:   profile,
		opacity:   float32(opacity),
	}
	r.visible.Store(true)
	r.corner.Store(int32(opts.Corner))
	return r, nil
}

// Show, Hide, Toggle, and Visible drive the panel from the control channel.
func (r *Renderer) Show() { r.visible.Store(true) }
func (r *Renderer) Hide() { r.visible.Store(false) }

func (r *Renderer) Toggle() bool {
	for {
		v := r.visible.Load()
		if r.visible.CompareAndSwap(v, !v) {
			return !v
		}
	}
}

func (r *Renderer) Visible() bool { return r.visible.Load() }

// SetCorner moves the panel to a named corner.
func (r *Renderer) SetCorner(name string) error {
	c, err := ParseCorner(name)
	if err != nil {
		return err
	}
	r.corner.Store(int32(c))
	log.Info("panel moved", "corner", c.String())
	return nil
}

// Corner returns the current anchor corner.
func (r *Renderer) Corner() Corner { return Corner(r.corner.Load()) }

// Render paints one frame. It runs on the render thread inside the hook
// handler and must complete with an all-zero snapshot; every value path
// below formats defaults without branching on presence.
func (r *Renderer) Render(target framectx.DrawTarget) error {
	if !r.visible.Load() {
		return nil
	}
	snap := r.snapshot()

	rows := len(r.profile.Rows)
	stats, haveStats := hoststats.Stats{}, false
	if r.hostStats != nil {
		stats, haveStats = r.hostStats()
	}
	if haveStats {
		rows++
	}

	panelHeight := float32(2*pad + titleHeight + lineHeight + rows*rowHeight)
	panel := r.panelRect(target, panelHeight)
	target.FillRect(panel, d3d.ColorF{A: r.opacity * 0.85})

	x := panel.Left + pad
	right := panel.Right - pad
	y := panel.Top + pad

	target.DrawText(r.profile.Title, framectx.FontTitle,
		d3d.RectF{Left: x, Top: y, Right: right, Bottom: y + titleHeight}, colTitle)
	y += titleHeight

	statusText, statusColor := "LINK UP", colGood
	if !snap.Connected {
		statusText, statusColor = "NO LINK, LAST KNOWN", colWarn
	}
	target.DrawText(statusText, framectx.FontSmall,
		d3d.RectF{Left: x, Top: y, Right: right, Bottom: y + lineHeight}, statusColor)
	y += lineHeight

	for _, row := range r.profile.Rows {
		value, color := rowValue(row.Source, snap)
		rect := d3d.RectF{Left: x, Top: y, Right: right, Bottom: y + rowHeight}
		target.DrawText(row.Label, framectx.FontLabel, rect, colDim)
		target.DrawText(value, framectx.FontValue, rect, color)
		y += rowHeight
	}

	if haveStats {
		rect := d3d.RectF{Left: x, Top: y, Right: right, Bottom: y + rowHeight}
		target.DrawText("HOST", framectx.FontLabel, rect, colDim)
		target.DrawText(fmt.Sprintf("CPU %.0f%%  RSS %.0f MB", stats.CPUPercent, stats.RSSMB),
			framectx.FontValue, rect, colDim)
	}
	return nil
}

func (r *Renderer) panelRect(target framectx.DrawTarget, height float32) d3d.RectF {
	w, h := target.Size()
	rect := d3d.RectF{Left: margin, Top: margin, Right: margin + panelWidth, Bottom: margin + height}
	switch Corner(r.corner.Load()) {
	case TopRight:
		rect.Left, rect.Right = w-margin-panelWidth, w-margin
	case BottomLeft:
		rect.Top, rect.Bottom = h-margin-height, h-margin
	case BottomRight:
		rect.Left, rect.Right = w-margin-panelWidth, w-margin
		rect.Top, rect.Bottom = h-margin-height, h-margin
	}
	return rect
}

// rowValue formats one profile row from the snapshot and picks its color.
// Threshold coloring lives here: engine state and fuel fraction get
// distinct colors, everything else renders in the plain text color.
func rowValue(source string, snap telemetry.Snapshot) (string, d3d.ColorF) {
	switch source {
	case SourceAltitude:
		return fmt.Sprintf("%.0f ft", snap.Altitude), colText
	case SourceAirspeed:
		return fmt.Sprintf("%.0f kt", snap.Airspeed), colText
	case SourceHeading:
		return fmt.Sprintf("%03.0f", snap.Heading), colText
	case SourceVerticalSpeed:
		return fmt.Sprintf("%+.0f fpm", snap.VerticalSpeed), colText
	case SourceThrottle:
		return fmt.Sprintf("%.0f%%", snap.Throttle), colText
	case SourceEngine:
		if snap.EngineRunning {
			return "RUNNING", colGood
		}
		return "OFF", colDim
	case SourceFuel:
		color := colText
		switch f := snap.FuelFraction(); {
		case f < 0.10:
			color = colBad
		case f < 0.25:
			color = colWarn
		}
		return fmt.Sprintf("%.1f / %.1f gal", snap.FuelQuantity, snap.FuelCapacity), color
	default:
		return "", colDim
	}
}
