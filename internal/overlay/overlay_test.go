package overlay

import (
	"testing"
	"time"

	"github.com/simwidget/overlay/internal/d3d"
	"github.com/simwidget/overlay/internal/framectx"
	"github.com/simwidget/overlay/internal/telemetry"
)

// recordingTarget captures every draw call with its rectangle and color.
type recordingTarget struct {
	w, h  float32
	fills []fillCall
	texts []textCall
}

type fillCall struct {
	rect  d3d.RectF
	color d3d.ColorF
}

type textCall struct {
	text  string
	font  framectx.Font
	rect  d3d.RectF
	color d3d.ColorF
}

func (t *recordingTarget) Size() (float32, float32) { return t.w, t.h }

func (t *recordingTarget) FillRect(r d3d.RectF, c d3d.ColorF) {
	t.fills = append(t.fills, fillCall{r, c})
}

func (t *recordingTarget) DrawText(text string, font framectx.Font, r d3d.RectF, c d3d.ColorF) {
	t.texts = append(t.texts, textCall{text, font, r, c})
}

func (t *recordingTarget) findText(s string) (textCall, bool) {
	for _, c := range t.texts {
		if c.text == s {
			return c, true
		}
	}
	return textCall{}, false
}

func newTarget() *recordingTarget { return &recordingTarget{w: 1920, h: 1080} }

func staticSnapshot(s telemetry.Snapshot) func() telemetry.Snapshot {
	return func() telemetry.Snapshot { return s }
}

func TestZeroSnapshotRendersCompletely(t *testing.T) {
	r, err := New(Options{Snapshot: staticSnapshot(telemetry.Snapshot{}), Opacity: 0.8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	target := newTarget()
	if err := r.Render(target); err != nil {
		t.Fatalf("Render with zero snapshot: %v", err)
	}
	if len(target.fills) != 1 {
		t.Errorf("fills = %d, want 1 panel background", len(target.fills))
	}
	// Title, status line, and a label+value pair per default row.
	want := 2 + 2*len(DefaultProfile().Rows)
	if len(target.texts) != want {
		t.Errorf("text draws = %d, want %d", len(target.texts), want)
	}
	if _, ok := target.findText("0 ft"); !ok {
		t.Error("zero altitude row missing")
	}
	if _, ok := target.findText("OFF"); !ok {
		t.Error("engine-off row missing")
	}
}

func TestConnectionStatusLine(t *testing.T) {
	snap := telemetry.Snapshot{}
	r, err := New(Options{Snapshot: func() telemetry.Snapshot { return snap }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	target := newTarget()
	r.Render(target)
	if _, ok := target.findText("NO LINK, LAST KNOWN"); !ok {
		t.Error("disconnected indicator missing while not connected")
	}

	snap.Connected = true
	target = newTarget()
	r.Render(target)
	up, ok := target.findText("LINK UP")
	if !ok {
		t.Fatal("LINK UP missing while connected")
	}
	if up.color != colGood {
		t.Errorf("LINK UP color = %+v, want good", up.color)
	}
}

func TestEngineStateColors(t *testing.T) {
	snap := telemetry.Snapshot{EngineRunning: true, Connected: true}
	r, _ := New(Options{Snapshot: func() telemetry.Snapshot { return snap }})

	target := newTarget()
	r.Render(target)
	running, ok := target.findText("RUNNING")
	if !ok {
		t.Fatal("RUNNING missing")
	}

	snap.EngineRunning = false
	target = newTarget()
	r.Render(target)
	off, ok := target.findText("OFF")
	if !ok {
		t.Fatal("OFF missing")
	}
	if running.color == off.color {
		t.Errorf("engine running and off share color %+v", running.color)
	}
}

func TestFuelThresholdColors(t *testing.T) {
	cases := []struct {
		quantity float64
		want     d3d.ColorF
	}{
		{50, colText},
		{20, colWarn},
		{5, colBad},
	}
	for _, c := range cases {
		snap := telemetry.Snapshot{FuelQuantity: c.quantity, FuelCapacity: 100}
		_, got := rowValue(SourceFuel, snap)
		if got != c.want {
			t.Errorf("fuel %v/100 color = %+v, want %+v", c.quantity, got, c.want)
		}
	}
}

func TestPanelStaysInsideEveryCorner(t *testing.T) {
	for _, corner := range []Corner{TopLeft, TopRight, BottomLeft, BottomRight} {
		r, _ := New(Options{Snapshot: staticSnapshot(telemetry.Snapshot{}), Corner: corner})
		target := newTarget()
		r.Render(target)
		if len(target.fills) != 1 {
			t.Fatalf("%v: fills = %d", corner, len(target.fills))
		}
		p := target.fills[0].rect
		if p.Left < 0 || p.Top < 0 || p.Right > target.w || p.Bottom > target.h {
			t.Errorf("%v: panel %+v leaves the %gx%g frame", corner, p, target.w, target.h)
		}
		if p.Right <= p.Left || p.Bottom <= p.Top {
			t.Errorf("%v: degenerate panel %+v", corner, p)
		}
	}
}

func TestHiddenRendererDrawsNothing(t *testing.T) {
	r, _ := New(Options{Snapshot: staticSnapshot(telemetry.Snapshot{})})
	r.Hide()

	target := newTarget()
	if err := r.Render(target); err != nil {
		t.Fatalf("Render while hidden: %v", err)
	}
	if len(target.fills) != 0 || len(target.texts) != 0 {
		t.Errorf("hidden renderer drew %d fills, %d texts", len(target.fills), len(target.texts))
	}

	if got := r.Toggle(); !got {
		t.Error("Toggle from hidden returned false")
	}
	target = newTarget()
	r.Render(target)
	if len(target.fills) == 0 {
		t.Error("renderer still hidden after toggle")
	}
}

func TestSetCorner(t *testing.T) {
	r, _ := New(Options{Snapshot: staticSnapshot(telemetry.Snapshot{})})
	if err := r.SetCorner("bottom-right"); err != nil {
		t.Fatalf("SetCorner: %v", err)
	}
	if got := r.Corner(); got != BottomRight {
		t.Errorf("corner = %v, want bottom-right", got)
	}
	if err := r.SetCorner("center"); err == nil {
		t.Error("SetCorner accepted an unknown corner")
	}
}

// TestDrawLatencyBudget formats and lays out frames the way the render
// thread does and checks the CPU-side cost stays far under the 2ms budget.
func TestDrawLatencyBudget(t *testing.T) {
	snap := telemetry.Snapshot{
		Altitude: 12500, Airspeed: 214, Heading: 87.4, VerticalSpeed: -450,
		Throttle: 78, EngineRunning: true, FuelQuantity: 31.2, FuelCapacity: 56,
		Connected: true,
	}
	r, _ := New(Options{Snapshot: staticSnapshot(snap)})
	target := newTarget()

	const frames = 500
	start := time.Now()
	for i := 0; i < frames; i++ {
		target.fills = target.fills[:0]
		target.texts = target.texts[:0]
		if err := r.Render(target); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	perFrame := time.Since(start) / frames
	if perFrame > 2*time.Millisecond {
		t.Errorf("render cost %v per frame, budget 2ms", perFrame)
	}
}
