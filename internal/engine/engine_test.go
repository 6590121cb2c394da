package engine

import (
	"errors"
	"runtime"
	"testing"
	"unsafe"

	"github.com/simwidget/overlay/internal/d3d"
	"github.com/simwidget/overlay/internal/framectx"
	"github.com/simwidget/overlay/internal/hook"
)

// fakeChain lays a COM-shaped vtable out in Go memory so the interceptor
// has real slots to patch.
type fakeChain struct {
	vtbl [16]uintptr
	self uintptr
}

func newFakeChain() *fakeChain {
	c := &fakeChain{}
	for i := range c.vtbl {
		c.vtbl[i] = uintptr(0x2000 + i)
	}
	c.self = uintptr(unsafe.Pointer(&c.vtbl[0]))
	return c
}

func (c *fakeChain) ptr() uintptr { return uintptr(unsafe.Pointer(&c.self)) }

func (c *fakeChain) resolve(hook.Family) (hook.Addresses, error) {
	return hook.Addresses{
		Present:       d3d.VtblEntry(c.ptr(), d3d.DXGISwapChainPresent),
		ResizeBuffers: d3d.VtblEntry(c.ptr(), d3d.DXGISwapChainResizeBuffers),
		PresentSlot:   d3d.VtblSlot(c.ptr(), d3d.DXGISwapChainPresent),
		ResizeSlot:    d3d.VtblSlot(c.ptr(), d3d.DXGISwapChainResizeBuffers),
	}, nil
}

type countingBridge struct {
	inits, releases int
	live            bool
}

type nopTarget struct{}

func (nopTarget) Size() (float32, float32)                              { return 1920, 1080 }
func (nopTarget) FillRect(d3d.RectF, d3d.ColorF)                        {}
func (nopTarget) DrawText(string, framectx.Font, d3d.RectF, d3d.ColorF) {}

func (b *countingBridge) Init(uintptr) error {
	b.inits++
	b.live = true
	return nil
}
func (b *countingBridge) Begin() (framectx.DrawTarget, error) { return nopTarget{}, nil }
func (b *countingBridge) End() error                          { return nil }
func (b *countingBridge) Release() {
	b.releases++
	b.live = false
}

func noRender(framectx.DrawTarget) error { return nil }

func newTestEngine(t *testing.T, chain *fakeChain, bridge framectx.Bridge) *Engine {
	t.Helper()
	e, err := New(Options{
		Bridge:  bridge,
		Render:  noRender,
		Resolve: chain.resolve,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNewRequiresBridgeAndRenderer(t *testing.T) {
	if _, err := New(Options{Render: noRender}); err == nil {
		t.Error("New accepted a nil bridge")
	}
	if _, err := New(Options{Bridge: &countingBridge{}}); err == nil {
		t.Error("New accepted a nil renderer")
	}
}

func TestResolveFailureParksEngine(t *testing.T) {
	e, err := New(Options{
		Bridge: &countingBridge{},
		Render: noRender,
		Resolve: func(hook.Family) (hook.Addresses, error) {
			return hook.Addresses{}, errors.New("no adapter")
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Start(); err == nil {
		t.Fatal("Start succeeded with a failing resolver")
	}
	if got := e.Status().State; got != framectx.StateFailed {
		t.Errorf("state = %v after resolve failure, want failed", got)
	}
	// A parked engine ignores Present and resize traffic entirely. There is
	// no interceptor behind it, so the handlers must not touch one.
	if hr := e.onPresent(0xBEEF, 1, 0); hr != 0 {
		t.Errorf("parked onPresent returned %#x, want 0", hr)
	}
	if hr := e.onResize(0xBEEF, 2, 800, 600, 0, 0); hr != 0 {
		t.Errorf("parked onResize returned %#x, want 0", hr)
	}
	if got := e.Status().Frames; got != 0 {
		t.Errorf("failed engine counted %d frames", got)
	}
	if got := e.Status().State; got != framectx.StateFailed {
		t.Errorf("state = %v after ignored traffic, want failed", got)
	}
}

// TestPresentLoopEndToEnd drives a synthetic 60Hz loop through the whole
// stack: install, activation on call #1, a resize injected between calls
// #50 and #51 costing exactly one rebuild, and a frame counter of 100.
func TestPresentLoopEndToEnd(t *testing.T) {
	chain := newFakeChain()
	bridge := &countingBridge{}
	e := newTestEngine(t, chain, bridge)

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := e.Status().State; got != framectx.StateInstalled {
		t.Fatalf("state after Start = %v, want installed", got)
	}

	sc := chain.ptr()
	for frame := 1; frame <= 100; frame++ {
		e.onPresent(sc, 1, 0)
		if frame == 1 && e.Status().State != framectx.StateActive {
			t.Fatalf("not active after first present: %v", e.Status().State)
		}
		if frame == 50 {
			e.onResize(sc, 2, 2560, 1440, uintptr(d3d.FormatB8G8R8A8UNorm), 0)
			if got := e.Status().State; got != framectx.StateUninitialized {
				t.Fatalf("state after resize = %v, want uninitialized", got)
			}
		}
		if frame == 51 && e.Status().State != framectx.StateActive {
			t.Fatalf("not active again after resize: %v", e.Status().State)
		}
	}

	st := e.Status()
	if st.Frames != 100 {
		t.Errorf("frames = %d, want 100", st.Frames)
	}
	if st.ActiveCycles != 2 {
		t.Errorf("active cycles = %d, want exactly 2", st.ActiveCycles)
	}
	if bridge.inits != 2 || bridge.releases != 1 {
		t.Errorf("bridge inits/releases = %d/%d, want 2/1", bridge.inits, bridge.releases)
	}
	runtime.KeepAlive(chain)
}

func TestStopReleasesContextThenHook(t *testing.T) {
	chain := newFakeChain()
	bridge := &countingBridge{}
	e := newTestEngine(t, chain, bridge)

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.onPresent(chain.ptr(), 1, 0)
	if !bridge.live {
		t.Fatal("bridge not live after first present")
	}

	e.Stop()
	if bridge.live {
		t.Error("bridge still live after Stop")
	}
	if e.ic.Installed() {
		t.Error("interceptor still installed after Stop")
	}
	// The vtable is back to its original entries.
	addrs, _ := chain.resolve(hook.FamilyDX11)
	if got := d3d.VtblEntry(chain.ptr(), d3d.DXGISwapChainPresent); got != addrs.Present {
		t.Errorf("present slot holds %#x after Stop, want original %#x", got, addrs.Present)
	}
	runtime.KeepAlive(chain)
}

func TestTwoEnginesOnDistinctChains(t *testing.T) {
	chainA, chainB := newFakeChain(), newFakeChain()
	a := newTestEngine(t, chainA, &countingBridge{})
	b := newTestEngine(t, chainB, &countingBridge{})

	if err := a.Start(); err != nil {
		t.Fatalf("engine A Start: %v", err)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("engine B Start: %v", err)
	}

	a.onPresent(chainA.ptr(), 1, 0)
	b.onPresent(chainB.ptr(), 1, 0)

	if a.Status().Frames != 1 || b.Status().Frames != 1 {
		t.Errorf("frames = %d/%d, want 1/1", a.Status().Frames, b.Status().Frames)
	}
	a.Stop()
	b.Stop()
	runtime.KeepAlive(chainA)
	runtime.KeepAlive(chainB)
}
