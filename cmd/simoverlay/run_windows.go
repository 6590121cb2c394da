//go:build windows

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/simwidget/overlay/internal/config"
	"github.com/simwidget/overlay/internal/control"
	"github.com/simwidget/overlay/internal/d3d"
	"github.com/simwidget/overlay/internal/engine"
	"github.com/simwidget/overlay/internal/framectx"
	"github.com/simwidget/overlay/internal/hook"
	"github.com/simwidget/overlay/internal/hoststats"
	"github.com/simwidget/overlay/internal/logging"
	"github.com/simwidget/overlay/internal/mirror"
	"github.com/simwidget/overlay/internal/overlay"
	"github.com/simwidget/overlay/internal/surface"
	"github.com/simwidget/overlay/internal/telemetry"
)

// runOverlay hosts the whole stack in-process: a plain window with a DX11
// or DX12 swap chain, the Present hook installed over it, and the control
// channel alongside. The present loop owns the main OS thread for the
// lifetime of the run.
func runOverlay() error {
	runtime.LockOSThread()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Validate()

	var logOut io.Writer
	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, 0, 0)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer rw.Close()
		logOut = rw
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, logOut)
	log := logging.L("main")
	log.Info("starting overlay", "version", version)

	tc := telemetry.New(telemetry.Config{URL: cfg.TelemetryURL})
	tc.Start()

	var sampler *hoststats.Sampler
	if cfg.ShowHostStats {
		sampler, err = hoststats.NewSampler(hoststats.DefaultInterval)
		if err != nil {
			log.Warn("host stats unavailable", "error", err)
		} else {
			sampler.Start()
		}
	}

	mirrorSrv := mirror.NewServer(cfg.MirrorPort, cfg.MirrorMaxClients)
	var sink surface.Sink
	if err := mirrorSrv.Start(); err != nil {
		log.Warn("mirror disabled", "error", err)
		mirrorSrv = nil
	} else {
		mirrorSrv.SetEnabled(cfg.MirrorEnabled)
		sink = mirrorSrv
	}

	var profile *overlay.Profile
	if cfg.ProfilePath != "" {
		profile, err = overlay.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
	}
	corner, err := overlay.ParseCorner(cfg.Corner)
	if err != nil {
		return err
	}
	opts := overlay.Options{
		Snapshot: tc.Snapshot,
		Profile:  profile,
		Corner:   corner,
		Opacity:  float64(cfg.OpacityPercent) / 100,
	}
	if sampler != nil {
		opts.HostStats = sampler.Latest
	}
	renderer, err := overlay.New(opts)
	if err != nil {
		return err
	}

	family := hook.ParseFamily(cfg.APIFamily)
	if family == hook.FamilyAuto {
		family = hook.DetectFamily()
	}
	var bridge framectx.Bridge
	if family == hook.FamilyDX12 {
		bridge = surface.NewDX12(sink)
	} else {
		bridge = surface.NewDX11(sink)
	}

	eng, err := engine.New(engine.Options{
		Family: family,
		Bridge: bridge,
		Render: renderer.Render,
	})
	if err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}

	statusFn := func() control.StatusReply {
		st := eng.Status()
		reply := control.StatusReply{
			State:              st.State.String(),
			Frames:             st.Frames,
			ActiveCycles:       st.ActiveCycles,
			InitFailures:       st.InitFailures,
			TelemetryConnected: tc.Snapshot().Connected,
			OverlayVisible:     renderer.Visible(),
			Version:            version,
		}
		if mirrorSrv != nil {
			reply.MirrorEnabled = mirrorSrv.Enabled()
		}
		return reply
	}
	var ctlMirror control.Mirror
	if mirrorSrv != nil {
		ctlMirror = mirrorSrv
	}
	ctl, err := control.NewServer(cfg.ControlPipe, statusFn, renderer, ctlMirror)
	if err != nil {
		return fmt.Errorf("control channel: %w", err)
	}
	if err := ctl.Start(); err != nil {
		return fmt.Errorf("control channel: %w", err)
	}

	h, err := newHarness(family)
	if err != nil {
		ctl.Stop()
		eng.Stop()
		return fmt.Errorf("render window: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("present loop running", "family", family.String())
	h.loop(sigCh)
	log.Info("shutting down")

	// Reverse creation order. The engine releases its draw surfaces before
	// the harness drops the swap chain they were built over.
	ctl.Stop()
	eng.Stop()
	h.close()
	if mirrorSrv != nil {
		mirrorSrv.Stop()
	}
	if sampler != nil {
		sampler.Stop()
	}
	tc.Stop()
	return nil
}

const hostClassName = "simwidget-host"

// harness is the self-hosted render surface: a visible window plus a swap
// chain whose Present calls flow through the installed hook.
type harness struct {
	hwnd    win.HWND
	device  uintptr
	context uintptr
	queue   uintptr
	chain   uintptr
}

func newHarness(family hook.Family) (*harness, error) {
	hwnd, err := hostWindow()
	if err != nil {
		return nil, err
	}
	h := &harness{hwnd: hwnd}
	if family == hook.FamilyDX12 {
		err = h.initDX12()
	} else {
		err = h.initDX11()
	}
	if err != nil {
		win.DestroyWindow(hwnd)
		return nil, err
	}
	win.ShowWindow(hwnd, win.SW_SHOW)
	return h, nil
}

func hostWindow() (win.HWND, error) {
	classPtr, err := syscall.UTF16PtrFromString(hostClassName)
	if err != nil {
		return 0, err
	}
	wndProc := syscall.NewCallback(func(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
		if msg == win.WM_DESTROY {
			win.PostQuitMessage(0)
			return 0
		}
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	})
	wc := win.WNDCLASSEX{
		LpfnWndProc:   wndProc,
		HInstance:     win.GetModuleHandle(nil),
		LpszClassName: classPtr,
	}
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	if win.RegisterClassEx(&wc) == 0 {
		return 0, errors.New("RegisterClassEx failed")
	}

	titlePtr, err := syscall.UTF16PtrFromString("Simwidget Overlay Host")
	if err != nil {
		return 0, err
	}
	hwnd := win.CreateWindowEx(0, classPtr, titlePtr, win.WS_OVERLAPPEDWINDOW,
		win.CW_USEDEFAULT, win.CW_USEDEFAULT, 1280, 720,
		0, 0, win.GetModuleHandle(nil), nil)
	if hwnd == 0 {
		return 0, errors.New("CreateWindowEx failed")
	}
	return hwnd, nil
}

func (h *harness) initDX11() error {
	desc := d3d.SwapChainDesc{
		BufferDesc: d3d.ModeDesc{
			Width:       1280,
			Height:      720,
			RefreshRate: d3d.Rational{Numerator: 60, Denominator: 1},
			Format:      d3d.FormatB8G8R8A8UNorm,
		},
		SampleDesc:   d3d.SampleDesc{Count: 1},
		BufferUsage:  d3d.UsageRenderTargetOutput,
		BufferCount:  2,
		OutputWindow: uintptr(h.hwnd),
		Windowed:     1,
		SwapEffect:   d3d.SwapEffectDiscard,
	}
	device, context, chain, err := d3d.CreateDevice11AndSwapChain(&desc, d3d.CreateDeviceBGRASupport)
	if err != nil {
		return err
	}
	h.device, h.context, h.chain = device, context, chain
	return nil
}

func (h *harness) initDX12() error {
	device12, err := d3d.CreateDevice12()
	if err != nil {
		return err
	}
	queue, err := d3d.CreateCommandQueue12(device12)
	if err != nil {
		d3d.Release(device12)
		return err
	}
	factory, err := d3d.CreateFactory1()
	if err != nil {
		d3d.Release(queue)
		d3d.Release(device12)
		return err
	}
	factory2, err := d3d.QueryInterface(factory, &d3d.IID_IDXGIFactory2)
	d3d.Release(factory)
	if err != nil {
		d3d.Release(queue)
		d3d.Release(device12)
		return err
	}
	defer d3d.Release(factory2)

	desc := d3d.SwapChainDesc1{
		Width:       1280,
		Height:      720,
		Format:      d3d.FormatB8G8R8A8UNorm,
		SampleDesc:  d3d.SampleDesc{Count: 1},
		BufferUsage: d3d.UsageRenderTargetOutput,
		BufferCount: 2,
		SwapEffect:  d3d.SwapEffectFlipDiscard,
	}
	var chain uintptr
	if _, err := d3d.Call(factory2, d3d.DXGIFactory2CreateSwapChainForHwnd,
		queue,
		uintptr(h.hwnd),
		uintptr(unsafe.Pointer(&desc)),
		0,
		0,
		uintptr(unsafe.Pointer(&chain)),
	); err != nil {
		d3d.Release(queue)
		d3d.Release(device12)
		return fmt.Errorf("CreateSwapChainForHwnd: %w", err)
	}
	h.device, h.queue, h.chain = device12, queue, chain
	return nil
}

// loop pumps window messages and presents with vsync until the window
// closes or a signal arrives. Present blocks on the display's refresh, so
// the loop needs no timer of its own.
func (h *harness) loop(sigCh <-chan os.Signal) {
	var msg win.MSG
	for {
		select {
		case <-sigCh:
			return
		default:
		}
		for win.PeekMessage(&msg, 0, 0, 0, win.PM_REMOVE) {
			if msg.Message == win.WM_QUIT {
				return
			}
			win.TranslateMessage(&msg)
			win.DispatchMessage(&msg)
		}
		h.present()
	}
}

// present forwards one frame through the chain's Present with a sync
// interval of 1 and no flags. CallRaw supplies the receiver itself.
func (h *harness) present() uintptr {
	return d3d.CallRaw(h.chain, d3d.DXGISwapChainPresent, 1, 0)
}

func (h *harness) close() {
	d3d.Release(h.chain)
	if h.context != 0 {
		d3d.Release(h.context)
	}
	if h.queue != 0 {
		d3d.Release(h.queue)
	}
	d3d.Release(h.device)
	win.DestroyWindow(h.hwnd)
}
