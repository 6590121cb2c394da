// Package engine wires the hook, the frame context manager, the draw
// surface bridge, and the overlay renderer into one owned instance. Nothing
// here is process-global: every handle flows through the Engine, so tests
// run several side by side and shutdown releases everything it created.
package engine

import (
	"fmt"

	"github.com/simwidget/overlay/internal/framectx"
	"github.com/simwidget/overlay/internal/hook"
	"github.com/simwidget/overlay/internal/logging"
)

var log = logging.L("engine")

// Options configures an Engine.
type Options struct {
	Family hook.Family

	// Bridge builds the family-specific draw surfaces. Required.
	Bridge framectx.Bridge

	// Render paints the overlay each frame. Required.
	Render framectx.RenderFunc

	// Resolve locates the Present/ResizeBuffers addresses. Defaults to the
	// platform resolver; tests substitute a fake.
	Resolve func(hook.Family) (hook.Addresses, error)
}

// Engine owns one hook instance for one API family.
type Engine struct {
	family  hook.Family
	resolve func(hook.Family) (hook.Addresses, error)

	ic  *hook.Interceptor
	mgr *framectx.Manager
}

// New builds an engine. It does nothing to the process until Start.
func New(opts Options) (*Engine, error) {
	if opts.Bridge == nil {
		return nil, fmt.Errorf("engine: Options.Bridge is required")
	}
	if opts.Render == nil {
		return nil, fmt.Errorf("engine: Options.Render is required")
	}
	resolve := opts.Resolve
	if resolve == nil {
		resolve = defaultResolve
	}
	return &Engine{
		family:  opts.Family,
		resolve: resolve,
		mgr:     framectx.NewManager(opts.Bridge, opts.Render),
	}, nil
}

// Start resolves the Present address and installs the redirect. Resolution
// or install failure is fatal for this engine: the state machine parks in
// Failed, the error is logged once, and the host keeps running unhooked.
func (e *Engine) Start() error {
	addrs, err := e.resolve(e.family)
	if err != nil {
		e.mgr.MarkFailed()
		log.Error("address resolution failed, overlay disabled", "error", err)
		return fmt.Errorf("engine: resolve: %w", err)
	}
	e.ic = hook.New(addrs, e.onPresent, e.onResize)
	if err := e.ic.Install(); err != nil {
		e.mgr.MarkFailed()
		log.Error("hook install failed, overlay disabled", "error", err)
		return fmt.Errorf("engine: install: %w", err)
	}
	e.mgr.MarkInstalled()
	return nil
}

// Stop tears down in strict reverse creation order: frame context first
// (buffers, interop device, 2D stack inside the bridge), hook removal last.
func (e *Engine) Stop() {
	e.mgr.Teardown()
	if e.ic != nil {
		e.ic.Remove()
	}
}

// Status reports the frame machine's counters for the control channel.
func (e *Engine) Status() framectx.Status { return e.mgr.Status() }

func (e *Engine) onPresent(swapChain, syncInterval, flags uintptr) uintptr {
	// A parked engine has no interceptor and no original to forward to.
	if e.ic == nil {
		return 0
	}
	e.mgr.BeforePresent(swapChain)
	hr := e.ic.CallOriginalPresent(swapChain, syncInterval, flags)
	e.mgr.AfterPresent(hr)
	return hr
}

func (e *Engine) onResize(swapChain, bufferCount, width, height, format, flags uintptr) uintptr {
	if e.ic == nil {
		return 0
	}
	e.mgr.OnResize(uint32(width), uint32(height))
	return e.ic.CallOriginalResize(swapChain, bufferCount, width, height, format, flags)
}
