package framectx

import (
	"fmt"
	"sync/atomic"

	"github.com/simwidget/overlay/internal/d3d"
)

const (
	// After a burst of consecutive init failures the retry rate drops to
	// roughly once a second at 60Hz instead of every frame. Retries never
	// stop: a device that comes back late still gets its overlay.
	initRetryBurst    = 120
	initRetryInterval = 60

	// Flood guards. Failure logs stop after this many in a row; a single
	// recovery line ends the silence.
	maxLoggedInitFailures = 3
	maxLoggedDrawFailures = 3
)

// Manager runs the frame context state machine. Every mutating call happens
// on the render thread; the counters and state are atomics only so the
// control channel can read a consistent status from its own goroutine.
type Manager struct {
	bridge Bridge
	render RenderFunc

	state        atomic.Int32
	frames       atomic.Uint64
	activeCycles atomic.Uint64
	initFailures atomic.Uint64

	swapChain    uintptr
	drawFailures int
}

// Status is a point-in-time snapshot of the manager, safe to read from any
// goroutine.
type Status struct {
	State        State
	Frames       uint64
	ActiveCycles uint64
	InitFailures uint64
}

// NewManager wires the state machine to a bridge and a renderer.
func NewManager(bridge Bridge, render RenderFunc) *Manager {
	return &Manager{bridge: bridge, render: render}
}

// State returns the current lifecycle state.
func (m *Manager) State() State { return State(m.state.Load()) }

// Status returns the manager's counters for the control surface.
func (m *Manager) Status() Status {
	return Status{
		State:        m.State(),
		Frames:       m.frames.Load(),
		ActiveCycles: m.activeCycles.Load(),
		InitFailures: m.initFailures.Load(),
	}
}

// MarkInstalled records that the interceptor's redirect is in place but no
// Present has arrived yet.
func (m *Manager) MarkInstalled() {
	m.state.CompareAndSwap(int32(StateUninitialized), int32(StateInstalled))
}

// MarkFailed parks the machine after a fatal resolution or install error.
// A failed manager ignores every later Present.
func (m *Manager) MarkFailed() {
	m.state.Store(int32(StateFailed))
}

// BeforePresent runs the init-if-needed and draw flow for one intercepted
// Present. It never blocks and never panics; when the context is not ready
// the Present passes through untouched.
func (m *Manager) BeforePresent(swapChain uintptr) {
	if m.State() == StateFailed {
		return
	}
	// The first Present's swap chain is the one this manager serves.
	// Other chains in the same process (launchers, secondary windows)
	// pass through untouched.
	if m.swapChain != 0 && swapChain != m.swapChain {
		return
	}
	m.frames.Add(1)

	if m.State() != StateActive {
		if !m.tryInit(swapChain) {
			return
		}
	}
	m.draw()
}

// AfterPresent inspects the original Present's result. Device loss tears
// the context down; the next Present rebuilds it from scratch.
func (m *Manager) AfterPresent(hr uintptr) {
	switch uint32(hr) {
	case d3d.DXGIErrorDeviceRemoved, d3d.DXGIErrorDeviceReset:
		if m.State() == StateActive || m.State() == StateInitializing {
			log.Warn("device lost, releasing frame context",
				"hresult", fmt.Sprintf("0x%08X", uint32(hr)))
			m.teardown()
		}
	}
}

// OnResize drops every buffer reference before the host's ResizeBuffers
// runs; holding one would make the host's own call fail. The next Present
// rebuilds against the resized buffers.
func (m *Manager) OnResize(width, height uint32) {
	s := m.State()
	if s != StateActive && s != StateInitializing {
		return
	}
	log.Info("swap chain resize, releasing frame context",
		"width", width, "height", height)
	m.teardown()
}

// Teardown releases the context outside the frame flow, for engine
// shutdown.
func (m *Manager) Teardown() {
	if s := m.State(); s == StateActive || s == StateInitializing {
		m.teardown()
	}
}

func (m *Manager) tryInit(swapChain uintptr) bool {
	if fails := m.initFailures.Load(); fails >= initRetryBurst && m.frames.Load()%initRetryInterval != 0 {
		return false
	}
	m.state.Store(int32(StateInitializing))
	if err := m.bridge.Init(swapChain); err != nil {
		fails := m.initFailures.Add(1)
		if fails <= maxLoggedInitFailures {
			log.Warn("frame context init failed, will retry", "error", err, "attempt", fails)
		} else if fails == maxLoggedInitFailures+1 {
			log.Warn("frame context init still failing, suppressing further logs")
		}
		m.state.Store(int32(StateUninitialized))
		return false
	}
	if fails := m.initFailures.Load(); fails > maxLoggedInitFailures {
		log.Info("frame context recovered", "failed_attempts", fails)
	}
	m.initFailures.Store(0)
	m.swapChain = swapChain
	m.drawFailures = 0
	m.state.Store(int32(StateActive))
	cycle := m.activeCycles.Add(1)
	log.Info("frame context active", "frame", m.frames.Load(), "cycle", cycle)
	return true
}

func (m *Manager) draw() {
	target, err := m.bridge.Begin()
	if err != nil {
		m.logDrawFailure("begin frame", err)
		m.teardown()
		return
	}
	if err := m.renderSafe(target); err != nil {
		// Renderer trouble is not worth the context: log and move on, the
		// frame still ends cleanly and the host still presents.
		m.logDrawFailure("render", err)
	}
	if err := m.bridge.End(); err != nil {
		m.logDrawFailure("end frame", err)
		m.teardown()
	}
}

// renderSafe confines renderer failures, including panics, to this frame.
// Inside a host process a draw problem must never take the host with it.
func (m *Manager) renderSafe(target DrawTarget) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return m.render(target)
}

func (m *Manager) teardown() {
	m.bridge.Release()
	m.swapChain = 0
	m.state.Store(int32(StateUninitialized))
}

func (m *Manager) logDrawFailure(stage string, err error) {
	m.drawFailures++
	if m.drawFailures <= maxLoggedDrawFailures {
		log.Warn("draw failed", "stage", stage, "error", err)
	} else if m.drawFailures == maxLoggedDrawFailures+1 {
		log.Warn("draw still failing, suppressing further logs", "stage", stage)
	}
}
