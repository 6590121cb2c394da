// Package framectx manages the drawing state attached to a live swap
// chain: lazy creation on the first intercepted Present, wholesale teardown
// and rebuild on resize or device loss, and the per-frame begin/draw/end
// flow between the interceptor and the renderer.
package framectx

import (
	"github.com/simwidget/overlay/internal/d3d"
	"github.com/simwidget/overlay/internal/logging"
)

var log = logging.L("framectx")

// State is the lifecycle of the hooked drawing context.
type State int32

const (
	StateUninitialized State = iota
	StateInstalled
	StateInitializing
	StateActive
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInstalled:
		return "installed"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Font selects one of the text formats a draw target keeps prepared.
type Font int

const (
	FontTitle Font = iota // panel heading, bold
	FontLabel             // row label, leading-aligned
	FontValue             // row value, trailing-aligned
	FontSmall             // status line
)

// DrawTarget is one frame's 2D drawing surface over the backbuffer about to
// be presented. Drawing calls never fail individually; failures accumulate
// and surface when the bridge ends the frame.
type DrawTarget interface {
	Size() (width, height float32)
	FillRect(r d3d.RectF, c d3d.ColorF)
	DrawText(text string, font Font, r d3d.RectF, c d3d.ColorF)
}

// Bridge builds and drives the family-specific draw surfaces for one swap
// chain. Implementations live in internal/surface; tests use fakes.
type Bridge interface {
	// Init builds every buffer slot and shared resource for the swap chain.
	// A failed Init must roll back and leave nothing allocated.
	Init(swapChain uintptr) error

	// Begin binds the slot for the backbuffer about to be presented and
	// returns its draw target.
	Begin() (DrawTarget, error)

	// End unbinds the slot and flushes 2D work so it lands before the
	// host's Present. Called exactly once per successful Begin.
	End() error

	// Release tears down everything Init built, reverse creation order.
	Release()
}

// RenderFunc paints one frame's overlay content onto the target.
type RenderFunc func(DrawTarget) error
