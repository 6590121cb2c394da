// Package surface implements the family-specific draw surface bridges: the
// D3D11 path with a single Direct2D render target over backbuffer zero, and
// the D3D12 path wrapping every backbuffer through a D3D11On12 interop
// device with a strict per-frame acquire/release cycle.
package surface

import (
	"fmt"

	"github.com/simwidget/overlay/internal/logging"
)

var log = logging.L("surface")

// Sink receives frames copied off the backbuffer on the render thread. The
// pixel slice is only valid for the duration of the call; implementations
// that keep the frame must copy, and they must never block.
type Sink interface {
	Frame(width, height uint32, bgra []byte)
}

// pairGuard enforces the buffer slot discipline both bridges share: one
// slot held at a time, acquired and released exactly once per frame, with
// the index inside the slot range. Violations come back as errors, never
// panics; the frame manager turns them into a context rebuild.
type pairGuard struct {
	n        int
	acquired bool
	current  int
}

func (g *pairGuard) acquire(idx int) error {
	if g.acquired {
		return fmt.Errorf("surface: slot %d acquired while slot %d still held", idx, g.current)
	}
	if idx < 0 || idx >= g.n {
		return fmt.Errorf("surface: buffer index %d out of range, %d slots", idx, g.n)
	}
	g.acquired = true
	g.current = idx
	return nil
}

func (g *pairGuard) release() (int, error) {
	if !g.acquired {
		return 0, fmt.Errorf("surface: release without a held slot")
	}
	g.acquired = false
	return g.current, nil
}
