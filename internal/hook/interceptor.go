package hook

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Interceptor owns the vtable redirects for one swap chain implementation:
// the Present and ResizeBuffers slots the resolver located. Install rewrites
// both slots to native-callable trampolines and keeps the original entries
// for pass-through calls; Remove puts the originals back. One interceptor
// serves one API family per process.
type Interceptor struct {
	addrs Addresses

	onPresent PresentFunc
	onResize  ResizeFunc

	presentTramp uintptr
	resizeTramp  uintptr
	installed    bool

	// The first Present that arrives pins its thread id as the render
	// thread. Present calls from any other thread bypass the handler and go
	// straight to the original.
	renderThread atomic.Uint32
	threadID     func() uint32

	callPresent func(swapChain, syncInterval, flags uintptr) uintptr
	callResize  func(swapChain, bufferCount, width, height, format, flags uintptr) uintptr
}

// New builds an interceptor over resolved addresses. onPresent runs for
// render-thread Present calls, onResize for every ResizeBuffers call; both
// must forward to the originals via CallOriginalPresent/CallOriginalResize.
func New(addrs Addresses, onPresent PresentFunc, onResize ResizeFunc) *Interceptor {
	return &Interceptor{
		addrs:       addrs,
		onPresent:   onPresent,
		onResize:    onResize,
		threadID:    currentThreadID,
		callPresent: bindPresent(addrs.Present),
		callResize:  bindResize(addrs.ResizeBuffers),
	}
}

// Install patches both slots. Reinstalling an installed interceptor is a
// no-op. A slot that no longer holds the resolver's address belongs to some
// other redirect; that install fails without touching memory.
func (ic *Interceptor) Install() error {
	if ic.installed {
		return nil
	}
	if ic.addrs.Present == 0 || ic.addrs.PresentSlot == 0 {
		return fmt.Errorf("hook: install: %w", ErrNotResolved)
	}
	if ic.presentTramp == 0 {
		ic.presentTramp, ic.resizeTramp = newTrampolines(ic)
	}

	cur := readSlot(ic.addrs.PresentSlot)
	if cur == ic.presentTramp {
		ic.installed = true
		return nil
	}
	if cur != ic.addrs.Present {
		return fmt.Errorf("hook: present slot holds 0x%X: %w", cur, ErrSlotDiverted)
	}
	if cur := readSlot(ic.addrs.ResizeSlot); cur != ic.addrs.ResizeBuffers {
		return fmt.Errorf("hook: resize slot holds 0x%X: %w", cur, ErrSlotDiverted)
	}

	if err := writeSlot(ic.addrs.PresentSlot, ic.presentTramp); err != nil {
		return fmt.Errorf("hook: patch present slot: %w", err)
	}
	if err := writeSlot(ic.addrs.ResizeSlot, ic.resizeTramp); err != nil {
		writeSlot(ic.addrs.PresentSlot, ic.addrs.Present)
		return fmt.Errorf("hook: patch resize slot: %w", err)
	}
	ic.installed = true
	log.Info("present hook installed",
		"present", fmt.Sprintf("0x%X", ic.addrs.Present),
		"resize", fmt.Sprintf("0x%X", ic.addrs.ResizeBuffers))
	return nil
}

// Remove restores the original entries. Slots that some later redirect has
// repatched since are left alone; clobbering them would cut that hook's
// chain mid-flight. Removing an uninstalled interceptor is a no-op.
func (ic *Interceptor) Remove() {
	if !ic.installed {
		return
	}
	if readSlot(ic.addrs.PresentSlot) == ic.presentTramp {
		writeSlot(ic.addrs.PresentSlot, ic.addrs.Present)
	}
	if readSlot(ic.addrs.ResizeSlot) == ic.resizeTramp {
		writeSlot(ic.addrs.ResizeSlot, ic.addrs.ResizeBuffers)
	}
	ic.installed = false
	log.Info("present hook removed")
}

// Installed reports whether the redirect is currently in place.
func (ic *Interceptor) Installed() bool { return ic.installed }

// CallOriginalPresent forwards to the Present the resolver found.
func (ic *Interceptor) CallOriginalPresent(swapChain, syncInterval, flags uintptr) uintptr {
	return ic.callPresent(swapChain, syncInterval, flags)
}

// CallOriginalResize forwards to the ResizeBuffers the resolver found.
func (ic *Interceptor) CallOriginalResize(swapChain, bufferCount, width, height, format, flags uintptr) uintptr {
	return ic.callResize(swapChain, bufferCount, width, height, format, flags)
}

// handlePresent is the Go side of the Present trampoline.
func (ic *Interceptor) handlePresent(swapChain, syncInterval, flags uintptr) uintptr {
	tid := ic.threadID()
	if !ic.renderThread.CompareAndSwap(0, tid) && ic.renderThread.Load() != tid {
		return ic.callPresent(swapChain, syncInterval, flags)
	}
	return ic.onPresent(swapChain, syncInterval, flags)
}

// handleResize is the Go side of the ResizeBuffers trampoline. Resize is
// never gated by thread: outstanding backbuffer references must be dropped
// before the original runs or the host's own resize fails.
func (ic *Interceptor) handleResize(swapChain, bufferCount, width, height, format, flags uintptr) uintptr {
	return ic.onResize(swapChain, bufferCount, width, height, format, flags)
}

func readSlot(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}
