//go:build windows

package control

import (
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

// SDDL: SYSTEM gets full control, Interactive Users get read/write. IU
// excludes service accounts, batch jobs, and network logons, so only a
// locally logged-in user can drive the overlay.
const pipeSecurity = "D:P(A;;GA;;;SY)(A;;GRGW;;;IU)"

func listen(path string) (net.Listener, error) {
	cfg := &winio.PipeConfig{
		SecurityDescriptor: pipeSecurity,
		InputBufferSize:    64 * 1024,
		OutputBufferSize:   64 * 1024,
	}
	return winio.ListenPipe(path, cfg)
}

func dial(path string, timeout time.Duration) (net.Conn, error) {
	return winio.DialPipe(path, &timeout)
}
