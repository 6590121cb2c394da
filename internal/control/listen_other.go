//go:build !windows

package control

import (
	"net"
	"os"
	"time"
)

// Off Windows the control channel is a unix socket at the same configured
// path, which keeps the CLI and the tests running everywhere.

func listen(path string) (net.Listener, error) {
	os.Remove(path)
	return net.Listen("unix", path)
}

func dial(path string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", path, timeout)
}
