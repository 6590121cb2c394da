// Package diag inventories the machine's graphics adapters for triaging
// hook problems. Address resolution always probes the first adapter; on a
// multi-adapter system the host may render on another one, and this report
// is how that mismatch gets diagnosed.
package diag

import (
	"fmt"
	"strings"

	"github.com/simwidget/overlay/internal/logging"
)

var log = logging.L("diag")

// Adapter is one DXGI adapter.
type Adapter struct {
	Index            int
	Name             string
	VendorID         uint32
	DeviceID         uint32
	DedicatedVideoMB uint64
	Software         bool
}

func (a Adapter) String() string {
	kind := "hardware"
	if a.Software {
		kind = "software"
	}
	return fmt.Sprintf("#%d %s (%s, vendor 0x%04X, device 0x%04X, %d MB VRAM)",
		a.Index, a.Name, kind, a.VendorID, a.DeviceID, a.DedicatedVideoMB)
}

// VideoController is one Win32_VideoController row from WMI, the driver
// side view of the same hardware.
type VideoController struct {
	Name          string
	DriverVersion string
}

func (v VideoController) String() string {
	return fmt.Sprintf("%s (driver %s)", v.Name, v.DriverVersion)
}

// Report pairs both views.
type Report struct {
	Adapters    []Adapter
	Controllers []VideoController
}

func (r Report) String() string {
	var b strings.Builder
	b.WriteString("DXGI adapters:\n")
	if len(r.Adapters) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, a := range r.Adapters {
		fmt.Fprintf(&b, "  %s\n", a)
	}
	b.WriteString("Video controllers (WMI):\n")
	if len(r.Controllers) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, v := range r.Controllers {
		fmt.Fprintf(&b, "  %s\n", v)
	}
	return b.String()
}
