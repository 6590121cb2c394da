package diag

import (
	"strings"
	"testing"
)

func TestAdapterString(t *testing.T) {
	a := Adapter{
		Index:            0,
		Name:             "NVIDIA GeForce RTX 3070",
		VendorID:         0x10DE,
		DeviceID:         0x2484,
		DedicatedVideoMB: 8192,
	}
	s := a.String()
	for _, want := range []string{"#0", "RTX 3070", "hardware", "0x10DE", "8192 MB"} {
		if !strings.Contains(s, want) {
			t.Errorf("Adapter.String() = %q, missing %q", s, want)
		}
	}

	a.Software = true
	if !strings.Contains(a.String(), "software") {
		t.Errorf("software adapter not flagged: %q", a.String())
	}
}

func TestReportString(t *testing.T) {
	empty := Report{}.String()
	if !strings.Contains(empty, "(none)") {
		t.Errorf("empty report = %q, want placeholder lines", empty)
	}

	r := Report{
		Adapters:    []Adapter{{Name: "Radeon RX 6800"}},
		Controllers: []VideoController{{Name: "Radeon RX 6800", DriverVersion: "31.0.12027"}},
	}
	s := r.String()
	if !strings.Contains(s, "DXGI adapters:") || !strings.Contains(s, "Video controllers (WMI):") {
		t.Errorf("report missing section headers: %q", s)
	}
	if strings.Count(s, "Radeon RX 6800") != 2 {
		t.Errorf("report missing entries: %q", s)
	}
}

func TestVideoControllerString(t *testing.T) {
	v := VideoController{Name: "Microsoft Basic Display Adapter", DriverVersion: "10.0.19041.1"}
	s := v.String()
	if !strings.Contains(s, v.Name) || !strings.Contains(s, v.DriverVersion) {
		t.Errorf("VideoController.String() = %q", s)
	}
}
