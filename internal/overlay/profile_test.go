package overlay

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
title: GLASS COCKPIT
rows:
  - label: ALTITUDE
    source: altitude
  - label: FUEL
    source: fuel
`)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Title != "GLASS COCKPIT" {
		t.Errorf("title = %q", p.Title)
	}
	if len(p.Rows) != 2 || p.Rows[1].Source != SourceFuel {
		t.Errorf("rows = %+v", p.Rows)
	}
}

func TestLoadProfileDefaultsTitle(t *testing.T) {
	path := writeProfile(t, `
rows:
  - label: HDG
    source: heading
`)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Title != "SIMWIDGET" {
		t.Errorf("empty title not defaulted, got %q", p.Title)
	}
}

func TestLoadProfileRejectsUnknownSource(t *testing.T) {
	path := writeProfile(t, `
rows:
  - label: MACH
    source: mach
`)
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("unknown source accepted")
	}
}

func TestLoadProfileRejectsEmptyRows(t *testing.T) {
	path := writeProfile(t, `title: EMPTY`)
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("profile without rows accepted")
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestDefaultProfileValid(t *testing.T) {
	if err := DefaultProfile().validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
}
