package overlay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Row sources a profile may reference.
const (
	SourceAltitude      = "altitude"
	SourceAirspeed      = "airspeed"
	SourceHeading       = "heading"
	SourceVerticalSpeed = "vertical_speed"
	SourceThrottle      = "throttle"
	SourceEngine        = "engine"
	SourceFuel          = "fuel"
)

var validSources = map[string]bool{
	SourceAltitude:      true,
	SourceAirspeed:      true,
	SourceHeading:       true,
	SourceVerticalSpeed: true,
	SourceThrottle:      true,
	SourceEngine:        true,
	SourceFuel:          true,
}

// Row is one labeled data line of the panel.
type Row struct {
	Label  string `yaml:"label"`
	Source string `yaml:"source"`
}

// Profile selects the panel title and which rows appear, in order. Profiles
// load from a YAML file so the row set can change without a rebuild.
type Profile struct {
	Title string `yaml:"title"`
	Rows  []Row  `yaml:"rows"`
}

// DefaultProfile is the panel shipped when no profile file is configured.
func DefaultProfile() *Profile {
	return &Profile{
		Title: "SIMWIDGET",
		Rows: []Row{
			{Label: "ALT", Source: SourceAltitude},
			{Label: "IAS", Source: SourceAirspeed},
			{Label: "HDG", Source: SourceHeading},
			{Label: "VS", Source: SourceVerticalSpeed},
			{Label: "THR", Source: SourceThrottle},
			{Label: "ENGINE", Source: SourceEngine},
			{Label: "FUEL", Source: SourceFuel},
		},
	}
}

// LoadProfile reads a row profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("overlay: read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("overlay: parse profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("overlay: profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if p.Title == "" {
		p.Title = "SIMWIDGET"
	}
	if len(p.Rows) == 0 {
		return fmt.Errorf("profile has no rows")
	}
	for i, row := range p.Rows {
		if row.Label == "" {
			return fmt.Errorf("row %d has no label", i)
		}
		if !validSources[row.Source] {
			return fmt.Errorf("row %d (%s) has unknown source %q", i, row.Label, row.Source)
		}
	}
	return nil
}
