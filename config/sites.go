// Package config loads work-site fence definitions from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/k-j-hyun/HRMS-jjpartners/geo"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

// SitesFile is the top-level YAML document.
type SitesFile struct {
	Sites []model.GeoFence `yaml:"sites"`
}

// LoadSites reads and validates a fence configuration file. Omitted kinds
// default to circle and omitted check-out policies default to lenient,
// matching how site administrators usually configure small sites.
func LoadSites(path string) ([]model.GeoFence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}
	return ParseSites(data)
}

// ParseSites decodes and validates fence definitions from YAML bytes.
func ParseSites(data []byte) ([]model.GeoFence, error) {
	var file SitesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sites file: %w", err)
	}
	if len(file.Sites) == 0 {
		return nil, fmt.Errorf("sites file declares no sites")
	}

	seen := make(map[string]bool, len(file.Sites))
	fences := make([]model.GeoFence, 0, len(file.Sites))
	for i, f := range file.Sites {
		if f.Kind == "" {
			f.Kind = model.FenceCircle
		}
		if f.CheckOut == "" {
			f.CheckOut = model.CheckOutLenient
		}
		if f.CheckOut != model.CheckOutStrict && f.CheckOut != model.CheckOutLenient {
			return nil, fmt.Errorf("site %d (%q): unknown checkout_policy %q", i, f.ID, f.CheckOut)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("site %d: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true
		if err := geo.ValidateFence(f); err != nil {
			return nil, fmt.Errorf("site %d (%q): %w", i, f.ID, err)
		}
		fences = append(fences, f)
	}
	return fences, nil
}
