// Package rule describes automaton rules and their carl.toml manifests.
package rule

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Meta is the shared, read-only metadata of one automaton rule. Every
// function compiled for the rule holds a pointer to the same Meta; it is
// write-once at rule-definition time and never mutated afterwards.
type Meta struct {
	Name       string
	Dimensions int
	Radius     int
	States     int
}

// Default returns the metadata used when no manifest is present: a
// two-state, two-dimensional rule with a Moore neighborhood of radius 1.
func Default() *Meta {
	return &Meta{Name: "rule", Dimensions: 2, Radius: 1, States: 2}
}

// Manifest represents a carl.toml rule configuration.
type Manifest struct {
	Rule     Section         `toml:"rule"`
	Warnings map[string]bool `toml:"warnings"`

	// Dir is the directory containing the carl.toml file (set at load time).
	Dir string `toml:"-"`
}

// Section contains the rule metadata proper.
type Section struct {
	Name       string `toml:"name"`
	Dimensions int    `toml:"dimensions"`
	Radius     int    `toml:"radius"`
	States     int    `toml:"states"`
}

// Load parses a carl.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "carl.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	m.Dir = dir
	m.applyDefaults()
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	def := Default()
	if m.Rule.Name == "" {
		m.Rule.Name = def.Name
	}
	if m.Rule.Dimensions == 0 {
		m.Rule.Dimensions = def.Dimensions
	}
	if m.Rule.Radius == 0 {
		m.Rule.Radius = def.Radius
	}
	if m.Rule.States == 0 {
		m.Rule.States = def.States
	}
}

func (m *Manifest) validate() error {
	if m.Rule.Dimensions < 1 || m.Rule.Dimensions > 6 {
		return fmt.Errorf("dimensions must be between 1 and 6, got %d", m.Rule.Dimensions)
	}
	if m.Rule.Radius < 0 {
		return fmt.Errorf("radius must not be negative, got %d", m.Rule.Radius)
	}
	// Cell states are 8 bits wide.
	if m.Rule.States < 2 || m.Rule.States > 256 {
		return fmt.Errorf("states must be between 2 and 256, got %d", m.Rule.States)
	}
	return nil
}

// Meta returns the rule metadata described by the manifest.
func (m *Manifest) Meta() *Meta {
	return &Meta{
		Name:       m.Rule.Name,
		Dimensions: m.Rule.Dimensions,
		Radius:     m.Rule.Radius,
		States:     m.Rule.States,
	}
}
