package rule_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carl-lang/carl/pkg/rule"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "carl.toml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadFullManifest(t *testing.T) {
	dir := writeManifest(t, `
[rule]
name = "brians-brain"
dimensions = 2
radius = 1
states = 3

[warnings]
extra = true
unreachable-code = false
`)
	m, err := rule.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dir != dir {
		t.Errorf("Dir = %q, want %q", m.Dir, dir)
	}
	want := &rule.Meta{Name: "brians-brain", Dimensions: 2, Radius: 1, States: 3}
	if diff := cmp.Diff(want, m.Meta()); diff != "" {
		t.Errorf("Meta mismatch (-want +got):\n%s", diff)
	}
	if !m.Warnings["extra"] {
		t.Error("warnings.extra not parsed as enabled")
	}
	if enabled, ok := m.Warnings["unreachable-code"]; !ok || enabled {
		t.Error("warnings.unreachable-code not parsed as disabled")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeManifest(t, `
[rule]
name = "life"
`)
	m, err := rule.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := &rule.Meta{Name: "life", Dimensions: 2, Radius: 1, States: 2}
	if diff := cmp.Diff(want, m.Meta()); diff != "" {
		t.Errorf("Meta mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyManifestMatchesDefault(t *testing.T) {
	dir := writeManifest(t, "")
	m, err := rule.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rule.Default(), m.Meta()); diff != "" {
		t.Errorf("Meta mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{"too many dimensions", "[rule]\ndimensions = 7\n", "dimensions"},
		{"negative radius", "[rule]\nradius = -1\n", "radius"},
		{"one state", "[rule]\nstates = 1\n", "states"},
		{"too many states", "[rule]\nstates = 300\n", "states"},
		{"malformed toml", "[rule\n", "parse error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeManifest(t, tt.manifest)
			_, err := rule.Load(dir)
			if err == nil {
				t.Fatalf("Load succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := rule.Load(t.TempDir()); err == nil {
		t.Fatal("Load succeeded in a directory without carl.toml")
	}
}
