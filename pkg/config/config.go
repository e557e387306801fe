// Package config carries the compiler settings and warning toggles shared
// by the driver and the back end.
package config

import "fmt"

type Warning int

const (
	WarnConstOverflow Warning = iota
	WarnUnreachableCode
	WarnShiftRange
	WarnExtra
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Warnings   map[Warning]Info
	WarningMap map[string]Warning

	// IntBits and CellStateBits are the bit widths of the language's
	// integer and cell-state types. The return value of a generated
	// function is always 64 bits wide regardless.
	IntBits       int
	CellStateBits int

	OptLevel int
	DumpIR   bool
}

func NewConfig() *Config {
	cfg := &Config{
		Warnings:      make(map[Warning]Info),
		WarningMap:    make(map[string]Warning),
		IntBits:       64,
		CellStateBits: 8,
		OptLevel:      2,
	}

	warnings := map[Warning]Info{
		WarnConstOverflow:   {"const-overflow", true, "Warn when a constant expression always traps at run time."},
		WarnUnreachableCode: {"unreachable-code", true, "Warn about statements that will never be executed."},
		WarnShiftRange:      {"shift-range", true, "Warn when a constant shift amount is out of range."},
		WarnExtra:           {"extra", false, "Enable extra miscellaneous warnings."},
	}

	cfg.Warnings = warnings
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

// SetWarning enables or disables a specific warning.
func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

// IsWarningEnabled checks if a specific warning is currently enabled.
func (c *Config) IsWarningEnabled(wt Warning) bool {
	if info, ok := c.Warnings[wt]; ok {
		return info.Enabled
	}
	return false
}

// IsWarningEnabledByName looks a warning up by its toggle name; unknown
// names are disabled.
func (c *Config) IsWarningEnabledByName(name string) bool {
	wt, ok := c.WarningMap[name]
	return ok && c.IsWarningEnabled(wt)
}

// SetAllWarnings enables or disables all warnings at once. Extra warnings
// stay opt-in.
func (c *Config) SetAllWarnings(enabled bool) {
	for i := Warning(0); i < WarnCount; i++ {
		if i == WarnExtra && enabled {
			continue
		}
		c.SetWarning(i, enabled)
	}
}

// PrintWarnings prints the current status of all warnings.
func (c *Config) PrintWarnings() {
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		fmt.Printf("  - %-20s: %v (%s)\n", info.Name, info.Enabled, info.Description)
	}
}
