package engine

import (
	"fmt"
	"os"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

const defaultPVLimit = 5

// AnalysisPreset bundles the engine tuning for one analysis profile. Unlike a
// playing opponent there is no strength limiting here: presets only trade
// depth against latency.
type AnalysisPreset struct {
	Name           string `yaml:"name"`
	Threads        int    `yaml:"threads"`
	HashMB         int    `yaml:"hash_mb"`
	MoveTimeMillis int    `yaml:"move_time_ms"`
	DepthCap       int    `yaml:"depth_cap"`
	PVLimit        int    `yaml:"pv_limit"`
}

// PresetTable maps profile names to presets. Each owner builds its own table
// with NewPresetTable; there is no process-wide registry.
type PresetTable struct {
	mu      sync.RWMutex
	presets map[string]AnalysisPreset
}

// NewPresetTable returns a table seeded with the built-in profiles.
func NewPresetTable() *PresetTable {
	t := &PresetTable{presets: make(map[string]AnalysisPreset)}
	for _, p := range builtinPresets() {
		t.presets[p.Name] = p
	}
	return t
}

func builtinPresets() []AnalysisPreset {
	return []AnalysisPreset{
		{
			Name:           "quick",
			Threads:        1,
			HashMB:         64,
			MoveTimeMillis: 300,
			PVLimit:        3,
		},
		DefaultPreset(),
		{
			Name:           "deep",
			Threads:        4,
			HashMB:         256,
			MoveTimeMillis: 4000,
			DepthCap:       24,
			PVLimit:        7,
		},
	}
}

// DefaultPreset is the profile used when no preset is named.
func DefaultPreset() AnalysisPreset {
	return AnalysisPreset{
		Name:           "standard",
		Threads:        2,
		HashMB:         128,
		MoveTimeMillis: 1000,
		PVLimit:        defaultPVLimit,
	}
}

// Get looks a preset up by name, case-insensitively. An empty name falls back
// to the default profile.
func (t *PresetTable) Get(name string) (AnalysisPreset, error) {
	token := strings.ToLower(strings.TrimSpace(name))
	if token == "" {
		return DefaultPreset(), nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	preset, ok := t.presets[token]
	if !ok {
		return AnalysisPreset{}, fmt.Errorf("unknown analysis preset %q", name)
	}
	return preset, nil
}

// Register adds or replaces a preset after validating it.
func (t *PresetTable) Register(p AnalysisPreset) error {
	if err := validatePreset(p); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.presets[strings.ToLower(p.Name)] = p
	return nil
}

// LoadFile merges presets from a YAML file over the table. The file holds a
// list of AnalysisPreset documents.
func (t *PresetTable) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preset file: %w", err)
	}
	var loaded []AnalysisPreset
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("parse preset file: %w", err)
	}
	for _, p := range loaded {
		if err := t.Register(p); err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return nil
}

func validatePreset(p AnalysisPreset) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("preset name required")
	}
	if p.HashMB <= 0 {
		return fmt.Errorf("hash size must be > 0: %d", p.HashMB)
	}
	if p.MoveTimeMillis <= 0 && p.DepthCap <= 0 {
		return fmt.Errorf("preset needs a movetime or depth limit")
	}
	if p.PVLimit < 0 {
		return fmt.Errorf("pv limit must be >= 0: %d", p.PVLimit)
	}
	return nil
}
