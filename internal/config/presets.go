package config

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

// Start grid keywords accepted by rules.start_grid.
const (
	StartChoose = "choose"
	StartRandom = "random"
)

// RulesPreset is a named set of rules.
type RulesPreset string

const (
	// PresetClassic forbids opening in the centre and lets the first
	// player choose the start grid.
	PresetClassic RulesPreset = "classic"
	// PresetOpen allows the centre opening.
	PresetOpen RulesPreset = "open"
	// PresetQuick skips the opening choice with a random start grid.
	PresetQuick RulesPreset = "quick"
)

// Presets lists the known presets in display order.
func Presets() []RulesPreset {
	return []RulesPreset{PresetClassic, PresetOpen, PresetQuick}
}

// ApplyPreset overwrites the rules section with a preset.
func ApplyPreset(cfg *Config, preset RulesPreset) error {
	switch preset {
	case PresetClassic:
		cfg.Rules = RulesConfig{NoMiddleStart: true, StartGrid: StartChoose}
	case PresetOpen:
		cfg.Rules = RulesConfig{NoMiddleStart: false, StartGrid: StartChoose}
	case PresetQuick:
		cfg.Rules = RulesConfig{NoMiddleStart: true, StartGrid: StartRandom}
	default:
		return fmt.Errorf("unknown rules preset %q", preset)
	}
	return nil
}

// ParseStartGrid converts a start_grid value to an engine start grid.
// The empty string means choose.
func ParseStartGrid(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", StartChoose:
		return mnac.StartChoose, nil
	case StartRandom:
		return mnac.StartRandom, nil
	}
	i, ok := mnac.ParseIndex(s)
	if !ok {
		return 0, fmt.Errorf("invalid start grid %q", s)
	}
	return i, nil
}
