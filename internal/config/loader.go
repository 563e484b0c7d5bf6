package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/mnac/internal/games/mnac"
	"github.com/vovakirdan/mnac/internal/session"
)

// Load loads the configuration and validates it.
// Search order: customPath -> ~/.mnac/config.yaml -> ./configs/mnac.yaml -> embedded default
//
// Files only need the keys they change; the rest keeps its default.
func Load(customPath string) (Config, error) {
	cfg, err := load(customPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func load(customPath string) (Config, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(expandHome(customPath))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory, then local configs directory
	for _, p := range []string{userConfigPath("config.yaml"), filepath.Join("configs", "mnac.yaml")} {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("failed to parse config %s: %w", p, err)
		}
		return cfg, nil
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mnac", filename)
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	grid, err := ParseStartGrid(c.Rules.StartGrid)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("rules.start_grid: %w", err))
	case grid == 4 && c.Rules.NoMiddleStart:
		errs = append(errs, errors.New("rules.start_grid: centre start conflicts with no_middle_start"))
	}

	if c.Session.LobbyTimeout <= 0 {
		errs = append(errs, errors.New("session.lobby_timeout must be positive"))
	}
	if c.Session.GameTimeout <= 0 {
		errs = append(errs, errors.New("session.game_timeout must be positive"))
	}
	if c.Session.CleanupPeriod <= 0 {
		errs = append(errs, errors.New("session.cleanup_period must be positive"))
	}
	if strings.TrimSpace(c.Session.Prefix) == "" {
		errs = append(errs, errors.New("session.prefix must not be empty"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path must not be empty"))
	}
	if c.Render.CacheSize < 0 {
		errs = append(errs, errors.New("render.cache_size must not be negative"))
	}
	if c.Server.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.idle_timeout must not be negative"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Engine returns the engine options for new matches.
func (c Config) Engine() (mnac.Config, error) {
	grid, err := ParseStartGrid(c.Rules.StartGrid)
	if err != nil {
		return mnac.Config{}, err
	}
	return mnac.Config{NoMiddleStart: c.Rules.NoMiddleStart, StartGrid: grid}, nil
}

// Manager returns the session manager settings. seed 0 means time-based.
func (c Config) Manager(seed int64) (session.Config, error) {
	rules, err := c.Engine()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		LobbyTimeout:  c.Session.LobbyTimeout,
		GameTimeout:   c.Session.GameTimeout,
		CleanupPeriod: c.Session.CleanupPeriod,
		Rules:         rules,
		Seed:          seed,
	}, nil
}

// LogLevel returns the parsed log level, info when unset.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// StoragePath returns storage.path with "~" expanded.
func (c Config) StoragePath() string {
	return expandHome(c.Storage.Path)
}

// HostKeyPath returns server.host_key with "~" expanded.
func (c Config) HostKeyPath() string {
	return expandHome(c.Server.HostKey)
}
