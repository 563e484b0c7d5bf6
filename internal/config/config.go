// Package config provides YAML-based configuration loading for the game
// engine, the session manager, storage and the SSH server.
package config

import "time"

// Config is the whole configuration file.
type Config struct {
	Rules    RulesConfig    `yaml:"rules"`
	Session  SessionConfig  `yaml:"session"`
	Storage  StorageConfig  `yaml:"storage"`
	Render   RenderConfig   `yaml:"render"`
	Language LanguageConfig `yaml:"language"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// RulesConfig holds engine options for new matches.
type RulesConfig struct {
	NoMiddleStart bool   `yaml:"no_middle_start"`
	StartGrid     string `yaml:"start_grid"` // "choose", "random" or a direction alias
}

// SessionConfig holds lobby and match timing.
type SessionConfig struct {
	LobbyTimeout  time.Duration `yaml:"lobby_timeout"`
	GameTimeout   time.Duration `yaml:"game_timeout"`
	CleanupPeriod time.Duration `yaml:"cleanup_period"`
	Prefix        string        `yaml:"prefix"`
}

// StorageConfig locates the SQLite database. "~" expands to the home directory.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// RenderConfig sizes the board render cache.
type RenderConfig struct {
	CacheSize int  `yaml:"cache_size"`
	Persist   bool `yaml:"persist"` // keep rendered boards in storage
}

// LanguageConfig selects the default message language.
type LanguageConfig struct {
	Default string `yaml:"default"`
}

// ServerConfig configures `mnac serve`.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	DefaultRoom string        `yaml:"default_room"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
