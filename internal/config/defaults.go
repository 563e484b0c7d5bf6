package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/mnac.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches defaults/mnac.yaml.
func Default() Config {
	return Config{
		Rules: RulesConfig{
			NoMiddleStart: true,
			StartGrid:     StartChoose,
		},
		Session: SessionConfig{
			LobbyTimeout:  5 * time.Minute,
			GameTimeout:   30 * time.Minute,
			CleanupPeriod: 30 * time.Second,
			Prefix:        "mnac/",
		},
		Storage: StorageConfig{
			Path: "~/.mnac/mnac.db",
		},
		Render: RenderConfig{
			CacheSize: 256,
			Persist:   true,
		},
		Language: LanguageConfig{
			Default: "en",
		},
		Server: ServerConfig{
			Address:     ":2323",
			HostKey:     "~/.mnac/ssh_host_ed25519",
			IdleTimeout: 30 * time.Minute,
			DefaultRoom: "lobby",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default file, for `mnac config` style
// bootstrapping and documentation.
func DefaultYAML() []byte {
	return defaultYAML
}
