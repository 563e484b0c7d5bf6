package core

// RuntimeConfig carries the terminal-facing settings of a front-end.
type RuntimeConfig struct {
	ScreenW int   // terminal width in characters
	ScreenH int   // terminal height in characters
	Seed    int64 // RNG seed for random moves; 0 means time-based
	Colors  bool  // colour the board
}

// DefaultConfig returns a RuntimeConfig for a standard 80x24 terminal.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		Colors:  true,
	}
}
