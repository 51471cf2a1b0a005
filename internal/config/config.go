// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastui/internal/toast"
)

// Default configuration values.
const (
	DefaultFrameRate  = 30
	DefaultToastWidth = 36
	DefaultMaxVisible = 5
	DefaultVolume     = 80
	DefaultTheme      = "default"
	DefaultMaxHistory = 500
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "10s", "1m", "1h30m", or integer milliseconds.
// A value of "0" or 0 means never expire.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Integer milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML and YAML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int {
	return int(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the toastui configuration.
// Loaded from ~/.config/toastui/toastui.toml
type Config struct {
	Defaults DefaultsConfig `toml:"defaults" yaml:"defaults"`
	Display  DisplayConfig  `toml:"display" yaml:"display"`
	Timeouts TimeoutConfig  `toml:"timeouts" yaml:"timeouts"`
	Audio    AudioConfig    `toml:"audio" yaml:"audio"`
	History  HistoryConfig  `toml:"history" yaml:"history"`
}

// DefaultsConfig holds the options applied to every new notification.
type DefaultsConfig struct {
	Position         string   `toml:"position" yaml:"position"`     // "top-right", "bottom-left", etc.
	AutoClose        Duration `toml:"auto_close" yaml:"auto_close"` // "0" disables auto close
	CanClose         bool     `toml:"can_close" yaml:"can_close"`
	ShowProgress     bool     `toml:"show_progress" yaml:"show_progress"`
	PauseOnHover     bool     `toml:"pause_on_hover" yaml:"pause_on_hover"`
	PauseOnFocusLoss bool     `toml:"pause_on_focus_loss" yaml:"pause_on_focus_loss"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	ExitTransition Duration `toml:"exit_transition" yaml:"exit_transition"` // Delay before a closed toast is removed
	FrameRate      int      `toml:"frame_rate" yaml:"frame_rate"`           // Frames per second
	Width          int      `toml:"width" yaml:"width"`                     // Toast width in cells
	MaxVisible     int      `toml:"max_visible" yaml:"max_visible"`         // Per position, 0 = unlimited
	Theme          string   `toml:"theme" yaml:"theme"`                     // Bundled or user theme name
}

// TimeoutConfig contains auto close settings per urgency level, used for
// D-Bus notifications that ask for the server default.
// A value of "0" or 0 means never expire.
type TimeoutConfig struct {
	Low      Duration `toml:"low" yaml:"low"`
	Normal   Duration `toml:"normal" yaml:"normal"`
	Critical Duration `toml:"critical" yaml:"critical"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled" yaml:"enabled"`
	Volume  int         `toml:"volume" yaml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds" yaml:"sounds"`
}

// SoundConfig contains per-urgency sound file paths.
type SoundConfig struct {
	Low      string `toml:"low" yaml:"low"`
	Normal   string `toml:"normal" yaml:"normal"`
	Critical string `toml:"critical" yaml:"critical"`
}

// HistoryConfig controls the log of closed notifications.
type HistoryConfig struct {
	Enabled    bool   `toml:"enabled" yaml:"enabled"`
	MaxEntries int    `toml:"max_entries" yaml:"max_entries"` // 0 = unlimited
	Path       string `toml:"path" yaml:"path"`               // Empty uses the XDG data directory
}

// ValidationError reports a configuration value out of range.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Position:         string(toast.DefaultPosition),
			AutoClose:        Duration(toast.DefaultAutoClose),
			CanClose:         true,
			ShowProgress:     true,
			PauseOnHover:     true,
			PauseOnFocusLoss: true,
		},
		Display: DisplayConfig{
			ExitTransition: Duration(toast.DefaultExitTransition),
			FrameRate:      DefaultFrameRate,
			Width:          DefaultToastWidth,
			MaxVisible:     DefaultMaxVisible,
			Theme:          DefaultTheme,
		},
		Timeouts: TimeoutConfig{
			Low:      Duration(5 * time.Second),
			Normal:   Duration(10 * time.Second),
			Critical: Duration(0), // Never expires
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: DefaultMaxHistory,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastui", "toastui.toml")
}

// Load loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !toast.Position(c.Defaults.Position).Valid() {
		return &ValidationError{
			Field:  "defaults.position",
			Value:  c.Defaults.Position,
			Reason: fmt.Sprintf("must be one of: %v", toast.Positions()),
		}
	}
	if c.Defaults.AutoClose < 0 {
		return &ValidationError{Field: "defaults.auto_close", Value: c.Defaults.AutoClose.Duration(), Reason: "must not be negative"}
	}

	if c.Display.ExitTransition < 0 {
		return &ValidationError{Field: "display.exit_transition", Value: c.Display.ExitTransition.Duration(), Reason: "must not be negative"}
	}
	if c.Display.FrameRate < 1 || c.Display.FrameRate > 240 {
		return &ValidationError{Field: "display.frame_rate", Value: c.Display.FrameRate, Reason: "must be between 1 and 240"}
	}
	if c.Display.Width < 16 || c.Display.Width > 200 {
		return &ValidationError{Field: "display.width", Value: c.Display.Width, Reason: "must be between 16 and 200"}
	}
	if c.Display.MaxVisible < 0 || c.Display.MaxVisible > 50 {
		return &ValidationError{Field: "display.max_visible", Value: c.Display.MaxVisible, Reason: "must be between 0 and 50"}
	}
	if c.Display.Theme == "" {
		return &ValidationError{Field: "display.theme", Value: `""`, Reason: "must name a theme"}
	}

	for name, d := range map[string]Duration{
		"timeouts.low":      c.Timeouts.Low,
		"timeouts.normal":   c.Timeouts.Normal,
		"timeouts.critical": c.Timeouts.Critical,
	} {
		if d < 0 {
			return &ValidationError{Field: name, Value: d.Duration(), Reason: "must not be negative"}
		}
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return &ValidationError{Field: "audio.volume", Value: c.Audio.Volume, Reason: "must be between 0 and 100"}
	}

	if c.History.MaxEntries < 0 {
		return &ValidationError{Field: "history.max_entries", Value: c.History.MaxEntries, Reason: "must not be negative"}
	}

	return nil
}

// ToastDefaults returns the [defaults] section as notification options.
func (c *Config) ToastDefaults() toast.Options {
	d := c.Defaults
	return toast.Options{
		Position:         toast.Ptr(toast.Position(d.Position)),
		AutoClose:        toast.Ptr(toast.AutoCloseAfter(d.AutoClose.Duration())),
		CanClose:         toast.Ptr(d.CanClose),
		ShowProgress:     toast.Ptr(d.ShowProgress),
		PauseOnHover:     toast.Ptr(d.PauseOnHover),
		PauseOnFocusLoss: toast.Ptr(d.PauseOnFocusLoss),
	}
}

// ManagerConfig returns the toast manager settings.
func (c *Config) ManagerConfig() toast.ManagerConfig {
	return toast.ManagerConfig{
		Defaults:       c.ToastDefaults(),
		ExitTransition: c.Display.ExitTransition.Duration(),
		MaxVisible:     c.Display.MaxVisible,
	}
}

// FrameInterval returns the time between frames.
func (c *Config) FrameInterval() time.Duration {
	if c.Display.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.Display.FrameRate)
}

// TimeoutForUrgency returns the auto close time for the given urgency level.
func (c *Config) TimeoutForUrgency(urgency int) time.Duration {
	switch urgency {
	case 0: // Low
		return c.Timeouts.Low.Duration()
	case 2: // Critical
		return c.Timeouts.Critical.Duration()
	default: // Normal (1) or unknown
		return c.Timeouts.Normal.Duration()
	}
}

// HistoryPath returns the history file path.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return expandPath(c.History.Path)
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "toastui", "history.jsonl")
}

// SoundForUrgency returns the sound file path for the given urgency level.
// Expands ~ to home directory.
func (c *Config) SoundForUrgency(urgency int) string {
	var path string
	switch urgency {
	case 0: // Low
		path = c.Audio.Sounds.Low
	case 2: // Critical
		path = c.Audio.Sounds.Critical
	default: // Normal (1) or unknown
		path = c.Audio.Sounds.Normal
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
