package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrThemeNotFound is returned when no user or bundled theme has the name.
var ErrThemeNotFound = errors.New("theme not found")

// Loader resolves theme names to themes.
type Loader struct {
	logger    *slog.Logger
	themesDir string
}

// NewLoader creates a loader reading user themes from ThemesDir.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	themesDir, err := ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		themesDir = ""
	}
	return &Loader{logger: logger, themesDir: themesDir}
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "toastui", "themes"), nil
}

// SetThemesDir changes the user themes directory.
func (l *Loader) SetThemesDir(dir string) { l.themesDir = dir }

// Load loads a theme by name, following its inherits chain.
// Theme resolution order:
//  1. User themes directory (~/.config/toastui/themes/<name>.toml)
//  2. Bundled themes
//
// A user theme with a bundled theme's name overrides it.
func (l *Loader) Load(name string) (*Theme, error) {
	return l.load(name, nil)
}

func (l *Loader) load(name string, seen []string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}
	if slices.Contains(seen, name) {
		return nil, fmt.Errorf("theme %s inherits itself: %s", name, strings.Join(append(seen, name), " -> "))
	}
	seen = append(seen, name)

	t, err := l.read(name)
	if err != nil {
		return nil, err
	}
	if t.Inherits == "" {
		return t, nil
	}

	base, err := l.load(t.Inherits, seen)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	return t.Over(base), nil
}

func (l *Loader) read(name string) (*Theme, error) {
	if l.themesDir != "" {
		path := filepath.Join(l.themesDir, name+".toml")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			t, err := Parse(name, data)
			if err != nil {
				return nil, err
			}
			t.Path = path
			l.logger.Debug("loaded user theme", "name", name, "path", path)
			return t, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read theme %s: %w", name, err)
		}
	}

	if data, found := GetEmbeddedTheme(name); found {
		l.logger.Debug("loaded bundled theme", "name", name)
		return Parse(name, data)
	}
	return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
}

// LoadOrDefault loads name, falling back to the bundled default theme.
func (l *Loader) LoadOrDefault(name string) *Theme {
	t, err := l.Load(name)
	if err == nil {
		return t
	}
	l.logger.Warn("failed to load theme, using default", "theme", name, "error", err)
	data, _ := GetEmbeddedTheme(DefaultThemeName)
	t, err = Parse(DefaultThemeName, data)
	if err != nil {
		return &Theme{Name: DefaultThemeName}
	}
	return t
}

// ListThemes returns bundled and user theme names without duplicates.
func (l *Loader) ListThemes() []string {
	themes := ListEmbeddedThemes()

	if l.themesDir == "" {
		return themes
	}
	entries, err := os.ReadDir(l.themesDir)
	if err != nil {
		l.logger.Debug("failed to read themes directory", "error", err)
		return themes
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".toml" {
			continue
		}
		if name = strings.TrimSuffix(name, ".toml"); !slices.Contains(themes, name) {
			themes = append(themes, name)
		}
	}
	return themes
}
