package theme

import (
	"fmt"
	"maps"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastui/internal/render"
)

// Theme is a set of colours. Colours are lipgloss colour strings: ANSI
// numbers such as "12" or hex values such as "#89b4fa". Empty colours are
// taken from the theme named by Inherits, then from the renderer defaults.
type Theme struct {
	Name     string `toml:"-"`
	Path     string `toml:"-"` // Empty for bundled themes
	Inherits string `toml:"inherits"`

	Foreground string            `toml:"foreground"`
	Border     string            `toml:"border"`
	Highlight  string            `toml:"highlight"`
	Progress   string            `toml:"progress"`
	Muted      string            `toml:"muted"`
	Classes    map[string]string `toml:"classes"` // Border colour per element class
}

// Parse decodes a theme file.
func Parse(name string, data []byte) (*Theme, error) {
	t := &Theme{Name: name}
	if err := toml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", name, err)
	}
	return t, nil
}

// Over returns t with its empty colours filled from base.
func (t *Theme) Over(base *Theme) *Theme {
	out := *t
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&out.Foreground, base.Foreground)
	fill(&out.Border, base.Border)
	fill(&out.Highlight, base.Highlight)
	fill(&out.Progress, base.Progress)
	fill(&out.Muted, base.Muted)

	out.Classes = make(map[string]string, len(base.Classes)+len(t.Classes))
	maps.Copy(out.Classes, base.Classes)
	maps.Copy(out.Classes, t.Classes)
	return &out
}

// Render converts t to renderer colours.
func (t *Theme) Render() render.Theme {
	rt := render.DefaultTheme()
	set := func(dst *lipgloss.Color, src string) {
		if src != "" {
			*dst = lipgloss.Color(src)
		}
	}
	set(&rt.Foreground, t.Foreground)
	set(&rt.Border, t.Border)
	set(&rt.Highlight, t.Highlight)
	set(&rt.Progress, t.Progress)
	set(&rt.Muted, t.Muted)

	for class, c := range t.Classes {
		rt.ClassBorders[class] = lipgloss.Color(c)
	}
	return rt
}
