// Package render draws a toast document to a terminal string with lipgloss.
package render

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastui/internal/dom"
	"github.com/jmylchreest/toastui/internal/toast"
)

// DefaultToastWidth is the outer width of a toast box in cells.
const DefaultToastWidth = 36

// Theme holds the colours used when an element does not override them.
type Theme struct {
	Foreground lipgloss.Color
	Border     lipgloss.Color
	Highlight  lipgloss.Color
	Progress   lipgloss.Color
	Muted      lipgloss.Color

	// ClassBorders overrides the border colour for elements carrying a class,
	// such as urgency-critical.
	ClassBorders map[string]lipgloss.Color
}

// DefaultTheme returns the built-in colours.
func DefaultTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("7"),
		Border:     lipgloss.Color("12"),
		Highlight:  lipgloss.Color("11"),
		Progress:   lipgloss.Color("12"),
		Muted:      lipgloss.Color("8"),
		ClassBorders: map[string]lipgloss.Color{
			"urgency-low":      lipgloss.Color("8"),
			"urgency-critical": lipgloss.Color("9"),
		},
	}
}

// Renderer lays out notification containers in a width x height area.
type Renderer struct {
	theme      Theme
	toastWidth int
	width      int
	height     int
	highlight  string
	bar        progress.Model
}

// New creates a renderer with the default theme.
func New(toastWidth int) *Renderer {
	if toastWidth <= 4 {
		toastWidth = DefaultToastWidth
	}
	r := &Renderer{
		theme:      DefaultTheme(),
		toastWidth: toastWidth,
	}
	r.bar = progress.New(
		progress.WithSolidFill(string(r.theme.Progress)),
		progress.WithoutPercentage(),
		progress.WithWidth(r.innerWidth()),
	)
	return r
}

// SetTheme replaces the colours.
func (r *Renderer) SetTheme(t Theme) {
	r.theme = t
	r.bar.FullColor = string(t.Progress)
}

// Theme returns the current colours.
func (r *Renderer) Theme() Theme { return r.theme }

// SetSize sets the area available to Render.
func (r *Renderer) SetSize(width, height int) {
	r.width = width
	r.height = height
}

// SetHighlight marks the element with the given ID as selected. An empty
// ID clears the selection.
func (r *Renderer) SetHighlight(id string) { r.highlight = id }

// ToastWidth returns the outer width of a toast box.
func (r *Renderer) ToastWidth() int { return r.toastWidth }

func (r *Renderer) innerWidth() int {
	// border + horizontal padding
	return r.toastWidth - 4
}

// Render draws every container in doc. Top containers fill the first rows
// and bottom containers the last rows of the area.
func (r *Renderer) Render(doc *dom.Document) string {
	stacks := make(map[toast.Position]string)
	for _, c := range doc.Body().Children() {
		if !c.HasClass(toast.ClassContainer) {
			continue
		}
		pos := toast.Position(c.Data(toast.DataPosition))
		stacks[pos] = r.RenderContainer(c)
	}

	top := r.row(stacks, lipgloss.Top,
		toast.PositionTopLeft, toast.PositionTopCenter, toast.PositionTopRight)
	bottom := r.row(stacks, lipgloss.Bottom,
		toast.PositionBottomLeft, toast.PositionBottomCenter, toast.PositionBottomRight)

	var lines []string
	if top != "" {
		lines = append(lines, strings.Split(top, "\n")...)
	}
	var tail []string
	if bottom != "" {
		tail = strings.Split(bottom, "\n")
	}
	for len(lines)+len(tail) < r.height {
		lines = append(lines, "")
	}
	return strings.Join(append(lines, tail...), "\n")
}

func (r *Renderer) row(stacks map[toast.Position]string, valign lipgloss.Position, left, center, right toast.Position) string {
	if stacks[left] == "" && stacks[center] == "" && stacks[right] == "" {
		return ""
	}
	width := r.width
	if width <= 0 {
		width = 3 * r.toastWidth
	}
	col := width / 3

	cols := []string{
		lipgloss.PlaceHorizontal(col, lipgloss.Left, stacks[left]),
		lipgloss.PlaceHorizontal(width-2*col, lipgloss.Center, stacks[center]),
		lipgloss.PlaceHorizontal(col, lipgloss.Right, stacks[right]),
	}
	return lipgloss.JoinHorizontal(valign, cols...)
}

// RenderContainer stacks a container's notifications in insertion order.
func (r *Renderer) RenderContainer(container *dom.Element) string {
	children := container.Children()
	boxes := make([]string, 0, len(children))
	for _, el := range children {
		boxes = append(boxes, r.RenderToast(el))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// RenderToast draws a single notification element.
func (r *Renderer) RenderToast(el *dom.Element) string {
	border := r.theme.Border
	for _, class := range el.Classes() {
		if c, ok := r.theme.ClassBorders[class]; ok {
			border = c
		}
	}
	if v, ok := el.Style("border-color"); ok {
		border = lipgloss.Color(v)
	}

	style := lipgloss.NewStyle().
		Width(r.toastWidth-2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(r.theme.Foreground)

	if v, ok := el.Style("color"); ok {
		style = style.Foreground(lipgloss.Color(v))
	}
	if v, ok := el.Style("background"); ok {
		style = style.Background(lipgloss.Color(v))
	} else if v, ok := el.Style("background-color"); ok {
		style = style.Background(lipgloss.Color(v))
	}
	if el.ID() == r.highlight {
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(r.theme.Highlight)
	}
	if !el.HasClass(toast.ClassShow) {
		style = style.Faint(true)
	}

	var lines []string
	header := el.Text()
	if el.HasClass(toast.ClassCanClose) {
		header = r.withCloseMark(header)
	}
	lines = append(lines, header)

	if el.HasClass(toast.ClassPaused) {
		lines = append(lines, lipgloss.NewStyle().Foreground(r.theme.Muted).Render("paused"))
	}
	if el.HasClass(toast.ClassProgress) {
		ratio, ok := el.Property(toast.PropertyProgress)
		if !ok {
			ratio = 1
		}
		lines = append(lines, r.bar.ViewAs(ratio))
	}

	return style.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) withCloseMark(text string) string {
	mark := lipgloss.NewStyle().Foreground(r.theme.Muted).Render("×")
	first, rest, multi := strings.Cut(text, "\n")
	pad := r.innerWidth() - lipgloss.Width(first) - 1
	if pad < 1 {
		pad = 1
	}
	first = first + strings.Repeat(" ", pad) + mark
	if multi {
		return first + "\n" + rest
	}
	return first
}
