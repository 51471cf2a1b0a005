// Package tui hosts the toast document in a BubbleTea terminal program. The
// BubbleTea update loop is the only goroutine that touches the document and
// the frame queue; other goroutines reach the manager through CallMsg.
package tui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/dom"
	"github.com/jmylchreest/toastui/internal/frame"
	"github.com/jmylchreest/toastui/internal/render"
	"github.com/jmylchreest/toastui/internal/theme"
	"github.com/jmylchreest/toastui/internal/toast"
)

// CallMsg runs a function against the manager on the update loop.
type CallMsg func(m *toast.Manager)

// ThemeMsg replaces the renderer colours.
type ThemeMsg render.Theme

type frameMsg time.Time

type scriptStepMsg int

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Model is the main TUI model.
type Model struct {
	queue    *frame.Queue
	manager  *toast.Manager
	renderer *render.Renderer
	runner   *ScriptRunner
	logger   *slog.Logger

	// Script
	script       []Step
	exitWhenIdle bool

	// Frame clock
	start         time.Time
	frameInterval time.Duration

	// Components
	keys KeyMap
	help help.Model

	// State
	hovered string
	created int
	width   int
	height  int
	ready   bool

	// Status message
	statusMsg string
	statusErr bool
}

// New creates a new TUI model.
func New(opts RunOptions) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	q := frame.NewQueue()
	mgr := toast.NewManager(dom.NewDocument(), q, cfg.ManagerConfig(), logger)

	renderer := render.New(cfg.Display.Width)
	renderer.SetTheme(theme.NewLoader(logger).LoadOrDefault(cfg.Display.Theme).Render())

	return Model{
		queue:         q,
		manager:       mgr,
		renderer:      renderer,
		runner:        NewScriptRunner(mgr, logger),
		logger:        logger,
		script:        opts.Script,
		exitWhenIdle:  opts.ExitWhenIdle,
		start:         time.Now(),
		frameInterval: cfg.FrameInterval(),
		keys:          DefaultKeyMap(),
		help:          help.New(),
	}
}

// Manager returns the toast manager. It must only be used from the update
// loop, or before the program starts.
func (m Model) Manager() *toast.Manager { return m.manager }

// Init starts the frame clock and the script.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.scheduleStep(0))
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) scheduleStep(i int) tea.Cmd {
	if i >= len(m.script) {
		return nil
	}
	return tea.Tick(m.script[i].After, func(time.Time) tea.Msg {
		return scriptStepMsg(i)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.renderer.SetSize(msg.Width, max(msg.Height-1, 0))
		m.help.Width = msg.Width
		return m, nil

	case tea.FocusMsg:
		m.manager.Document().SetVisibility(dom.VisibilityVisible)
		return m, nil

	case tea.BlurMsg:
		m.manager.Document().SetVisibility(dom.VisibilityHidden)
		return m, nil

	case frameMsg:
		m.queue.Run(time.Time(msg).Sub(m.start))
		if _, ok := m.manager.Get(m.hovered); !ok && m.hovered != "" {
			m.hovered = ""
			m.renderer.SetHighlight("")
		}
		if m.exitWhenIdle && m.queue.Len() == 0 && m.manager.Count() == 0 && len(m.script) == 0 {
			return m, tea.Quit
		}
		return m, m.tick()

	case scriptStepMsg:
		i := int(msg)
		var cmds []tea.Cmd
		if err := m.runner.Apply(m.script[i]); err != nil {
			m.logger.Warn("script step failed", "step", i+1, "error", err)
			cmds = append(cmds, status(fmt.Sprintf("step %d: %v", i+1, err), true))
		}
		if i+1 < len(m.script) {
			cmds = append(cmds, m.scheduleStep(i+1))
		} else {
			m.script = nil
		}
		return m, tea.Batch(cmds...)

	case CallMsg:
		msg(m.manager)
		return m, nil

	case ThemeMsg:
		m.renderer.SetTheme(render.Theme(msg))
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Next):
		m.cycleHover(1)

	case key.Matches(msg, m.keys.Prev):
		m.cycleHover(-1)

	case key.Matches(msg, m.keys.Click):
		if n, ok := m.manager.Get(m.hovered); ok {
			n.Click()
		}

	case key.Matches(msg, m.keys.Leave):
		m.setHover("")

	case key.Matches(msg, m.keys.New):
		m.manager.Show(demoOptions(m.created))
		m.created++

	case key.Matches(msg, m.keys.CloseAll):
		m.manager.CloseAll(toast.CloseReasonClosed)
		return m, status("Closed all notifications", false)

	case key.Matches(msg, m.keys.Visibility):
		doc := m.manager.Document()
		if doc.Visibility() == dom.VisibilityVisible {
			doc.SetVisibility(dom.VisibilityHidden)
			return m, status("Document hidden, frames suspended", false)
		}
		doc.SetVisibility(dom.VisibilityVisible)
		return m, status("Document visible", false)
	}
	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// cycleHover moves the simulated pointer to the next open notification.
func (m *Model) cycleHover(dir int) {
	var open []*toast.Notification
	for _, n := range m.manager.Notifications() {
		if !n.Closing() {
			open = append(open, n)
		}
	}
	if len(open) == 0 {
		m.setHover("")
		return
	}

	i := slices.IndexFunc(open, func(n *toast.Notification) bool { return n.ID() == m.hovered })
	switch {
	case i < 0 && dir < 0:
		i = len(open) - 1
	case i < 0:
		i = 0
	default:
		i = (i + dir + len(open)) % len(open)
	}
	m.setHover(open[i].ID())
}

func (m *Model) setHover(id string) {
	if m.hovered == id {
		return
	}
	if n, ok := m.manager.Get(m.hovered); ok {
		n.PointerLeave()
	}
	m.hovered = id
	if n, ok := m.manager.Get(id); ok {
		n.PointerEnter()
	}
	m.renderer.SetHighlight(id)
}

// demoOptions returns the options for the i-th toast created from the
// keyboard, cycling through positions.
func demoOptions(i int) toast.Options {
	positions := toast.Positions()
	pos := positions[i%len(positions)]
	return toast.Options{
		Position: toast.Ptr(pos),
		Text:     toast.Ptr(fmt.Sprintf("Notification #%d (%s)", i+1, pos)),
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.renderer.Render(m.manager.Document()) + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return statusStyle.Render(m.statusMsg)
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	parts := []string{fmt.Sprintf("%d active", m.manager.Count())}
	if last := m.lastShown(); !last.IsZero() {
		parts = append(parts, "last shown "+humanize.Time(last))
	}
	if m.manager.Document().Visibility() == dom.VisibilityHidden {
		parts = append(parts, "hidden")
	}
	info := style.Render(strings.Join(parts, " · "))

	if m.help.ShowAll {
		return info + "\n" + m.help.View(m.keys)
	}
	return info + "  " + m.help.View(m.keys)
}

func (m Model) lastShown() time.Time {
	var last time.Time
	for _, n := range m.manager.Notifications() {
		if n.CreatedAt().After(last) {
			last = n.CreatedAt()
		}
	}
	return last
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config       *config.Config
	Logger       *slog.Logger
	Script       []Step
	ExitWhenIdle bool // Quit once the script has run and every toast is gone

	ProgramOptions []tea.ProgramOption
}

// Program is a running TUI.
type Program struct {
	*tea.Program
	model Model
}

// NewProgram creates a program. Hooks may be registered on Manager before
// Run is called.
func NewProgram(opts RunOptions) *Program {
	m := New(opts)
	popts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithReportFocus()}, opts.ProgramOptions...)
	return &Program{
		Program: tea.NewProgram(m, popts...),
		model:   m,
	}
}

// Manager returns the toast manager. Once Run has been called it must only
// be used inside Call.
func (p *Program) Manager() *toast.Manager { return p.model.manager }

// Call runs fn on the update loop. It is safe to call from any goroutine.
func (p *Program) Call(fn func(m *toast.Manager)) {
	p.Send(CallMsg(fn))
}

// SetTheme replaces the renderer colours. It is safe to call from any
// goroutine.
func (p *Program) SetTheme(t render.Theme) {
	p.Send(ThemeMsg(t))
}

// Run starts the program and blocks until it exits.
func (p *Program) Run() error {
	_, err := p.Program.Run()
	return err
}

// Run starts the TUI with the given options.
func Run(opts RunOptions) error {
	return NewProgram(opts).Run()
}
