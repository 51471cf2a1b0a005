package tui

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastui/internal/dom"
	"github.com/jmylchreest/toastui/internal/toast"
)

//go:embed demo.yaml
var demoScript []byte

// Script actions.
const (
	ActionClick    = "click"
	ActionHover    = "hover"
	ActionLeave    = "leave"
	ActionClose    = "close"
	ActionCloseAll = "close-all"
)

// ErrUnknownTarget is returned when a step names a notification that was
// never shown or has already been removed.
var ErrUnknownTarget = errors.New("unknown notification")

// Step is one entry of a YAML script. Steps run in order, each After the
// previous one.
type Step struct {
	After      time.Duration  `yaml:"after,omitempty"`
	As         string         `yaml:"as,omitempty"`
	Show       map[string]any `yaml:"show,omitempty"`
	Target     string         `yaml:"target,omitempty"`
	Update     map[string]any `yaml:"update,omitempty"`
	Action     string         `yaml:"action,omitempty"`
	Visibility string         `yaml:"visibility,omitempty"`
}

// ParseScript decodes a YAML list of steps.
func ParseScript(data []byte) ([]Step, error) {
	var steps []Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, s := range steps {
		if s.After < 0 {
			return nil, fmt.Errorf("step %d: negative delay %s", i+1, s.After)
		}
		if s.Show == nil && s.Update == nil && s.Action == "" && s.Visibility == "" {
			return nil, fmt.Errorf("step %d: nothing to do", i+1)
		}
		if (s.Update != nil || (s.Action != "" && s.Action != ActionCloseAll)) && s.Target == "" && s.As == "" {
			return nil, fmt.Errorf("step %d: update or action needs a target", i+1)
		}
	}
	return steps, nil
}

// LoadScript reads and parses a script file.
func LoadScript(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// DemoScript returns the built-in demo.
func DemoScript() ([]Step, error) {
	return ParseScript(demoScript)
}

// ScriptRunner applies steps to a manager, remembering the names given
// with `as`.
type ScriptRunner struct {
	manager *toast.Manager
	logger  *slog.Logger
	names   map[string]string
}

// NewScriptRunner creates a runner for m.
func NewScriptRunner(m *toast.Manager, logger *slog.Logger) *ScriptRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptRunner{
		manager: m,
		logger:  logger,
		names:   make(map[string]string),
	}
}

// Apply runs one step.
func (r *ScriptRunner) Apply(s Step) error {
	if s.Visibility != "" {
		switch v := dom.Visibility(s.Visibility); v {
		case dom.VisibilityVisible, dom.VisibilityHidden:
			r.manager.Document().SetVisibility(v)
		default:
			return fmt.Errorf("invalid visibility %q", s.Visibility)
		}
	}

	if s.Show != nil {
		n, err := r.manager.ShowMap(s.Show)
		if err != nil {
			return err
		}
		if s.As != "" {
			r.names[s.As] = n.ID()
		}
		r.logger.Debug("script showed notification", "name", s.As, "id", n.ID())
	}

	if s.Update == nil && (s.Action == "" || s.Action == ActionCloseAll) {
		if s.Action == ActionCloseAll {
			r.manager.CloseAll(toast.CloseReasonClosed)
		}
		return nil
	}

	target := s.Target
	if target == "" {
		target = s.As
	}
	n, err := r.lookup(target)
	if err != nil {
		return err
	}

	if s.Update != nil {
		if err := n.UpdateMap(s.Update); err != nil {
			return err
		}
	}

	switch s.Action {
	case "":
	case ActionClick:
		n.Click()
	case ActionHover:
		n.PointerEnter()
	case ActionLeave:
		n.PointerLeave()
	case ActionClose:
		n.Remove()
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}

// Lookup returns the live notification registered under name.
func (r *ScriptRunner) Lookup(name string) (*toast.Notification, bool) {
	n, err := r.lookup(name)
	return n, err == nil
}

func (r *ScriptRunner) lookup(name string) (*toast.Notification, error) {
	id, ok := r.names[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTarget, name)
	}
	n, ok := r.manager.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w %q (already removed)", ErrUnknownTarget, name)
	}
	return n, nil
}
