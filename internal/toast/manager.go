package toast

import (
	"log/slog"
	"slices"
	"time"

	"github.com/jmylchreest/toastui/internal/dom"
	"github.com/jmylchreest/toastui/internal/frame"
)

// DefaultExitTransition is how long the exit state is shown before the
// element is detached.
const DefaultExitTransition = 300 * time.Millisecond

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Defaults are merged over DefaultOptions and applied under every Show.
	Defaults Options
	// ExitTransition is the delay between closing and detaching. Zero
	// detaches synchronously.
	ExitTransition time.Duration
	// MaxVisible caps the notifications per container; the oldest is
	// closed when a new one would exceed it. Zero means unlimited.
	MaxVisible int
}

// DefaultManagerConfig returns the default manager configuration.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Defaults:       DefaultOptions(),
		ExitTransition: DefaultExitTransition,
	}
}

// ShowHook is called after a notification is created and its options applied.
type ShowHook func(n *Notification)

// CloseHook is called after a notification's element has been detached.
type CloseHook func(n *Notification, reason CloseReason)

// suspender is implemented by schedulers that can stop delivering frames
// while the document is hidden.
type suspender interface {
	SetSuspended(suspended bool)
}

// Manager owns the document, the scheduler, the container registry and
// every live notification.
type Manager struct {
	doc      *dom.Document
	sched    frame.Scheduler
	registry *Registry
	logger   *slog.Logger

	defaults       Options
	exitTransition time.Duration
	maxVisible     int

	live []*Notification

	onShow   []ShowHook
	onClosed []CloseHook
}

// NewManager creates a manager. A nil doc gets a fresh document.
func NewManager(doc *dom.Document, sched frame.Scheduler, cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if doc == nil {
		doc = dom.NewDocument()
	}

	m := &Manager{
		doc:            doc,
		sched:          sched,
		registry:       NewRegistry(doc),
		logger:         logger,
		defaults:       DefaultOptions().Merge(cfg.Defaults),
		exitTransition: cfg.ExitTransition,
		maxVisible:     cfg.MaxVisible,
	}

	// Hidden documents get no frames.
	if s, ok := sched.(suspender); ok {
		doc.AddEventListener(dom.EventVisibilityChange, func(dom.Event) {
			hidden := doc.Visibility() == dom.VisibilityHidden
			s.SetSuspended(hidden)
			m.logger.Debug("document visibility changed", "visibility", doc.Visibility())
		})
	}

	return m
}

// Show creates a notification from opts merged over the manager defaults.
func (m *Manager) Show(opts Options) *Notification {
	merged := m.defaults.Merge(opts)

	n := newNotification(m)
	m.live = append(m.live, n)
	n.apply(merged)

	m.logger.Debug("showing notification",
		"id", n.id,
		"position", n.position,
		"auto_close", n.autoClose,
		"active", len(m.live),
	)

	for _, fn := range m.onShow {
		fn(n)
	}
	return n
}

// ShowMap creates a notification from a free-form mapping.
func (m *Manager) ShowMap(v any) (*Notification, error) {
	opts, ignored, err := ParseOptions(v)
	if err != nil {
		m.logger.Error("invalid notification options", "error", err)
		return nil, err
	}
	if len(ignored) > 0 {
		m.logger.Debug("ignored notification options", "keys", ignored)
	}
	return m.Show(opts), nil
}

// Get returns a live notification by ID.
func (m *Manager) Get(id string) (*Notification, bool) {
	for _, n := range m.live {
		if n.id == id {
			return n, true
		}
	}
	return nil, false
}

// Close starts closing a notification. It reports false if the
// notification is unknown or already closing.
func (m *Manager) Close(id string, reason CloseReason) bool {
	n, ok := m.Get(id)
	if !ok || n.closing {
		return false
	}
	n.close(reason)
	return true
}

// CloseAll closes every live notification.
func (m *Manager) CloseAll(reason CloseReason) {
	for _, n := range slices.Clone(m.live) {
		n.close(reason)
	}
}

// Count returns the number of notifications not yet detached.
func (m *Manager) Count() int { return len(m.live) }

// Notifications returns live notifications in creation order.
func (m *Manager) Notifications() []*Notification {
	return slices.Clone(m.live)
}

// Defaults returns the options applied under every Show.
func (m *Manager) Defaults() Options { return m.defaults }

// SetDefaults replaces the manager defaults. Existing notifications keep
// their options.
func (m *Manager) SetDefaults(opts Options) {
	m.defaults = DefaultOptions().Merge(opts)
}

// SetExitTransition changes the exit transition used by later closes.
func (m *Manager) SetExitTransition(d time.Duration) { m.exitTransition = d }

// SetMaxVisible changes the per-container cap.
func (m *Manager) SetMaxVisible(n int) { m.maxVisible = n }

// OnShow registers a hook run for every new notification.
func (m *Manager) OnShow(fn ShowHook) { m.onShow = append(m.onShow, fn) }

// OnClosed registers a hook run when a notification is detached.
func (m *Manager) OnClosed(fn CloseHook) { m.onClosed = append(m.onClosed, fn) }

// Document returns the managed document.
func (m *Manager) Document() *dom.Document { return m.doc }

// Registry returns the container registry.
func (m *Manager) Registry() *Registry { return m.registry }

// enforceLimit closes the oldest notifications in container until it holds
// at most maxVisible open ones. keep is never closed.
func (m *Manager) enforceLimit(container *dom.Element, keep *Notification) {
	if m.maxVisible <= 0 {
		return
	}
	var open []*Notification
	for _, n := range m.live {
		if !n.closing && n.el.Parent() == container {
			open = append(open, n)
		}
	}
	for excess := len(open) - m.maxVisible; excess > 0; excess-- {
		i := slices.IndexFunc(open, func(n *Notification) bool { return n != keep })
		if i < 0 {
			return
		}
		victim := open[i]
		open = slices.Delete(open, i, i+1)
		m.logger.Debug("container full, closing oldest", "id", victim.id, "position", victim.position)
		victim.close(CloseReasonClosed)
	}
}

func (m *Manager) forget(n *Notification) {
	if i := slices.Index(m.live, n); i >= 0 {
		m.live = slices.Delete(m.live, i, i+1)
	}
	m.logger.Debug("notification removed", "id", n.id, "reason", n.reason, "active", len(m.live))
	for _, fn := range m.onClosed {
		fn(n, n.reason)
	}
}
