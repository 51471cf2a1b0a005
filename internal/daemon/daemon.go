package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/dbus"
	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/toast"
)

// Host runs functions against the toast manager on its own goroutine.
type Host interface {
	Call(fn func(m *toast.Manager))
}

// Signaller reports notification lifecycle events back to D-Bus clients.
type Signaller interface {
	CloseWithReason(id uint32, reason dbus.CloseReason) error
	InvokeAction(id uint32, actionKey string) error
}

// Player plays notification sounds.
type Player interface {
	Play(path string) error
}

// Recorder keeps closed notifications.
type Recorder interface {
	Add(r history.Record) error
}

// Daemon turns D-Bus requests into toasts and toast lifecycle events into
// D-Bus signals.
type Daemon struct {
	mu     sync.RWMutex
	cfg    *config.Config
	logger *slog.Logger

	host     Host
	signals  Signaller
	player   Player
	notifier *InternalNotifier
	history  Recorder
	tracker  *Tracker

	now func() time.Time
}

// New creates a Daemon. signals may be nil when nothing listens for
// lifecycle events, as when mirroring another daemon.
func New(cfg *config.Config, host Host, signals Signaller, logger *slog.Logger) *Daemon {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		cfg:     cfg,
		logger:  logger,
		host:    host,
		signals: signals,
		tracker: NewTracker(),
		now:     time.Now,
	}
}

// SetPlayer sets the sound player. A nil player disables sounds.
func (d *Daemon) SetPlayer(p Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.player = p
}

// SetNotifier sets the notifier used to report audio errors.
func (d *Daemon) SetNotifier(n *InternalNotifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifier = n
}

// SetHistory sets where closed notifications are recorded. A nil recorder
// disables history.
func (d *Daemon) SetHistory(r Recorder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = r
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Tracker returns the ID tracker.
func (d *Daemon) Tracker() *Tracker { return d.tracker }

// Attach registers the lifecycle hooks on m. It must run before the host
// starts, or inside Host.Call.
func (d *Daemon) Attach(m *toast.Manager) {
	m.OnClosed(d.handleClosed)
}

// HandleNotify shows n, or updates the toast it replaces. It is safe to call
// from the D-Bus goroutine.
func (d *Daemon) HandleNotify(n *dbus.Notification, id uint32, replaced bool) {
	opts := OptionsFor(n, d.Config())

	d.host.Call(func(m *toast.Manager) {
		if replaced {
			if toastID, ok := d.tracker.ToastID(id); ok {
				if t, ok := m.Get(toastID); ok && !t.Closing() {
					t.Update(opts)
					d.tracker.Register(entryFor(n, id, toastID))
					d.logger.Debug("notification replaced", "dbus_id", id, "toast_id", toastID)
					return
				}
			}
		}

		t := m.Show(opts)
		d.tracker.Register(entryFor(n, id, t.ID()))
		d.logger.Debug("notification shown", "dbus_id", id, "toast_id", t.ID(), "app", n.AppName)
	})

	d.playSound(n)
}

// HandleClose closes the toast showing the D-Bus notification id.
func (d *Daemon) HandleClose(id uint32) {
	d.host.Call(func(m *toast.Manager) {
		toastID, ok := d.tracker.ToastID(id)
		if !ok {
			return
		}
		if !m.Close(toastID, toast.CloseReasonClosed) {
			d.logger.Debug("close requested for a toast already closing", "dbus_id", id)
		}
	})
}

// ApplyConfig switches to cfg. Existing toasts keep their options.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	d.host.Call(func(m *toast.Manager) {
		m.SetDefaults(cfg.ToastDefaults())
		m.SetExitTransition(cfg.Display.ExitTransition.Duration())
		m.SetMaxVisible(cfg.Display.MaxVisible)
	})
}

func (d *Daemon) handleClosed(t *toast.Notification, reason toast.CloseReason) {
	e, ok := d.tracker.RemoveByToast(t.ID())
	if !ok {
		return
	}

	var action string
	if reason == toast.CloseReasonDismissed {
		action = e.DefaultAction
	}
	d.record(e, reason, action)

	if d.signals == nil {
		return
	}
	if action != "" {
		if err := d.signals.InvokeAction(e.DBusID, action); err != nil {
			d.logger.Warn("failed to emit ActionInvoked", "dbus_id", e.DBusID, "error", err)
		}
	}
	if err := d.signals.CloseWithReason(e.DBusID, dbus.ReasonFromToast(reason)); err != nil {
		d.logger.Warn("failed to emit NotificationClosed", "dbus_id", e.DBusID, "error", err)
	}
}

func (d *Daemon) record(e Entry, reason toast.CloseReason, action string) {
	d.mu.RLock()
	recorder := d.history
	d.mu.RUnlock()

	if recorder == nil || e.Transient || e.Summary == "" {
		return
	}

	r, err := history.NewRecord(d.now())
	if err != nil {
		d.logger.Warn("failed to create history record", "error", err)
		return
	}
	r.DBusID = e.DBusID
	r.AppName = e.AppName
	r.Summary = e.Summary
	r.Body = e.Body
	r.SetUrgency(int(e.Urgency))
	r.Reason = dbus.ReasonFromToast(reason).String()
	r.Action = action
	r.ShownAt = e.CreatedAt.Unix()

	if err := recorder.Add(r); err != nil {
		d.logger.Warn("failed to record notification", "dbus_id", e.DBusID, "error", err)
	}
}

func (d *Daemon) playSound(n *dbus.Notification) {
	d.mu.RLock()
	cfg, player, notifier := d.cfg, d.player, d.notifier
	d.mu.RUnlock()

	if player == nil || !cfg.Audio.Enabled || n.SuppressSound() {
		return
	}
	path := n.SoundFile()
	if path == "" {
		path = cfg.SoundForUrgency(int(n.Urgency()))
	}
	if path == "" {
		return
	}

	if err := player.Play(path); err != nil {
		d.logger.Warn("failed to play sound", "path", path, "error", err)
		if notifier != nil {
			notifier.NotifyAudioError(err)
		}
	}
}
