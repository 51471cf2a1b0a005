package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastui/internal/dbus"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

func (l NotificationLevel) urgency() dbus.Urgency {
	switch l {
	case NotificationLevelInfo:
		return dbus.UrgencyLow
	case NotificationLevelError:
		return dbus.UrgencyCritical
	default:
		return dbus.UrgencyNormal
	}
}

// InternalNotifier raises toasts about toastuid's own events. Repeats of the
// same key inside minInterval are dropped.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	notifyHandler func(n *dbus.Notification) uint32

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		now:            time.Now,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetNotifyHandler sets the function that shows a notification, normally
// Server.NotifyInternal.
func (n *InternalNotifier) SetNotifyHandler(handler func(notification *dbus.Notification) uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyHandler = handler
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications sharing a key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends an internal notification unless it is rate limited.
func (n *InternalNotifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}
	if n.notifyHandler == nil {
		n.logger.Debug("internal notification skipped: no handler", "summary", summary)
		return
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now

	hints := dbus.NewHints(level.urgency(), "")
	// Internal notifications never play a sound, so an audio error cannot
	// trigger another one.
	hints["suppress-sound"] = godbus.MakeVariant(true)
	hints["transient"] = godbus.MakeVariant(true)

	notification := &dbus.Notification{
		AppName:       "toastuid",
		Summary:       summary,
		Body:          body,
		Hints:         hints,
		ExpireTimeout: 5000,
	}

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "level", level)
	_ = n.notifyHandler(notification)
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"toastuid configuration has been reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError reports a config file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyStartup reports that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify(
		"startup",
		"toastuid Started",
		"Notification daemon v"+version+" is now running.",
		NotificationLevelInfo,
	)
}

// NotifyAudioError reports a failed sound.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify(
		"audio-error",
		"Audio Error",
		"Failed to play notification sound: "+err.Error(),
		NotificationLevelWarning,
	)
}

var desktopNotify = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

// DesktopHandler returns a notify handler that sends internal notices to
// whichever daemon owns the session bus. It is used in monitor mode, where
// the notice comes back to toastuid as a mirrored notification.
func DesktopHandler(logger *slog.Logger) func(n *dbus.Notification) uint32 {
	if logger == nil {
		logger = slog.Default()
	}
	return func(n *dbus.Notification) uint32 {
		if err := desktopNotify(n.Summary, n.Body); err != nil {
			logger.Warn("failed to send desktop notification", "summary", n.Summary, "error", err)
		}
		return 0
	}
}
