package daemon

import (
	"time"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/dbus"
	"github.com/jmylchreest/toastui/internal/toast"
)

// OptionsFor converts a D-Bus notification to toast options. Fields the
// sender did not express are left unset so the manager defaults apply.
func OptionsFor(n *dbus.Notification, cfg *config.Config) toast.Options {
	opts := toast.Options{
		Text:      toast.Ptr(n.Text()),
		AutoClose: toast.Ptr(autoCloseFor(n, cfg)),
		Classes:   []string{n.Urgency().Class()},
		Style:     n.Style(),
	}
	if p := toast.Position(n.Position()); p.Valid() {
		opts.Position = toast.Ptr(p)
	}
	return opts
}

// autoCloseFor applies the expire_timeout rules: -1 uses the configured
// timeout for the urgency, 0 never expires, anything else is milliseconds.
func autoCloseFor(n *dbus.Notification, cfg *config.Config) toast.AutoClose {
	switch {
	case n.ExpireTimeout < 0:
		return toast.AutoCloseAfter(cfg.TimeoutForUrgency(int(n.Urgency())))
	case n.ExpireTimeout == 0:
		return toast.AutoCloseDisabled
	default:
		return toast.AutoCloseAfter(time.Duration(n.ExpireTimeout) * time.Millisecond)
	}
}
