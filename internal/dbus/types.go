package dbus

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastui/internal/toast"
)

// CloseReason represents the reason for closing a notification.
// Values match the freedesktop.org NotificationClosed reasons.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by freedesktop.org.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// ReasonFromToast maps a toast close reason onto the wire value.
func ReasonFromToast(r toast.CloseReason) CloseReason {
	switch r {
	case toast.CloseReasonExpired:
		return CloseReasonExpired
	case toast.CloseReasonDismissed:
		return CloseReasonDismissed
	case toast.CloseReasonClosed:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Urgency is the value of the urgency hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// String returns the urgency name.
func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Class returns the element class marking a notification of this urgency.
func (u Urgency) Class() string {
	return "urgency-" + u.String()
}

// Hint names understood by the server beyond the standard set.
const (
	HintPosition = "x-toastui-position"
)

// Notification represents an incoming D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *Notification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// DefaultAction returns the key of the "default" action, if any.
func (n *Notification) DefaultAction() (string, bool) {
	for _, a := range n.ParsedActions() {
		if a.Key == "default" {
			return a.Key, true
		}
	}
	return "", false
}

// Text returns the summary and body joined for display.
func (n *Notification) Text() string {
	var parts []string
	if n.AppName != "" && n.Summary != "" {
		parts = append(parts, n.AppName+": "+n.Summary)
	} else if n.Summary != "" {
		parts = append(parts, n.Summary)
	}
	if n.Body != "" {
		parts = append(parts, n.Body)
	}
	return strings.Join(parts, "\n")
}

func (n *Notification) stringHint(name string) string {
	if v, ok := n.Hints[name]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

func (n *Notification) boolHint(name string) bool {
	if v, ok := n.Hints[name]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *Notification) Urgency() Urgency {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok && b <= byte(UrgencyCritical) {
			return Urgency(b)
		}
	}
	return UrgencyNormal
}

// Position extracts the x-toastui-position hint.
func (n *Notification) Position() string { return n.stringHint(HintPosition) }

// Category extracts the category hint from the notification.
func (n *Notification) Category() string { return n.stringHint("category") }

// SoundFile extracts the sound-file hint.
func (n *Notification) SoundFile() string { return n.stringHint("sound-file") }

// SuppressSound returns true if the suppress-sound hint is set.
func (n *Notification) SuppressSound() bool { return n.boolHint("suppress-sound") }

// Transient returns true if the transient hint is set.
func (n *Notification) Transient() bool { return n.boolHint("transient") }

// Resident returns true if the resident hint is set.
// Resident notifications should not be auto-removed after an action is invoked.
func (n *Notification) Resident() bool { return n.boolHint("resident") }

// ForegroundColor extracts the foreground color hint (dunstify -h string:fgcolor:#RRGGBB).
func (n *Notification) ForegroundColor() string { return n.stringHint("fgcolor") }

// BackgroundColor extracts the background color hint (dunstify -h string:bgcolor:#RRGGBB).
func (n *Notification) BackgroundColor() string { return n.stringHint("bgcolor") }

// FrameColor extracts the frame/border color hint (dunstify -h string:frcolor:#RRGGBB).
func (n *Notification) FrameColor() string { return n.stringHint("frcolor") }

// Style returns the colour hints as inline style properties.
func (n *Notification) Style() map[string]string {
	style := make(map[string]string)
	if c := n.ForegroundColor(); c != "" {
		style["color"] = c
	}
	if c := n.BackgroundColor(); c != "" {
		style["background"] = c
	}
	if c := n.FrameColor(); c != "" {
		style["border-color"] = c
	}
	if len(style) == 0 {
		return nil
	}
	return style
}

// parseNotify decodes the body of a Notify method call.
func parseNotify(body []any) (*Notification, error) {
	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout)
	if len(body) < 8 {
		return nil, fmt.Errorf("malformed Notify call: %d arguments", len(body))
	}

	n := &Notification{}
	var ok bool
	if n.AppName, ok = body[0].(string); !ok {
		return nil, fmt.Errorf("invalid app_name type %T", body[0])
	}
	if n.ReplacesID, ok = body[1].(uint32); !ok {
		return nil, fmt.Errorf("invalid replaces_id type %T", body[1])
	}
	if n.AppIcon, ok = body[2].(string); !ok {
		return nil, fmt.Errorf("invalid app_icon type %T", body[2])
	}
	if n.Summary, ok = body[3].(string); !ok {
		return nil, fmt.Errorf("invalid summary type %T", body[3])
	}
	if n.Body, ok = body[4].(string); !ok {
		return nil, fmt.Errorf("invalid body type %T", body[4])
	}
	if actions, ok := body[5].([]string); ok {
		n.Actions = actions
	}
	if hints, ok := body[6].(map[string]dbus.Variant); ok {
		n.Hints = hints
	}
	if timeout, ok := body[7].(int32); ok {
		n.ExpireTimeout = timeout
	}
	return n, nil
}

// ServerCapabilities lists the capabilities advertised by toastuid.
var ServerCapabilities = []string{
	"actions", // Default action on click
	"body",    // Support body text
	"sound",   // Play sounds
	HintPosition,
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "toastuid"
	Vendor      string // "toastui"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "toastuid",
		Vendor:      "toastui",
		Version:     "0.0.1", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}
