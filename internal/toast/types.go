// Package toast implements transient on-screen notifications: option
// application, the auto-close countdown, progress indication, pause on
// hover and on visibility loss, and the per-position container registry.
package toast

import (
	"time"
)

// Position is the screen position of a notification container.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopCenter    Position = "top-center"
	PositionTopRight     Position = "top-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomRight  Position = "bottom-right"
)

// DefaultPosition is used when no position, or an unknown one, is given.
const DefaultPosition = PositionTopRight

// Positions returns all valid positions, top row first, left to right.
func Positions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopCenter,
		PositionTopRight,
		PositionBottomLeft,
		PositionBottomCenter,
		PositionBottomRight,
	}
}

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionTopLeft, PositionTopCenter, PositionTopRight,
		PositionBottomLeft, PositionBottomCenter, PositionBottomRight:
		return true
	}
	return false
}

// IsBottom reports whether p is anchored to the bottom edge.
func (p Position) IsBottom() bool {
	switch p {
	case PositionBottomLeft, PositionBottomCenter, PositionBottomRight:
		return true
	}
	return false
}

// AutoClose is the visible time after which a notification closes itself.
// A non-positive value disables auto-close.
type AutoClose time.Duration

// AutoCloseDisabled turns the auto-close timer off.
const AutoCloseDisabled AutoClose = 0

// DefaultAutoClose is the auto-close time applied when none is given.
const DefaultAutoClose = AutoClose(3 * time.Second)

// AutoCloseAfter returns an AutoClose of d.
func AutoCloseAfter(d time.Duration) AutoClose { return AutoClose(d) }

// Enabled reports whether the timer runs.
func (a AutoClose) Enabled() bool { return a > 0 }

// Duration returns the underlying duration.
func (a AutoClose) Duration() time.Duration { return time.Duration(a) }

// String implements fmt.Stringer.
func (a AutoClose) String() string {
	if !a.Enabled() {
		return "disabled"
	}
	return time.Duration(a).String()
}

// CloseReason describes why a notification went away. The values match the
// org.freedesktop.Notifications NotificationClosed reasons.
type CloseReason uint32

const (
	CloseReasonExpired   CloseReason = 1
	CloseReasonDismissed CloseReason = 2
	CloseReasonClosed    CloseReason = 3
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
	default:
		return "unknown"
	}
}

// Element classes and properties forming the contract with renderers.
const (
	ClassNotification     = "notification"
	ClassContainer        = "notification-container"
	ClassShow             = "show"
	ClassCanClose         = "can-close"
	ClassProgress         = "progress"
	ClassPauseOnHover     = "pause-on-hover"
	ClassPauseOnFocusLoss = "pause-on-focus-loss"
	ClassPaused           = "paused"

	PropertyProgress = "--progress"
	DataPosition     = "position"
)
