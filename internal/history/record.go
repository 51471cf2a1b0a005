// Package history keeps a log of closed notifications.
package history

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Urgency levels as sent in the freedesktop urgency hint.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// UrgencyNames maps urgency levels to human-readable names.
var UrgencyNames = map[int]string{
	UrgencyLow:      "low",
	UrgencyNormal:   "normal",
	UrgencyCritical: "critical",
}

// Record is a notification that has been closed.
type Record struct {
	ID      string `json:"id"` // ULID, sortable by close time
	DBusID  uint32 `json:"dbus_id,omitempty"`
	AppName string `json:"app_name"`
	Summary string `json:"summary"`
	Body    string `json:"body,omitempty"`

	Urgency     int    `json:"urgency"`
	UrgencyName string `json:"urgency_name"`

	Reason string `json:"reason"`           // expired, dismissed, closed
	Action string `json:"action,omitempty"` // Action invoked by the close

	ShownAt  int64 `json:"shown_at"`
	ClosedAt int64 `json:"closed_at"`
}

// Validation errors.
var (
	ErrEmptyID          = errors.New("id cannot be empty")
	ErrEmptySummary     = errors.New("summary cannot be empty")
	ErrInvalidUrgency   = errors.New("urgency must be 0, 1, or 2")
	ErrInvalidTimestamp = errors.New("closed_at must be greater than 0")
)

// NewRecord creates a Record closed at the given time with a generated ULID.
func NewRecord(closedAt time.Time) (Record, error) {
	id, err := ulid.New(ulid.Timestamp(closedAt), rand.Reader)
	if err != nil {
		return Record{}, fmt.Errorf("failed to generate ULID: %w", err)
	}
	r := Record{
		ID:       id.String(),
		ClosedAt: closedAt.Unix(),
	}
	r.SetUrgency(UrgencyNormal)
	return r, nil
}

// Validate checks that the record has all required fields.
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.Summary == "" {
		return ErrEmptySummary
	}
	if r.Urgency < UrgencyLow || r.Urgency > UrgencyCritical {
		return ErrInvalidUrgency
	}
	if r.ClosedAt <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

// SetUrgency sets the urgency level and its name. Unknown levels become normal.
func (r *Record) SetUrgency(level int) {
	if level < UrgencyLow || level > UrgencyCritical {
		level = UrgencyNormal
	}
	r.Urgency = level
	r.UrgencyName = UrgencyNames[level]
}

// ClosedTime returns ClosedAt as a time.Time.
func (r *Record) ClosedTime() time.Time {
	return time.Unix(r.ClosedAt, 0)
}

// OnScreen returns how long the notification was shown.
func (r *Record) OnScreen() time.Duration {
	if r.ShownAt == 0 || r.ClosedAt < r.ShownAt {
		return 0
	}
	return time.Duration(r.ClosedAt-r.ShownAt) * time.Second
}

// BodyTruncated returns the body on one line, cut to maxLen characters.
func (r *Record) BodyTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	body := []rune(strings.Join(strings.Fields(r.Body), " "))
	if len(body) <= maxLen {
		return string(body)
	}
	if maxLen <= 3 {
		return string(body[:maxLen])
	}
	return string(body[:maxLen-3]) + "..."
}
