package daemon

import (
	"sync"
	"time"

	"github.com/jmylchreest/toastui/internal/dbus"
)

// Entry links a D-Bus notification ID to the toast showing it.
type Entry struct {
	DBusID        uint32
	ToastID       string
	AppName       string
	Summary       string
	Body          string
	Urgency       dbus.Urgency
	Transient     bool   // Not recorded in history
	DefaultAction string // Empty when the sender offered no default action
	CreatedAt     time.Time
}

// entryFor builds the tracker entry for n shown as toastID.
func entryFor(n *dbus.Notification, id uint32, toastID string) Entry {
	defaultAction, _ := n.DefaultAction()
	return Entry{
		DBusID:        id,
		ToastID:       toastID,
		AppName:       n.AppName,
		Summary:       n.Summary,
		Body:          n.Body,
		Urgency:       n.Urgency(),
		Transient:     n.Transient(),
		DefaultAction: defaultAction,
	}
}

// Tracker maps D-Bus notification IDs to toast IDs and back.
type Tracker struct {
	mu sync.RWMutex

	byDBusID  map[uint32]*Entry
	byToastID map[string]*Entry
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byDBusID:  make(map[uint32]*Entry),
		byToastID: make(map[string]*Entry),
	}
}

// Register records e. A previous toast registered under the same D-Bus ID is
// forgotten, so its close is not reported. Re-registering the same toast
// keeps its creation time.
func (t *Tracker) Register(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.byDBusID[e.DBusID]; ok {
		delete(t.byToastID, old.ToastID)
		if old.ToastID == e.ToastID && e.CreatedAt.IsZero() {
			e.CreatedAt = old.CreatedAt
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	t.byDBusID[e.DBusID] = &e
	t.byToastID[e.ToastID] = &e
}

// ToastID returns the toast showing the D-Bus notification id.
func (t *Tracker) ToastID(id uint32) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.byDBusID[id]; ok {
		return e.ToastID, true
	}
	return "", false
}

// RemoveByToast forgets the entry for toastID and returns it.
func (t *Tracker) RemoveByToast(toastID string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.byToastID[toastID]
	if !ok {
		return Entry{}, false
	}
	delete(t.byToastID, toastID)
	delete(t.byDBusID, e.DBusID)
	return *e, true
}

// Len returns the number of tracked notifications.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byDBusID)
}
