package dbus

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
)

const notifyMatch = "type='method_call',interface='org.freedesktop.Notifications',member='Notify'"

// Monitor passively observes Notify calls addressed to another daemon and
// mirrors them, without claiming the bus name.
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger
	nextID atomic.Uint32

	onNotify NotificationHandler
}

// NewMonitor creates a new notification monitor.
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger: logger,
	}
}

// SetNotifyHandler sets the callback for received notifications.
func (m *Monitor) SetNotifyHandler(handler NotificationHandler) {
	m.onNotify = handler
}

// Start begins monitoring D-Bus for notification traffic. A private
// connection is used because a monitoring connection cannot make calls.
func (m *Monitor) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.conn = conn

	err = conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor",
		0,
		[]string{notifyMatch},
		uint32(0),
	).Err
	if err != nil {
		m.logger.Warn("BecomeMonitor not available, trying AddMatch", "error", err)
		return m.startWithAddMatch()
	}

	m.logger.Info("started D-Bus monitor using BecomeMonitor")
	go m.processMessages()
	return nil
}

// startWithAddMatch uses the older AddMatch API for eavesdropping.
func (m *Monitor) startWithAddMatch() error {
	err := m.conn.BusObject().Call(
		"org.freedesktop.DBus.AddMatch",
		0,
		notifyMatch+",eavesdrop='true'",
	).Err
	if err != nil {
		return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
	}

	m.logger.Info("started D-Bus monitor using AddMatch with eavesdrop")
	go m.processMessages()
	return nil
}

func (m *Monitor) processMessages() {
	ch := make(chan *dbus.Message, 100)
	m.conn.Eavesdrop(ch)

	for msg := range ch {
		if isNotifyCall(msg) {
			m.handleNotify(msg)
		}
	}
}

func isNotifyCall(msg *dbus.Message) bool {
	if msg.Type != dbus.TypeMethodCall {
		return false
	}
	iface, ok := msg.Headers[dbus.FieldInterface]
	if !ok || iface.Value() != DBusInterface {
		return false
	}
	member, ok := msg.Headers[dbus.FieldMember]
	return ok && member.Value() == "Notify"
}

func (m *Monitor) handleNotify(msg *dbus.Message) {
	n, err := parseNotify(msg.Body)
	if err != nil {
		m.logger.Warn("ignoring Notify call", "error", err)
		return
	}

	// The owning daemon's reply is not observed, so mirrored notifications
	// get local IDs.
	id := m.nextID.Add(1)
	m.logger.Debug("captured notification", "app", n.AppName, "summary", n.Summary, "id", id)

	if m.onNotify != nil {
		m.onNotify(n, id, false)
	}
}

// Stop stops the monitor.
func (m *Monitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
