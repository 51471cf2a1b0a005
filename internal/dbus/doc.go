// Package dbus implements the org.freedesktop.Notifications D-Bus interface
// for toastui. The Server claims the bus name and hands each Notify call to
// a handler, the Monitor mirrors traffic addressed to another daemon, and the
// Client sends notifications to whichever daemon owns the name.
package dbus
