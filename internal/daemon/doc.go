// Package daemon provides the main orchestration for toastuid.
// It connects the D-Bus server to the toast manager running inside the
// terminal host, plays sounds, and reloads the configuration when it changes.
package daemon
