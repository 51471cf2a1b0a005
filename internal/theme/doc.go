// Package theme provides the colour themes used to draw toasts. Themes are
// TOML files, bundled or placed in the user's themes directory.
package theme
