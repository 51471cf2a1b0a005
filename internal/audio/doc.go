// Package audio plays notification sounds with beep.
package audio
