package repository

import "time"

// Window is a chart lookback span accepted by the API.
type Window string

const (
	Window1Y  Window = "1y"
	Window5Y  Window = "5y"
	WindowMax Window = "max"
)

// IsValidWindow returns true if w is a supported lookback.
func IsValidWindow(w Window) bool {
	switch w {
	case Window1Y, Window5Y, WindowMax:
		return true
	default:
		return false
	}
}

// DefaultWindow returns the default lookback.
func DefaultWindow() Window { return Window5Y }

// NormalizeWindow converts raw string to a valid window (or default).
func NormalizeWindow(s string) Window {
	if s == "" {
		return DefaultWindow()
	}
	w := Window(s)
	if IsValidWindow(w) {
		return w
	}
	return DefaultWindow()
}

// Duration returns the calendar span of the window; zero means no cut.
func (w Window) Duration() time.Duration {
	switch w {
	case Window1Y:
		return 365 * 24 * time.Hour
	case Window5Y:
		return 5 * 365 * 24 * time.Hour
	default:
		return 0
	}
}
