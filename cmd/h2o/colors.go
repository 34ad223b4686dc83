package main

import (
	"strings"
)

// ANSI color codes for terminal output.
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"

	ColorBrightRed    = "\033[91m"
	ColorBrightYellow = "\033[93m"
)

// ColorSupported checks if the terminal described by the environment supports colors.
func ColorSupported(getenv func(string) string) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}

	term := strings.ToLower(getenv("TERM"))
	if term == "" || term == "dumb" {
		return false
	}

	// Check for common color-supporting terminals
	colorTerms := []string{"xterm", "screen", "tmux", "color", "ansi"}
	for _, colorTerm := range colorTerms {
		if strings.Contains(term, colorTerm) {
			return true
		}
	}

	// Check COLORTERM environment variable
	return getenv("COLORTERM") != ""
}

// Palette wraps text with color codes if colors are supported.
type Palette struct {
	enabled bool
}

// NewPalette creates a Palette for the terminal described by the environment.
func NewPalette(getenv func(string) string) Palette {
	return Palette{enabled: ColorSupported(getenv)}
}

func (p Palette) Colorize(text, color string) string {
	if !p.enabled {
		return text
	}
	return color + text + ColorReset
}

func (p Palette) Error(text string) string   { return p.Colorize(text, ColorBold+ColorBrightRed) }
func (p Palette) Warning(text string) string { return p.Colorize(text, ColorBrightYellow) }
