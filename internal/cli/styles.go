// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// styles.go - lipgloss styles shared across CLI commands.

package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// COLOR PALETTE
// =============================================================================

// Adaptive colors pick the readable variant for light and dark terminals.
var (
	colorPurple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	colorRose   = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	colorAmber  = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	colorTextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	colorTextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	// Info style
	infoStyle = lipgloss.NewStyle().
			Foreground(colorTextSecondary)

	// Command style
	commandStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	// Warning style
	warningStyle = lipgloss.NewStyle().
			Foreground(colorAmber)

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(colorRose)

	// Muted detail style
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	// Section header style
	headerStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	// Role labels in transcripts
	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPurple).
				Bold(true)
)

func init() {
	applyColorProfile(ColorsEnabled())
}

// applyColorProfile swaps the shared styles for undecorated ones when colored
// output is off (NO_COLOR set, or stdout is not a terminal).
func applyColorProfile(enabled bool) {
	if enabled {
		return
	}
	plain := lipgloss.NewStyle()
	promptStyle = plain
	welcomeStyle = plain
	infoStyle = plain
	commandStyle = plain
	warningStyle = plain
	errorStyle = plain
	mutedStyle = plain
	headerStyle = plain
	userLabelStyle = plain
	assistantLabelStyle = plain
}

// =============================================================================
// FORMAT HELPERS
// =============================================================================

// formatBytes formats a byte count for display.
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// formatCount formats an integer with thousands separators.
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
