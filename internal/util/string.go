// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// Package util provides small shared helpers for lamachat.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Truncate shortens s to at most width display columns, appending "..." when
// anything was cut. Width-aware so CJK and emoji don't overflow listings.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// Pad right-pads s with spaces to the given display width.
func Pad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// FirstLine returns the first line of s, used for single-line previews.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
