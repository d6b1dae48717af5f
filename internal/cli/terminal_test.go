// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package cli

import "testing"

func TestGetTerminalWidthBounds(t *testing.T) {
	// Under a test harness stdout is usually a pipe, so detection falls back
	// to the default. Either way the result must be usable for wrapping.
	w := GetTerminalWidth()
	if w < MinTerminalWidth {
		t.Errorf("GetTerminalWidth() = %d, want >= %d", w, MinTerminalWidth)
	}
}

func TestApplyColorProfileDisabledStripsStyles(t *testing.T) {
	applyColorProfile(false)

	for name, got := range map[string]string{
		"prompt": promptStyle.Render("hi"),
		"error":  errorStyle.Render("hi"),
		"muted":  mutedStyle.Render("hi"),
		"header": headerStyle.Render("hi"),
	} {
		if got != "hi" {
			t.Errorf("%s style still decorates with colors off: %q", name, got)
		}
	}
}
