// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// markdown.go - Terminal markdown rendering for assistant replies and
// replayed transcripts.

package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a response, rendering markdown only on a TTY so
// piped output stays unmangled.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Print(response)
	}
}

// streamToStdout prints reply fragments directly to stdout.
func streamToStdout(fragment string) {
	fmt.Print(fragment)
}
