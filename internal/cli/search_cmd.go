// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// search_cmd.go - Search and index commands for the lamachat CLI.
//
// Handles "lamachat search <query>" and "lamachat index [sync|stats]".
// One-shot commands rebuild the index without starting the archive
// watcher; the watcher only runs inside the chat REPL.

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lamachat/lamachat/internal/archive"
	"github.com/lamachat/lamachat/internal/config"
	"github.com/lamachat/lamachat/internal/index"
)

// openIndex opens the search index over the given archive, without the
// archive watcher.
func openIndex(arc *archive.Archive) (*index.TranscriptIndex, error) {
	cfg := config.Global()
	if !cfg.Index.Enabled {
		return nil, fmt.Errorf("search index is disabled in configuration")
	}

	dbPath, err := cfg.IndexDatabasePath()
	if err != nil {
		return nil, fmt.Errorf("resolving index path: %w", err)
	}
	return index.NewTranscriptIndex(arc, &index.Config{
		DatabasePath: dbPath,
		EnableWatch:  false,
	})
}

// HandleSearchCommand handles the "search" command.
func HandleSearchCommand(args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("usage: lamachat search <query>")
	}

	arc, err := openArchive()
	if err != nil {
		return err
	}
	idx, err := openIndex(arc)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Sync(context.Background()); err != nil {
		return err
	}

	maxResults := 10
	if args.Verbose {
		maxResults = 50
	}
	results, err := idx.Search(query, &index.SearchOptions{MaxResults: maxResults})
	if err != nil {
		return err
	}

	printSearchResults(query, results)
	return nil
}

// printSearchResults prints ranked search hits.
func printSearchResults(query string, results []index.SearchResult) {
	if len(results) == 0 {
		fmt.Printf("%s no matches for %q\n", infoStyle.Render("[Search]"), query)
		return
	}

	fmt.Println()
	fmt.Printf("%s %d match(es) for %q\n",
		headerStyle.Render("[Search]"), len(results), query)
	fmt.Println()

	for _, r := range results {
		fmt.Printf("  %s %s\n",
			commandStyle.Render(r.Conversation),
			mutedStyle.Render(fmt.Sprintf("(%s, turn %d)", r.Role, r.Position+1)))
		fmt.Printf("    %s\n", strings.ReplaceAll(r.Snippet, "\n", " "))
	}
	fmt.Println()
}

// HandleIndexCommand handles the "index" command.
func HandleIndexCommand(args Args) error {
	arc, err := openArchive()
	if err != nil {
		return err
	}
	idx, err := openIndex(arc)
	if err != nil {
		return err
	}
	defer idx.Close()

	switch args.Subcommand {
	case "", "sync":
		start := time.Now()
		if err := idx.Sync(context.Background()); err != nil {
			return err
		}
		stats := idx.Stats()
		fmt.Printf("%s indexed %s conversations, %s turns in %s\n",
			commandStyle.Render("[OK]"),
			formatCount(stats.ConversationCount),
			formatCount(stats.TurnCount),
			time.Since(start).Round(time.Millisecond))
		return nil

	case "stats":
		stats := idx.Stats()
		fmt.Println()
		fmt.Println(headerStyle.Render("Index Statistics"))
		fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
		fmt.Printf("  %s %s\n", infoStyle.Render("Conversations:"), formatCount(stats.ConversationCount))
		fmt.Printf("  %s %s\n", infoStyle.Render("Turns:"), formatCount(stats.TurnCount))
		if !stats.LastSynced.IsZero() {
			fmt.Printf("  %s %s\n", infoStyle.Render("Last synced:"),
				stats.LastSynced.Format(time.RFC3339))
		}
		if stats.DatabaseSize > 0 {
			fmt.Printf("  %s %s\n", infoStyle.Render("Database:"), formatBytes(stats.DatabaseSize))
		}
		fmt.Println()
		return nil

	default:
		return fmt.Errorf("unknown index subcommand: %s", args.Subcommand)
	}
}
