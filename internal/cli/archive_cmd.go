// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// archive_cmd.go - Archive commands for the lamachat CLI.
//
// Handles "lamachat list", "lamachat show <name>" and
// "lamachat delete <name>".

package cli

import (
	"errors"
	"fmt"

	"github.com/lamachat/lamachat/internal/archive"
	"github.com/lamachat/lamachat/internal/chat"
	"github.com/lamachat/lamachat/internal/config"
	"github.com/lamachat/lamachat/internal/util"
)

// openArchive opens the configured archive directory.
func openArchive() (*archive.Archive, error) {
	dir, err := config.Global().ArchiveDir()
	if err != nil {
		return nil, fmt.Errorf("resolving archive directory: %w", err)
	}
	return archive.NewWithDir(dir)
}

// HandleListCommand handles the "list" command.
func HandleListCommand(args Args) error {
	arc, err := openArchive()
	if err != nil {
		return err
	}

	names, err := arc.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println(infoStyle.Render("[No archived conversations]"))
		return nil
	}

	for _, name := range names {
		if args.Verbose {
			rec, err := arc.Load(name)
			if err != nil {
				fmt.Printf("%s  %s\n", name, errorStyle.Render("(unreadable)"))
				continue
			}
			preview := ""
			if len(rec.Turns) > 0 {
				preview = util.Truncate(util.FirstLine(rec.Turns[0].Content), 60)
			}
			fmt.Printf("%s  %s\n    %s\n",
				util.Pad(name, 40),
				mutedStyle.Render(fmt.Sprintf("(%d turns)", len(rec.Turns))),
				mutedStyle.Render(preview))
			continue
		}
		fmt.Println(name)
	}
	return nil
}

// HandleShowCommand handles the "show" command: it replays an archived
// conversation to the terminal.
func HandleShowCommand(args Args) error {
	if args.Name == "" {
		return fmt.Errorf("usage: lamachat show <name>")
	}

	arc, err := openArchive()
	if err != nil {
		return err
	}

	rec, err := arc.Load(args.Name)
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("no conversation named %q", args.Name)
	}
	if err != nil {
		return err
	}

	displayResponse(chat.RenderMarkdown(rec.Turns))

	// Attachments, if any, follow the transcript.
	paths, err := arc.LoadFileList(args.Name)
	if err == nil && len(paths) > 0 {
		fmt.Println()
		fmt.Println(infoStyle.Render("Attached files:"))
		for _, p := range paths {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

// HandleDeleteCommand handles the "delete" command.
func HandleDeleteCommand(args Args) error {
	if args.Name == "" {
		return fmt.Errorf("usage: lamachat delete <name>")
	}

	arc, err := openArchive()
	if err != nil {
		return err
	}

	if !arc.Exists(args.Name) {
		return fmt.Errorf("no conversation named %q", args.Name)
	}
	if err := arc.Delete(args.Name); err != nil {
		return err
	}

	fmt.Printf("%s deleted: %s\n", commandStyle.Render("[OK]"), args.Name)
	return nil
}
