// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// models.go - Model management commands for the lamachat CLI.
//
// Handles "lamachat models [list|pull|rm]" and the model-related slash
// commands in the chat REPL.

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lamachat/lamachat/internal/config"
	"github.com/lamachat/lamachat/internal/ollama"
)

// newClient builds an Ollama client from the global configuration.
func newClient() *ollama.Client {
	cfg := config.Global()
	return ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		Timeout:      time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		DefaultModel: cfg.Ollama.Model,
	})
}

// HandleModelsCommand handles the "models" command.
func HandleModelsCommand(args Args) error {
	client := newClient()
	ctx := context.Background()

	if err := client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	}

	switch args.Subcommand {
	case "", "list", "ls":
		return printModels(ctx, client)

	case "pull":
		if args.Name == "" {
			return fmt.Errorf("usage: lamachat models pull <name>")
		}
		return pullWithProgress(ctx, client, args.Name)

	case "rm", "remove", "delete":
		if args.Name == "" {
			return fmt.Errorf("usage: lamachat models rm <name>")
		}
		if err := client.DeleteModel(ctx, args.Name); err != nil {
			return err
		}
		fmt.Printf("%s removed model: %s\n", commandStyle.Render("[OK]"), args.Name)
		return nil

	default:
		return fmt.Errorf("unknown models subcommand: %s", args.Subcommand)
	}
}

// printModels lists installed models.
func printModels(ctx context.Context, client *ollama.Client) error {
	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println(infoStyle.Render("[No models installed; lamachat models pull <name>]"))
		return nil
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Installed Models"))
	fmt.Println(infoStyle.Render("────────────────"))
	for _, m := range models {
		fmt.Printf("  %s  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-30s", m.Name)),
			mutedStyle.Render(fmt.Sprintf("%10s", formatBytes(m.Size))),
			mutedStyle.Render(m.ModifiedAt.Format("2006-01-02")))
	}
	fmt.Println()
	return nil
}

// pullWithProgress downloads a model, overwriting a single status line with
// progress. Falls back to one line per status change when not on a TTY.
func pullWithProgress(ctx context.Context, client *ollama.Client, model string) error {
	tty := IsStderrTTY()
	lastStatus := ""

	err := client.PullModel(ctx, model, func(p ollama.PullProgress) {
		if tty && p.Total > 0 {
			pct := float64(p.Completed) / float64(p.Total) * 100
			fmt.Fprintf(os.Stderr, "\r%s %s %.1f%% (%s / %s)   ",
				infoStyle.Render("[Pull]"), p.Status, pct,
				formatBytes(p.Completed), formatBytes(p.Total))
			return
		}
		if p.Status != lastStatus {
			lastStatus = p.Status
			if tty {
				fmt.Fprintf(os.Stderr, "\r%s %s                    \n",
					infoStyle.Render("[Pull]"), p.Status)
			} else {
				fmt.Fprintf(os.Stderr, "%s %s\n", infoStyle.Render("[Pull]"), p.Status)
			}
		}
	})
	if tty {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s pulled model: %s\n", commandStyle.Render("[OK]"), model)
	return nil
}
