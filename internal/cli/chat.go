// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

// chat.go - Interactive chat command handler for the lamachat CLI.
//
// Handles the default "lamachat chat" command: a REPL that streams
// replies from Ollama, archives completed exchanges, and exposes the
// archive, search index, model management, and file attachments through
// slash commands.
//
// Interactive Commands (during chat):
//   /help               Show available commands
//   /new                Start a new conversation
//   /load <name>        Load an archived conversation
//   /list               List archived conversations
//   /search <query>     Search past conversations
//   /delete <name>      Delete an archived conversation
//   /model [name]       Show or switch model
//   /models             List installed models
//   /pull <name>        Download a model
//   /rm-model <name>    Remove a model
//   /attach <path>      Attach a file
//   /detach <path>      Remove an attached file
//   /files              List attached files
//   /history            Show conversation history
//   /status             Show session status
//   /save               Force a flush of pending turns
//   /quit               Exit chat
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/lamachat/lamachat/internal/archive"
	"github.com/lamachat/lamachat/internal/attach"
	"github.com/lamachat/lamachat/internal/config"
	"github.com/lamachat/lamachat/internal/index"
	"github.com/lamachat/lamachat/internal/ollama"
	"github.com/lamachat/lamachat/internal/session"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history persisted at the given path.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), "lamachat_history")
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Arrow keys
// navigate history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0755); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	Config *config.Config
	Quiet  bool

	Client  *ollama.Client
	Backend *ollama.Backend
	Archive *archive.Archive
	Session *session.Session
	Ledger  *attach.Ledger
	Index   *index.TranscriptIndex // nil when the index is disabled

	// Cancel function for the in-flight stream
	CancelFunc context.CancelFunc

	InputCLI  *ChatCLI
	StartTime time.Time
	Exchanges int

	// nameChanged is set by the session's refresh callback when a flush
	// adopts a new conversation name. Written in the stream's consumer
	// goroutine before the fragment channel closes, read after.
	nameChanged bool
}

// NewChatSession wires the chat collaborators from configuration.
func NewChatSession(args Args) (*ChatSession, error) {
	cfg := config.Global()

	archiveDir, err := cfg.ArchiveDir()
	if err != nil {
		return nil, fmt.Errorf("resolving archive directory: %w", err)
	}
	arc, err := archive.NewWithDir(archiveDir)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		Timeout:      time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		DefaultModel: cfg.Ollama.Model,
	})

	// Model precedence: CLI flag > config > client default
	model := args.Model
	if model == "" {
		model = cfg.Ollama.Model
	}
	if model == "" {
		model = client.DefaultModel()
	}

	cs := &ChatSession{
		Config:    cfg,
		Quiet:     args.Quiet,
		Client:    client,
		Backend:   ollama.NewBackend(client),
		Archive:   arc,
		StartTime: time.Now(),
	}

	cs.Session = session.New(session.Config{
		Archive: arc,
		Backend: cs.Backend,
		Model:   model,
		OnRefresh: func() {
			cs.nameChanged = true
		},
		OnFlushError: func(err error) {
			fmt.Fprintf(os.Stderr, "%s failed to save conversation: %v\n",
				warningStyle.Render("[Warning]"), err)
		},
	})
	cs.Ledger = attach.NewLedger(arc, cs.Session.Name)

	if cfg.Index.Enabled && !args.NoIndex {
		dbPath, err := cfg.IndexDatabasePath()
		if err != nil {
			return nil, fmt.Errorf("resolving index path: %w", err)
		}
		idx, err := index.NewTranscriptIndex(arc, &index.Config{
			DatabasePath:  dbPath,
			EnableWatch:   cfg.Index.Watch,
			WatchDebounce: time.Duration(cfg.Index.WatchDebounceMs) * time.Millisecond,
		})
		if err != nil {
			// Search degrades gracefully; chat still works.
			fmt.Fprintf(os.Stderr, "%s search index unavailable: %v\n",
				warningStyle.Render("[Warning]"), err)
		} else {
			cs.Index = idx
		}
	}

	historyFile, err := cfg.HistoryFilePath()
	if err != nil {
		historyFile = ""
	}
	cs.InputCLI = NewChatCLI(historyFile)

	return cs, nil
}

// Close releases the session's resources.
func (cs *ChatSession) Close() {
	cs.InputCLI.Close()
	if cs.Index != nil {
		cs.Index.Close()
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive support.
func HandleChatCommand(args Args) error {
	cs, err := NewChatSession(args)
	if err != nil {
		return err
	}
	defer cs.Close()

	ctx := context.Background()
	if err := cs.Client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	}

	if err := ensureModel(ctx, cs); err != nil {
		return err
	}

	// Build the search index in the background so /search is ready by the
	// time it is first used.
	if cs.Index != nil {
		go func() {
			if err := cs.Index.Sync(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "%s index sync failed: %v\n",
					warningStyle.Render("[Warning]"), err)
			}
		}()
	}

	if !cs.Quiet {
		printWelcome(cs)
	}

	// Set up signal handling for graceful Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			// First Ctrl+C cancels the in-flight generation. The partial
			// reply is kept and archived.
			if cs.CancelFunc != nil {
				cs.CancelFunc()
				cs.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	// If a prompt was given on the command line, answer it first.
	if opener := strings.TrimSpace(strings.Join(args.Raw, " ")); opener != "" {
		if err := processMessage(cs, opener); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}

	// Main REPL loop
	for {
		input, err := cs.InputCLI.ReadInput(promptStyle.Render("lamachat> "))
		if err != nil {
			// Ctrl+C at the prompt, EOF (Ctrl+D), or a read error all
			// exit gracefully.
			fmt.Println()
			return finishSession(cs)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, cs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				return finishSession(cs)
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return finishSession(cs)
		}

		if err := processMessage(cs, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// ensureModel verifies the configured model is installed, pulling it when
// missing and a terminal is available to show progress.
func ensureModel(ctx context.Context, cs *ChatSession) error {
	model := cs.Session.Model()
	exists, err := cs.Client.ModelExists(ctx, model)
	if err != nil {
		return fmt.Errorf("checking model %q: %w", model, err)
	}
	if exists {
		return nil
	}

	if !IsTTY() {
		return fmt.Errorf("model %q is not installed; run: lamachat models pull %s", model, model)
	}

	fmt.Printf("%s model %s is not installed, pulling...\n",
		infoStyle.Render("[Setup]"), commandStyle.Render(model))
	if err := pullWithProgress(ctx, cs.Client, model); err != nil {
		return fmt.Errorf("pulling model %q: %w", model, err)
	}
	return nil
}

// finishSession flushes pending turns and prints the exit summary.
func finishSession(cs *ChatSession) error {
	if err := cs.Session.Flush(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to save conversation: %v\n",
			warningStyle.Render("[Warning]"), err)
	}
	printExitSummary(cs)
	return nil
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage submits a prompt and streams the reply to the terminal.
func processMessage(cs *ChatSession, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	cs.CancelFunc = cancel
	defer func() {
		cs.CancelFunc = nil
		cancel()
	}()

	cs.nameChanged = false
	startTime := time.Now()

	// Render markdown only at the end and only on a TTY; otherwise stream
	// fragments as they arrive.
	useMarkdown := cs.Config.UI.RenderMarkdown && IsStdoutTTY()

	frags, err := cs.Session.Submit(ctx, input)
	if err != nil {
		return err
	}

	fmt.Println() // space before response

	var reply strings.Builder
	for frag := range frags {
		reply.WriteString(frag)
		if !useMarkdown {
			streamToStdout(frag)
		}
	}

	if useMarkdown {
		displayResponse(reply.String())
	}
	fmt.Println()
	fmt.Println()

	// The fragment channel closes after the exchange was flushed, so the
	// adopted name is visible here.
	if cs.nameChanged && !cs.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			infoStyle.Render("[Saved as]"),
			commandStyle.Render(cs.Session.Name()))
	}

	// Attachments pending since before this exchange are now part of the
	// conversation on disk.
	if err := cs.Ledger.Checkpoint(); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to save attachment list: %v\n",
			warningStyle.Render("[Warning]"), err)
	}

	// Keep the index current without waiting for the watcher.
	if cs.Index != nil && cs.Index.IsSynced() {
		if err := cs.Index.Put(cs.Session.Name()); err != nil {
			fmt.Fprintf(os.Stderr, "%s index update failed: %v\n",
				warningStyle.Render("[Warning]"), err)
		}
	}

	cs.Exchanges++
	if !cs.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s | %s\n",
			infoStyle.Render("[Stats]"),
			cs.Session.Model(),
			time.Since(startTime).Round(time.Millisecond))
	}

	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, cs *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]
	ctx := context.Background()

	switch command {
	case "/help", "/h", "/?", "/":
		printHelp()
		return true, nil

	case "/new", "/n":
		if err := cs.Session.Reset(ctx); err != nil {
			return true, err
		}
		cs.Ledger.Reset()
		fmt.Println(commandStyle.Render("[New conversation started]"))
		return true, nil

	case "/load":
		return handleLoadCommand(cs, args)

	case "/list", "/ls":
		return handleListSlash(cs)

	case "/search":
		return handleSearchSlash(cs, args)

	case "/delete":
		return handleDeleteSlash(cs, args)

	case "/model", "/m":
		return handleModelCommand(cs, args)

	case "/models":
		return true, printModels(ctx, cs.Client)

	case "/pull":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /pull <model>")
		}
		return true, pullWithProgress(ctx, cs.Client, args[0])

	case "/rm-model":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /rm-model <model>")
		}
		if err := cs.Client.DeleteModel(ctx, args[0]); err != nil {
			return true, err
		}
		fmt.Printf("%s removed model: %s\n", commandStyle.Render("[OK]"), args[0])
		return true, nil

	case "/attach":
		return handleAttachCommand(cs, args)

	case "/detach":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /detach <path>")
		}
		if err := cs.Ledger.Remove(strings.Join(args, " ")); err != nil {
			return true, err
		}
		fmt.Println(commandStyle.Render("[Detached]"))
		return true, nil

	case "/files":
		printFiles(cs)
		return true, nil

	case "/history":
		printHistory(cs)
		return true, nil

	case "/status", "/s":
		printStatus(cs)
		return true, nil

	case "/save":
		if err := cs.Session.Flush(ctx); err != nil {
			return true, err
		}
		if name := cs.Session.Name(); name != "" {
			fmt.Printf("%s saved as: %s\n", commandStyle.Render("[OK]"), name)
		} else {
			fmt.Println(infoStyle.Render("[Nothing to save]"))
		}
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleLoadCommand loads an archived conversation into the session.
func handleLoadCommand(cs *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		return true, fmt.Errorf("usage: /load <name>")
	}
	name := strings.Join(args, " ")

	if err := cs.Session.Load(context.Background(), name); err != nil {
		return true, err
	}
	if err := cs.Ledger.LoadFrom(name); err != nil {
		fmt.Fprintf(os.Stderr, "%s could not restore attachments: %v\n",
			warningStyle.Render("[Warning]"), err)
	}

	fmt.Printf("%s loaded: %s (%d turns)\n",
		commandStyle.Render("[OK]"), name, len(cs.Session.History()))
	return true, nil
}

// handleListSlash lists archived conversations, most recent first.
func handleListSlash(cs *ChatSession) (bool, error) {
	names, err := cs.Session.ListConversations()
	if err != nil {
		return true, err
	}
	if len(names) == 0 {
		fmt.Println(infoStyle.Render("[No archived conversations]"))
		return true, nil
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Conversations"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	for _, name := range names {
		marker := "  "
		if name == cs.Session.Name() {
			marker = commandStyle.Render("* ")
		}
		fmt.Printf("%s%s\n", marker, name)
	}
	fmt.Println()
	return true, nil
}

// handleSearchSlash runs a full-text search over archived conversations.
func handleSearchSlash(cs *ChatSession, args []string) (bool, error) {
	if cs.Index == nil {
		return true, fmt.Errorf("search index is disabled")
	}
	if len(args) == 0 {
		return true, fmt.Errorf("usage: /search <query>")
	}
	query := strings.Join(args, " ")

	if !cs.Index.IsSynced() {
		fmt.Println(infoStyle.Render("[Indexing...]"))
		if err := cs.Index.Sync(context.Background()); err != nil {
			return true, err
		}
	}

	results, err := cs.Index.Search(query, &index.SearchOptions{MaxResults: 10})
	if err != nil {
		return true, err
	}
	printSearchResults(query, results)
	return true, nil
}

// handleDeleteSlash deletes an archived conversation.
func handleDeleteSlash(cs *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		return true, fmt.Errorf("usage: /delete <name>")
	}
	name := strings.Join(args, " ")

	if name == cs.Session.Name() {
		return true, fmt.Errorf("cannot delete the active conversation; /new first")
	}

	if err := cs.Archive.Delete(name); err != nil {
		return true, err
	}
	if cs.Index != nil && cs.Index.IsSynced() {
		if err := cs.Index.Remove(name); err != nil {
			fmt.Fprintf(os.Stderr, "%s index update failed: %v\n",
				warningStyle.Render("[Warning]"), err)
		}
	}
	fmt.Printf("%s deleted: %s\n", commandStyle.Render("[OK]"), name)
	return true, nil
}

// handleModelCommand shows or switches the active model.
func handleModelCommand(cs *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Printf("%s Current model: %s\n",
			infoStyle.Render("[Model]"),
			commandStyle.Render(cs.Session.Model()))
		return true, nil
	}

	newModel := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := cs.Client.ModelExists(ctx, newModel)
	if err == nil && !exists {
		fmt.Fprintf(os.Stderr, "%s Model '%s' is not installed; /pull %s to download it\n",
			warningStyle.Render("[Warning]"), newModel, newModel)
	}

	cs.Session.SetModel(newModel)
	fmt.Printf("%s Switched to model: %s\n", commandStyle.Render("[OK]"), newModel)
	return true, nil
}

// handleAttachCommand attaches a file to the active conversation.
func handleAttachCommand(cs *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		return true, fmt.Errorf("usage: /attach <path>")
	}
	path := strings.Join(args, " ")

	info, err := os.Stat(path)
	if err != nil {
		return true, fmt.Errorf("cannot attach %s: %w", path, err)
	}
	if info.IsDir() {
		return true, fmt.Errorf("cannot attach a directory: %s", path)
	}

	if _, err := cs.Ledger.Attach(path); err != nil {
		return true, err
	}
	fmt.Printf("%s attached: %s (%s)\n",
		commandStyle.Render("[OK]"), path, formatBytes(info.Size()))
	return true, nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(cs *ChatSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("lamachat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(cs.Session.Model()))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Ollama:"),
		mutedStyle.Render(cs.Config.Ollama.URL))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Archive:"),
		mutedStyle.Render(cs.Archive.Dir))
	if cs.Index == nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Search:"),
			warningStyle.Render("disabled"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printHelp prints available slash commands.
func printHelp() {
	fmt.Println()
	fmt.Println(headerStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help", "Show this help"},
		{"/new", "Start a new conversation"},
		{"/load <name>", "Load an archived conversation"},
		{"/list", "List archived conversations"},
		{"/search <query>", "Search past conversations"},
		{"/delete <name>", "Delete an archived conversation"},
		{"/model [name]", "Show or switch model"},
		{"/models", "List installed models"},
		{"/pull <name>", "Download a model"},
		{"/rm-model <name>", "Remove a model"},
		{"/attach <path>", "Attach a file"},
		{"/detach <path>", "Remove an attached file"},
		{"/files", "List attached files"},
		{"/history", "Show conversation history"},
		{"/status", "Show session status"},
		{"/save", "Force a save of pending turns"},
		{"/quit", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-18s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current generation, Ctrl+D exits"))
	fmt.Println()
}

// printFiles prints the attachment ledger.
func printFiles(cs *ChatSession) {
	entries := cs.Ledger.Entries()
	if len(entries) == 0 {
		fmt.Println(infoStyle.Render("[No attached files]"))
		return
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Attached Files"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	for _, e := range entries {
		status := mutedStyle.Render("pending")
		if e.Status == attach.Processed {
			status = commandStyle.Render("processed")
		}
		fmt.Printf("  %s  %s\n", e.Path, status)
	}
	fmt.Println()
}

// printHistory prints the conversation so far.
func printHistory(cs *ChatSession) {
	turns := cs.Session.History()
	if len(turns) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Conversation History"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, turn := range turns {
		label := assistantLabelStyle.Render(turn.Label())
		if turn.IsUser() {
			label = userLabelStyle.Render(turn.Label())
		}

		// Rune-based truncation keeps multibyte content intact
		content := turn.Content
		runes := []rune(content)
		if len(runes) > 100 {
			content = string(runes[:100]) + "..."
		}
		content = strings.ReplaceAll(content, "\n", " ")

		fmt.Printf("  %d. %s: %s\n", i+1, label, content)
	}

	fmt.Println()
}

// printStatus prints session statistics.
func printStatus(cs *ChatSession) {
	fmt.Println()
	fmt.Println(headerStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	name := cs.Session.Name()
	if name == "" {
		name = mutedStyle.Render("(unnamed)")
	}
	fmt.Printf("  %s %s\n", infoStyle.Render("Conversation:"), name)
	fmt.Printf("  %s %s\n", infoStyle.Render("Model:"), commandStyle.Render(cs.Session.Model()))
	fmt.Printf("  %s %d turns (%d unsaved)\n",
		infoStyle.Render("History:"),
		len(cs.Session.History()),
		cs.Session.PendingCount())
	fmt.Printf("  %s %d\n", infoStyle.Render("Attachments:"), len(cs.Ledger.Entries()))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		time.Since(cs.StartTime).Round(time.Second).String())

	if cs.Index != nil {
		stats := cs.Index.Stats()
		fmt.Println()
		fmt.Println(infoStyle.Render("Search Index:"))
		fmt.Printf("  %s %s conversations, %s turns\n",
			infoStyle.Render("Indexed:"),
			formatCount(stats.ConversationCount),
			formatCount(stats.TurnCount))
		if stats.DatabaseSize > 0 {
			fmt.Printf("  %s %s\n",
				infoStyle.Render("Database:"),
				formatBytes(stats.DatabaseSize))
		}
	}

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(cs *ChatSession) {
	if cs.Exchanges == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(cs.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(headerStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n", infoStyle.Render("Exchanges:"), cs.Exchanges)
	if name := cs.Session.Name(); name != "" {
		fmt.Printf("  %s %s\n", infoStyle.Render("Saved as:"), commandStyle.Render(name))
	}
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"), elapsed.String())

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
