package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/companion-cli/companion/code_indexer"
	"github.com/companion-cli/companion/constants/lipgloss"
	"github.com/companion-cli/companion/differ"
	"github.com/companion-cli/companion/embed_data"
	contracts_provider "github.com/companion-cli/companion/providers/contracts"
	"github.com/companion-cli/companion/providers/models"
	contracts_token "github.com/companion-cli/companion/token_management/contracts"
	"github.com/companion-cli/companion/utils"
	"github.com/pterm/pterm"
)

// maxSessionTokens is the approximate context window budgeted for a chat
// session, estimated at one token per four characters.
const maxSessionTokens = 32_000

// chatContextTokens bounds the codebase context folded into the system
// message. Only the first chunk is used.
const chatContextTokens = 20_000

const (
	retryAttempts  = 3
	retryBaseDelay = time.Second
)

// ChatConfig configures a chat session.
type ChatConfig struct {
	Cwd               string
	IncludeExtensions []string
	ExcludeDirs       []string
	MaxFiles          int
	Theme             string
	Model             string
}

// ChatSession is an interactive REPL over the indexer, parser and
// applier. One outstanding model request at a time; everything besides
// the network call runs synchronously.
type ChatSession struct {
	config   ChatConfig
	provider contracts_provider.IChatProvider
	tokens   contracts_token.ITokenManagement
	cache    *code_indexer.CacheManager
	progress code_indexer.ProgressSink

	messages []models.Message
	index    *code_indexer.CodebaseIndex
	mode     ChatMode
	reader   *bufio.Reader
}

// NewChatSession creates a session in the default CODE mode.
func NewChatSession(config ChatConfig, provider contracts_provider.IChatProvider,
	tokens contracts_token.ITokenManagement, cache *code_indexer.CacheManager,
	progress code_indexer.ProgressSink) *ChatSession {
	return &ChatSession{
		config:   config,
		provider: provider,
		tokens:   tokens,
		cache:    cache,
		progress: progress,
		messages: []models.Message{
			{Role: "system", Content: string(embed_data.CodeAssistantPrompt)},
		},
		mode:   ModeCode,
		reader: bufio.NewReader(os.Stdin),
	}
}

// Run starts the REPL and blocks until the user quits or the context is
// canceled.
func (s *ChatSession) Run(ctx context.Context) error {
	fmt.Println()
	fmt.Println(lipgloss.Cyan.Render("COMPANION - Chat mode"))
	fmt.Printf("Working directory: %s\n\n", s.config.Cwd)

	if err := s.reindex(); err != nil {
		return err
	}

	fmt.Println(lipgloss.Gray.Render(strings.Repeat("─", 60)))
	fmt.Println(lipgloss.Green.Render("Interactive chat. Type your instructions."))
	fmt.Println(lipgloss.Gray.Render("   Commands: /quit, /help, /reindex, /clear, /mode, /outline"))
	fmt.Println(lipgloss.Gray.Render(strings.Repeat("─", 60)))
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		input, err := utils.InputPromptWithContext(ctx, s.reader)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			continue
		}
		if input == "" {
			continue
		}

		handled, exit := s.handleCommand(input)
		if exit {
			fmt.Println(lipgloss.Green.Render("Bye!"))
			return nil
		}
		if handled {
			s.printStatusBar()
			continue
		}

		s.turn(ctx, input)
		s.printStatusBar()
	}
}

// turn sends one user message and handles the parsed response.
func (s *ChatSession) turn(ctx context.Context, input string) {
	s.messages = append(s.messages, models.Message{Role: "user", Content: input})

	spinner, _ := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithRemoveWhenDone(true).
		Start("Waiting for the AI...")

	var response string
	var usage *models.Usage
	err := utils.RetryWithBackoff(ctx, retryAttempts, retryBaseDelay, func() error {
		var chatErr error
		response, usage, chatErr = s.provider.Chat(ctx, s.messages)
		return chatErr
	})
	spinner.Stop()

	if err != nil {
		// The failed user message stays in history; the model simply
		// never saw it.
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error: %v", err)))
		return
	}

	if usage != nil {
		s.tokens.UsedTokens(usage.PromptTokens, usage.CompletionTokens)
	}

	changes := differ.ParseAIResponse(response, s.config.Cwd)

	if !changes.IsEmpty() && s.mode != ModeAsk {
		fmt.Print(changes.RenderPlan())
		fmt.Printf("\n%s\n", lipgloss.Bold.Render("Proposed changes: "+changes.Summary()))
		fmt.Print(changes.RenderAllChanges())

		applier := &Applier{
			Out: os.Stdout,
			Confirm: func(prompt string) bool {
				accepted, err := utils.ConfirmPrompt(prompt, s.reader)
				if err != nil {
					return false
				}
				return accepted
			},
		}

		if s.mode == ModeAuto {
			fmt.Println()
			fmt.Println(lipgloss.Bold.Render("Applying changes automatically..."))
		}
		applier.ApplyChangeSet(changes, ExecutionModeFor(s.mode))
	} else {
		utils.RenderResponse(response, s.config.Theme)
	}

	s.messages = append(s.messages, models.Message{Role: "assistant", Content: response})
}

// handleCommand processes slash commands. It returns whether the input
// was a command, and whether the session should exit.
func (s *ChatSession) handleCommand(input string) (handled bool, exit bool) {
	switch strings.ToLower(input) {
	case "/quit", "/exit", "/q":
		return true, true
	case "/help", "/h":
		s.printHelp()
		return true, false
	case "/ask", "/plan", "/code", "/auto":
		mode, _ := ParseChatMode(strings.TrimPrefix(strings.ToLower(input), "/"))
		s.setMode(mode)
		return true, false
	case "/mode":
		s.setMode(s.mode.Cycle())
		return true, false
	case "/reindex":
		fmt.Println(lipgloss.Bold.Render("Reindexing..."))
		if err := s.reindex(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		}
		return true, false
	case "/clear":
		s.messages = s.messages[:1] // keep the system message
		fmt.Println(lipgloss.Yellow.Render("History cleared."))
		return true, false
	case "/token":
		s.tokens.DisplayTokens(s.config.Model)
		return true, false
	}

	if strings.HasPrefix(input, "/outline ") {
		s.printOutline(strings.TrimSpace(strings.TrimPrefix(input, "/outline ")))
		return true, false
	}

	return false, false
}

func (s *ChatSession) setMode(mode ChatMode) {
	s.mode = mode
	switch mode {
	case ModeAsk:
		fmt.Println(lipgloss.BlueSky.Render("ASK mode - questions and answers only"))
	case ModePlan:
		fmt.Println(lipgloss.Yellow.Render("PLAN mode - proposes plans without modifying"))
	case ModeCode:
		fmt.Println(lipgloss.Green.Render("CODE mode - modifications with confirmation"))
	case ModeAuto:
		fmt.Println(lipgloss.Red.Render("AUTO mode - applies modifications automatically"))
	}
}

// reindex rebuilds the codebase index and refreshes the codebase context
// inside the system message. The previous index is superseded, never
// updated in place.
func (s *ChatSession) reindex() error {
	index, err := code_indexer.Index(s.config.Cwd, code_indexer.Options{
		IncludeExtensions: s.config.IncludeExtensions,
		ExcludeDirs:       s.config.ExcludeDirs,
		MaxFiles:          s.config.MaxFiles,
		Progress:          s.progress,
		Cache:             s.cache,
	})
	if err != nil {
		return err
	}
	s.index = index

	fmt.Println(index.Summary())

	systemContent := string(embed_data.CodeAssistantPrompt)
	if chunks := index.BuildContext(chatContextTokens); len(chunks) > 0 {
		systemContent = fmt.Sprintf("%s\n\nCODEBASE:\n%s", systemContent, chunks[0])
	}
	s.messages[0].Content = systemContent

	return nil
}

// printOutline shows the top-level declarations of one indexed file.
func (s *ChatSession) printOutline(relativePath string) {
	if s.index == nil {
		fmt.Println(lipgloss.Yellow.Render("No index available; run /reindex first."))
		return
	}

	relativePath = filepath.ToSlash(relativePath)
	for _, file := range s.index.Files {
		if file.RelativePath != relativePath {
			continue
		}
		outline := code_indexer.ExtractOutline(file.RelativePath, []byte(file.Content))
		if len(outline) == 0 {
			fmt.Println(lipgloss.Yellow.Render("No declarations found."))
			return
		}
		fmt.Println(lipgloss.BoxStyle.Render(strings.Join(outline, "\n")))
		return
	}
	fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("File not in index: %s", relativePath)))
}

// printStatusBar shows the current mode and the estimated share of the
// context window consumed by the conversation.
func (s *ChatSession) printStatusBar() {
	used := s.tokens.EstimateMessages(s.messages)
	remaining := maxSessionTokens - used
	if remaining < 0 {
		remaining = 0
	}

	var modeLabel string
	switch s.mode {
	case ModeAsk:
		modeLabel = lipgloss.BlueSky.Render(s.mode.String())
	case ModePlan:
		modeLabel = lipgloss.Yellow.Render(s.mode.String())
	case ModeCode:
		modeLabel = lipgloss.Green.Render(s.mode.String())
	case ModeAuto:
		modeLabel = lipgloss.Red.Render(s.mode.String())
	}

	fmt.Println()
	fmt.Println(lipgloss.Gray.Render(fmt.Sprintf(
		"─── Mode: %s │ Tokens: ~%d/%d (~%d%% left) ───",
		modeLabel, used, maxSessionTokens, (remaining*100)/maxSessionTokens)))
}

func (s *ChatSession) printHelp() {
	helps := strings.Join([]string{
		"/quit           Exit the session",
		"/help           Show this help",
		"/reindex        Rebuild the project index",
		"/clear          Clear the chat history",
		"/token          Session token usage",
		"/outline <file> Show the declarations of an indexed file",
		"/mode           Cycle Ask -> Plan -> Code -> Auto",
		"/ask /plan /code /auto  Switch mode directly",
	}, "\n")
	fmt.Println(lipgloss.BoxStyle.Render(helps))
}
