package agent

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/companion-cli/companion/code_indexer"
	"github.com/companion-cli/companion/constants/lipgloss"
	"github.com/companion-cli/companion/differ"
	"github.com/companion-cli/companion/embed_data"
	contracts_provider "github.com/companion-cli/companion/providers/contracts"
	"github.com/companion-cli/companion/providers/models"
	"github.com/companion-cli/companion/session"
	contracts_token "github.com/companion-cli/companion/token_management/contracts"
	"github.com/companion-cli/companion/utils"
	"github.com/pterm/pterm"
)

// maxContextTokens bounds the codebase context sent with a one-shot
// instruction. Only the first chunk is submitted.
const maxContextTokens = 30_000

const (
	retryAttempts  = 3
	retryBaseDelay = time.Second
)

// Config is the per-invocation configuration of a one-shot agent run.
type Config struct {
	Cwd               string
	Instruction       string
	Mode              session.ExecutionMode
	IncludeExtensions []string
	ExcludeDirs       []string
	MaxFiles          int
	DryRun            bool
}

// Agent runs one index -> prompt -> parse -> apply cycle.
type Agent struct {
	config   Config
	provider contracts_provider.IChatProvider
	tokens   contracts_token.ITokenManagement
	cache    *code_indexer.CacheManager
	progress code_indexer.ProgressSink
}

// New creates an agent. cache and progress may be nil.
func New(config Config, provider contracts_provider.IChatProvider, tokens contracts_token.ITokenManagement,
	cache *code_indexer.CacheManager, progress code_indexer.ProgressSink) *Agent {
	return &Agent{
		config:   config,
		provider: provider,
		tokens:   tokens,
		cache:    cache,
		progress: progress,
	}
}

// Run executes the whole one-shot flow.
func (a *Agent) Run(ctx context.Context) error {
	fmt.Println()
	fmt.Println(lipgloss.Cyan.Render("COMPANION - Agent mode"))
	fmt.Printf("Project: %s\n", a.config.Cwd)
	fmt.Printf("Instruction: %s\n", a.config.Instruction)
	fmt.Printf("Mode: %s\n\n", a.config.Mode)

	fmt.Println(lipgloss.Bold.Render("Indexing project..."))
	index, err := code_indexer.Index(a.config.Cwd, code_indexer.Options{
		IncludeExtensions: a.config.IncludeExtensions,
		ExcludeDirs:       a.config.ExcludeDirs,
		MaxFiles:          a.config.MaxFiles,
		Progress:          a.progress,
		Cache:             a.cache,
	})
	if err != nil {
		return err
	}

	fmt.Println(index.Summary())

	if len(index.Files) == 0 {
		return fmt.Errorf("no files found to analyze")
	}

	response, err := a.requestChanges(ctx, index)
	if err != nil {
		return err
	}

	changes := differ.ParseAIResponse(response, a.config.Cwd)

	fmt.Print(changes.RenderPlan())

	if a.config.Mode == session.ExecutionPlan {
		fmt.Println(lipgloss.Green.Render("Plan generated (plan mode, no modifications applied)"))
		return nil
	}

	if changes.IsEmpty() {
		fmt.Println(lipgloss.Yellow.Render("No file modifications proposed."))
		fmt.Println(response)
		return nil
	}

	fmt.Printf("\n%s\n", lipgloss.Bold.Render("Proposed changes: "+changes.Summary()))
	if a.config.Mode == session.ExecutionAuto {
		fmt.Print(changes.RenderAllChanges())
	}

	if a.config.DryRun {
		fmt.Println()
		fmt.Println(lipgloss.Yellow.Render("Dry run: no modifications applied"))
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	applier := &session.Applier{
		Out: os.Stdout,
		Confirm: func(prompt string) bool {
			accepted, err := utils.ConfirmPrompt(prompt, reader)
			if err != nil {
				return false
			}
			return accepted
		},
	}

	if a.config.Mode == session.ExecutionAuto {
		fmt.Println()
		fmt.Println(lipgloss.Bold.Render("Applying changes automatically..."))
	}
	applier.ApplyChangeSet(changes, a.config.Mode)

	fmt.Println()
	fmt.Println(lipgloss.Green.Render("Done."))
	return nil
}

// requestChanges assembles the prompt from the first context chunk and
// sends it to the provider, retrying the transport call only.
func (a *Agent) requestChanges(ctx context.Context, index *code_indexer.CodebaseIndex) (string, error) {
	fmt.Println(lipgloss.Bold.Render("Analyzing..."))

	chunks := index.BuildContext(maxContextTokens)
	contextChunk := ""
	if len(chunks) > 0 {
		contextChunk = chunks[0]
	}

	prompt := fmt.Sprintf("CODEBASE:\n%s\n\nINSTRUCTION: %s\n", contextChunk, a.config.Instruction)
	if a.config.Mode == session.ExecutionPlan {
		prompt += "\nNOTE: Plan mode only. Propose a detailed plan without providing code modifications."
	}

	messages := []models.Message{
		{Role: "system", Content: string(embed_data.CodeAssistantPrompt)},
		{Role: "user", Content: prompt},
	}

	spinner, _ := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithRemoveWhenDone(true).
		Start("Waiting for the AI...")

	var response string
	var usage *models.Usage
	err := utils.RetryWithBackoff(ctx, retryAttempts, retryBaseDelay, func() error {
		var chatErr error
		response, usage, chatErr = a.provider.Chat(ctx, messages)
		return chatErr
	})
	spinner.Stop()

	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}

	if usage != nil {
		a.tokens.UsedTokens(usage.PromptTokens, usage.CompletionTokens)
	}
	return response, nil
}
