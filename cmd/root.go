package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/companion-cli/companion/code_indexer"
	"github.com/companion-cli/companion/config"
	"github.com/companion-cli/companion/constants/lipgloss"
	"github.com/companion-cli/companion/providers"
	contracts_provider "github.com/companion-cli/companion/providers/contracts"
	"github.com/companion-cli/companion/token_management"
	contracts_token "github.com/companion-cli/companion/token_management/contracts"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// RootDependencies holds the wiring shared by every subcommand.
type RootDependencies struct {
	Cwd             string
	Config          *config.Config
	Store           config.SettingsStore
	Provider        contracts_provider.IChatProvider
	TokenManagement contracts_token.ITokenManagement
	Cache           *code_indexer.CacheManager
}

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "companion is an AI assistant for your codebase",
	Long: `companion indexes your project, sends the relevant context to an AI model
and applies the proposed modifications after your confirmation. Use the 'chat'
subcommand for an interactive session or 'plan'/'interactive'/'auto' for
one-shot instructions.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}

func handleRootCommand(cmd *cobra.Command) *RootDependencies {

	rootDependencies := &RootDependencies{}

	var err error

	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd == "" {
		cwd, err = os.Getwd()
		if err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			return nil
		}
	}
	rootDependencies.Cwd = cwd

	rootDependencies.Config = config.LoadConfigs(cmd.Root(), cwd)

	rootDependencies.Store, err = config.NewFileStore("")
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return nil
	}

	// Persisted API settings fill whatever the config file, flags and
	// environment left empty. Local providers need no key.
	if err := config.ApplyStoredCredentials(rootDependencies.Config.AIProviderConfig, rootDependencies.Store); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return nil
	}

	rootDependencies.TokenManagement = token_management.NewTokenManager()

	if rootDependencies.Config.EnableCache {
		rootDependencies.Cache, err = code_indexer.NewCacheManager(filepath.Join(cwd, ".companion", "cache"))
		if err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: cache disabled: %v", err)))
		}
	}

	rootDependencies.Provider, err = providers.ChatProviderFactory(rootDependencies.Config.AIProviderConfig)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return nil
	}

	return rootDependencies
}

// indexSpinnerSink adapts a pterm spinner to the indexer. The walk does
// not know its total upfront, so a running file count beats a percentage.
type indexSpinnerSink struct {
	spinner *pterm.SpinnerPrinter
}

func newIndexSpinnerSink(title string) *indexSpinnerSink {
	spinner, _ := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true).
		Start(title)
	return &indexSpinnerSink{spinner: spinner}
}

func (s *indexSpinnerSink) Step(indexed int) {
	if s.spinner == nil {
		return
	}
	s.spinner.UpdateText(fmt.Sprintf("Indexing project... (%d files)", indexed))
}

func (s *indexSpinnerSink) Finish(total int) {
	if s.spinner == nil {
		return
	}
	_ = s.spinner.Stop()
	fmt.Print("\r")
}
