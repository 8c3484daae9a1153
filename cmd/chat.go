package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/companion-cli/companion/constants/lipgloss"
	"github.com/companion-cli/companion/session"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session over the indexed codebase",
	Long: `The 'chat' subcommand opens a session-based assistant over the current
project. The codebase is indexed once at startup and folded into the system
context; /reindex refreshes it after external edits. Modes control what
happens with proposed modifications: ask (never applied), plan (displayed
only), code (confirmed per change) and auto (applied directly).`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		chatConfig := session.ChatConfig{
			Cwd:               rootDependencies.Cwd,
			IncludeExtensions: rootDependencies.Config.IncludeExtensions,
			ExcludeDirs:       rootDependencies.Config.ExcludeDirs,
			MaxFiles:          rootDependencies.Config.MaxFiles,
			Theme:             rootDependencies.Config.Theme,
			Model:             rootDependencies.Config.AIProviderConfig.Model,
		}

		chatSession := session.NewChatSession(chatConfig, rootDependencies.Provider,
			rootDependencies.TokenManagement, rootDependencies.Cache, newIndexSpinnerSink("Indexing project..."))

		if err := chatSession.Run(ctx); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			return
		}

		rootDependencies.TokenManagement.DisplayTokens(rootDependencies.Config.AIProviderConfig.Model)
	},
}

func init() {
	chatCmd.Flags().StringP("cwd", "c", "", "Project directory to analyze (defaults to the current directory).")
	rootCmd.AddCommand(chatCmd)
}
