package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/companion-cli/companion/agent"
	"github.com/companion-cli/companion/constants/lipgloss"
	"github.com/companion-cli/companion/session"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [instruction]",
	Short: "Generate a modification plan without touching any file",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAgentCommand(cmd, args, session.ExecutionPlan)
	},
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive [instruction]",
	Short: "Apply AI modifications with per-change confirmation",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAgentCommand(cmd, args, session.ExecutionInteractive)
	},
}

var autoCmd = &cobra.Command{
	Use:   "auto [instruction]",
	Short: "Apply AI modifications without confirmation",
	Run: func(cmd *cobra.Command, args []string) {
		runAgentCommand(cmd, args, session.ExecutionAuto)
	},
	Args: cobra.MinimumNArgs(1),
}

func init() {
	for _, c := range []*cobra.Command{planCmd, interactiveCmd, autoCmd} {
		c.Flags().StringP("cwd", "c", "", "Project directory to analyze (defaults to the current directory).")
		c.Flags().StringSliceP("extensions", "e", nil, "File extensions to index (e.g. .go,.rs). Defaults cover common languages.")
		c.Flags().StringSliceP("exclude", "x", nil, "Directory names to exclude from indexing.")
		c.Flags().Int("max-files", 0, "Maximum number of files to index (0 uses the configured limit).")
		c.Flags().Bool("dry-run", false, "Show the proposed changes without applying anything.")
		rootCmd.AddCommand(c)
	}
}

func runAgentCommand(cmd *cobra.Command, args []string, mode session.ExecutionMode) {
	rootDependencies := handleRootCommand(cmd)
	if rootDependencies == nil {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	extensions, _ := cmd.Flags().GetStringSlice("extensions")
	excludeDirs, _ := cmd.Flags().GetStringSlice("exclude")
	maxFiles, _ := cmd.Flags().GetInt("max-files")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if len(extensions) == 0 {
		extensions = rootDependencies.Config.IncludeExtensions
	}
	if len(excludeDirs) == 0 {
		excludeDirs = rootDependencies.Config.ExcludeDirs
	}
	if maxFiles == 0 {
		maxFiles = rootDependencies.Config.MaxFiles
	}

	agentConfig := agent.Config{
		Cwd:               rootDependencies.Cwd,
		Instruction:       strings.Join(args, " "),
		Mode:              mode,
		IncludeExtensions: extensions,
		ExcludeDirs:       excludeDirs,
		MaxFiles:          maxFiles,
		DryRun:            dryRun,
	}

	runner := agent.New(agentConfig, rootDependencies.Provider, rootDependencies.TokenManagement,
		rootDependencies.Cache, newIndexSpinnerSink("Indexing project..."))

	if err := runner.Run(ctx); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	rootDependencies.TokenManagement.DisplayTokens(rootDependencies.Config.AIProviderConfig.Model)
}
