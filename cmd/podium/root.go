package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "podium",
		Short: "Podium - prompting-strategy experiment runner",
		Long: `Podium runs prompting-strategy experiments against chat-completion models.

It drives a conductor/expert dialogue scaffold (plus simpler baseline
strategies), records one output file per example, and scores finished
runs against task-specific checkers.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newEvalCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newTasksCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
