package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podiumlabs/podium/internal/prompts"
)

func newTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the known tasks",
		Long:  "List every task name that can appear in an experiment spec, with its instruction text.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := prompts.TaskNames()

			nameWidth := 0
			for _, name := range names {
				if len(name) > nameWidth {
					nameWidth = len(name)
				}
			}

			for _, name := range names {
				desc := prompts.Descriptions[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", padRight(name, nameWidth), truncate(desc, 100)) //nolint:errcheck
			}
			return nil
		},
	}
}

// truncate shortens s to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
