package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/johnconna/pyforce-evaluation-v2/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List source directory files and detected archive kinds",
		Long:  listLongDescription,
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return buildWorkflow().List(context.Background(), domain.ListArgs{
				Source: sourcePath(),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
