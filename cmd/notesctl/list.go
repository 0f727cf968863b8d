package main

import (
	"context"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		notes, err := newClient().List(ctx)
		if err != nil {
			return err
		}

		f, _ := parseOutputFormat(outputFormat)
		return writeNotes(cmd.OutOrStdout(), f, notes)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
