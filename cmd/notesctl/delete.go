package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if err := newClient().Delete(ctx, id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "note %d deleted\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
