package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var addImportant bool

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a new note",
	Long:  `Add a new note. All arguments are joined with spaces into the note content.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		note, err := newClient().Create(ctx, strings.Join(args, " "), addImportant)
		if err != nil {
			return err
		}

		f, _ := parseOutputFormat(outputFormat)
		return writeNote(cmd.OutOrStdout(), f, note)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolVarP(&addImportant, "important", "i", false, "mark the note as important")
}
