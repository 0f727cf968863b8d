package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/2beens/notesservice/internal/client"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		note, err := newClient().Get(ctx, id)
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("note %d not found", id)
		}
		if err != nil {
			return err
		}

		f, _ := parseOutputFormat(outputFormat)
		return writeNote(cmd.OutOrStdout(), f, note)
	},
}

func parseIDArg(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid note id [%s]", arg)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(getCmd)
}
