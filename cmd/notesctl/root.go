package main

import (
	"fmt"
	"os"
	"time"

	"github.com/2beens/notesservice/internal/client"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serviceAddr  string
	outputFormat string
	verbose      bool
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "notesctl",
	Short: "Command line client for the notes service",
	Long: `notesctl lists, reads, adds and deletes notes kept by a running
notes service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.WarnLevel)
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		if _, err := parseOutputFormat(outputFormat); err != nil {
			return err
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() *client.Client {
	log.Debugf("using notes service at [%s]", serviceAddr)
	return client.New(serviceAddr)
}

func init() {
	defaultAddr := os.Getenv("NOTES_ADDR")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:3001"
	}

	rootCmd.PersistentFlags().StringVar(&serviceAddr, "addr", defaultAddr, "notes service address (env NOTES_ADDR)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", string(formatTable), "output format [table | json | yaml]")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per request timeout")
}
