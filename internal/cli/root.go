// Package cli implements the taskpad command line client.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/taskpad/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Token   string
	Verbose bool
	Format  string // "text" | "json"

	Config config.Config
}

var ValidFormats = []string{"text", "json"}

// ErrFailed is returned after a remote failure has already been reported
// to the user as a notification.
var ErrFailed = errors.New("one or more operations failed")

func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{Config: cfg}

	cmd := &cobra.Command{
		Use:   "taskpad",
		Short: "taskpad - tasks, notes and a dashboard",
		Long: `taskpad keeps a personal task list and notes in sync with a taskpad server.

Changes are shown immediately and confirmed by the server in the background;
a rejected change is rolled back and reported.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", cfg.ServerURL, "taskpad server URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", cfg.Token, "bearer token (overrides the saved session)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewTasksCommand(opts))
	cmd.AddCommand(NewNotesCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewLicenseCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewSignInCommand(opts))
	cmd.AddCommand(NewSignOutCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
