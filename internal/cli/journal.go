package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/kernelbridge/infrastructure/journal"
)

type journalEntry struct {
	Function   string `json:"function"`
	Signature  string `json:"signature"`
	ID         string `json:"id"`
	FirstSeen  string `json:"first_seen"`
	LastSeen   string `json:"last_seen"`
	Descriptor string `json:"descriptor"`
	Hits       int    `json:"hits"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "journal [function]",
		Short: "List the argument signatures that reached the fallback factory",
		Long: `List the argument signatures recorded in the fallback journal, in the
order they were first seen. Each entry names the specialization that
would have accepted the call.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Journal.Path == "" {
				return WrapExitError(ExitCommandError, "no journal", errors.New("set --journal or journal.path"))
			}

			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open journal", err)
			}
			defer j.Close()

			var function string
			if len(args) == 1 {
				function = args[0]
			}
			entries, err := j.List(cmd.Context(), function)
			if err != nil {
				return err
			}

			out := make([]journalEntry, len(entries))
			for i, e := range entries {
				out[i] = journalEntry{
					Function:   e.Function,
					Signature:  e.Signature,
					ID:         e.SpecID.String(),
					FirstSeen:  e.FirstSeen.Format(time.RFC3339),
					LastSeen:   e.LastSeen.Format(time.RFC3339),
					Descriptor: string(e.Descriptor),
					Hits:       e.Hits,
				}
			}

			f := formatter(cmd, opts)
			if opts.Format != "text" {
				return f.Print(out)
			}
			for _, e := range out {
				if _, err := fmt.Fprintf(f.Writer, "%-24s hits=%d first=%s\n", e.Signature, e.Hits, e.FirstSeen); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
