package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/kernelbridge/host"
)

const (
	historyFile = ".kernelctl_history"
	prompt      = "kernel> "
)

// NewReplCommand creates the repl command.
func NewReplCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Call functions interactively",
		Long: `Read calls of the form "<function> [args...]" and print each result.
":sigs" lists the specializations, ":quit" exits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, err := openModule(cmd, opts)
			if err != nil {
				return err
			}
			defer m.Close(cmd.Context())

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			home, _ := os.UserHomeDir()
			histPath := filepath.Join(home, historyFile)
			if f, err := os.Open(histPath); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}
			defer func() {
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()

			f := formatter(cmd, opts)
			for {
				line, err := ln.Prompt(prompt)
				if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
					return nil
				}
				if err != nil {
					return err
				}
				quit, err := evalLine(cmd.Context(), m, f, line, opts.IntArrays)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
				if quit {
					return nil
				}
				if strings.TrimSpace(line) != "" {
					ln.AppendHistory(line)
				}
			}
		},
	}
}

// evalLine runs one repl line and reports whether the session should end.
func evalLine(ctx context.Context, m *host.Module, f *OutputFormatter, line string, intArrays bool) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case ":quit", ":q":
		return true, nil
	case ":sigs":
		for _, s := range m.Specializations() {
			if err := f.Print(s.Signature().String()); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	args, err := ParseArgs(fields[1:], intArrays)
	if err != nil {
		return false, err
	}
	if f.Verbose {
		fmt.Fprintf(f.Writer, "calling %s(%s)\n", fields[0], formatArgs(args))
	}
	return false, printResult(f, call(ctx, m, fields[0], args))
}
