// Package cli implements the kernelctl commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/kernelbridge/application/config"
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/ports"
	"github.com/reglet-dev/kernelbridge/host"
	"github.com/reglet-dev/kernelbridge/log"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format      string // "text" | "json" | "yaml"
	ConfigPath  string
	JournalPath string
	Verbose     bool
	IntArrays   bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for kernelctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kernelctl",
		Short: "Drive the built-in kernelbridge benchmark module",
		Long: `kernelctl loads the built-in fib, qsort_kernel and pisum specializations
and dispatches calls to them. Calls no specialization accepts are described
and handed to a fallback factory that prints the descriptor.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.JournalPath, "journal", "", "record fallbacks in this SQLite database")
	cmd.PersistentFlags().BoolVar(&opts.IntArrays, "int-arrays", false, "parse number arrays as int32 instead of float64")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewSignaturesCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewCrashCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))

	return cmd
}

// loadConfig reads --config and applies --journal on top.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return cfg, WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}
	if opts.JournalPath != "" {
		cfg.Journal.Path = opts.JournalPath
	}
	return cfg, nil
}

func newLogger(opts *RootOptions, cfg config.Config, w io.Writer) *slog.Logger {
	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return log.New(log.WithWriter(w), log.WithLevel(level))
}

// fallbackFactory answers every fallback with the descriptor it received,
// wrapped as an opaque value, so the commands can print it.
var fallbackFactory = ports.FactoryFunc(func(_ context.Context, d entities.Descriptor, _ []entities.Value) (entities.Value, error) {
	return entities.NewOpaque(d), nil
})

// openModule loads the benchmark module with the CLI's configuration and
// registers the printing factory.
func openModule(cmd *cobra.Command, opts *RootOptions) (*host.Module, config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, cfg, err
	}
	m, err := host.LoadBenchmarks(cmd.Context(),
		host.WithConfig(cfg),
		host.WithLogger(newLogger(opts, cfg, cmd.ErrOrStderr())),
	)
	if err != nil {
		return nil, cfg, WrapExitError(ExitCommandError, "failed to load module", err)
	}
	if err := m.SetCreateSignature(fallbackFactory); err != nil {
		_ = m.Close(cmd.Context())
		return nil, cfg, WrapExitError(ExitCommandError, "failed to set fallback factory", err)
	}
	return m, cfg, nil
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Writer: cmd.OutOrStdout(), Format: opts.Format, Verbose: opts.Verbose}
}
