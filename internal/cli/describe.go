package cli

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/kernelbridge/application/signature"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <function> [args...]",
		Short: "Print the descriptor a call would hand to the factory",
		Long: `Print the descriptor a call would hand to the fallback factory, without
calling anything. JSON output is the canonical encoding journals store.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openModule(cmd, opts)
			if err != nil {
				return err
			}
			defer m.Close(cmd.Context())

			values, err := ParseArgs(args[1:], opts.IntArrays)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}
			d, err := m.Describe(args[0], values...)
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot describe", err)
			}

			if opts.Format == "text" {
				return formatter(cmd, opts).Print(typeList(d.TypeTuple()))
			}
			data, err := signature.CodecFor(opts.Format).Encode(d)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(data); err != nil {
				return err
			}
			if len(data) > 0 && data[len(data)-1] != '\n' {
				_, err = out.Write([]byte{'\n'})
			}
			return err
		},
	}
}
