package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/kernelbridge/application/signature"
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/host"
	"github.com/reglet-dev/kernelbridge/wireformat"
)

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <function> [args...]",
		Short: "Call a function of the benchmark module",
		Long: `Call a function of the benchmark module. Arguments are JSON literals.

Examples:
  kernelctl run fib 10
  kernelctl run qsort_kernel '[5,3,4,1,2]' 0 4
  kernelctl run pisum
  kernelctl --int-arrays run qsort_kernel '[5,3,4,1,2]' 0 4`,
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

			res := call(cmd.Context(), m, args[0], values)
			if err := printResult(formatter(cmd, opts), res); err != nil {
				return err
			}
			if res.Status == "failure" {
				return &ExitError{Code: ExitFailure, Message: res.Error.Error()}
			}
			return nil
		},
	}
}

// call runs function and converts the outcome to its wire form.
func call(ctx context.Context, m *host.Module, function string, args []entities.Value) wireformat.ResultWire {
	res := wireformat.ResultWire{Function: function}

	v, err := m.Run(ctx, function, args...)
	if err != nil {
		res.Status = "failure"
		res.Error = wireError(errors.ToErrorDetail(err))
		return res
	}

	if o, ok := v.(entities.Opaque); ok {
		if d, ok := o.V.(entities.Descriptor); ok {
			res.Status = "fallback"
			res.Kind = string(entities.KindObject)
			res.Value = signature.ToWire(d)
			return res
		}
	}

	res.Status = "success"
	res.Kind = string(v.Kind())
	res.Value = hostValue(v)
	return res
}

func printResult(f *OutputFormatter, res wireformat.ResultWire) error {
	if f.Format == "text" {
		return f.Print(resultText(res))
	}
	return f.Print(res)
}
