package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/kernelbridge/application/config"
	"github.com/reglet-dev/kernelbridge/application/schema"
	"github.com/reglet-dev/kernelbridge/application/signature"
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/wireformat"
)

// NewSignaturesCommand creates the signatures command.
func NewSignaturesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "signatures",
		Short:         "List the compiled specializations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, err := openModule(cmd, opts)
			if err != nil {
				return err
			}
			defer m.Close(cmd.Context())

			var sigs []wireformat.SignatureWire
			for _, s := range m.Specializations() {
				sigs = append(sigs, wireformat.SignatureWire{
					ID:        s.ID().String(),
					Name:      s.Name(),
					Function:  s.Function(),
					Signature: s.Signature().String(),
					Backend:   "native",
				})
			}

			f := formatter(cmd, opts)
			if opts.Format != "text" {
				return f.Print(sigs)
			}
			var b strings.Builder
			for _, s := range sigs {
				fmt.Fprintf(&b, "%-20s %s\n", s.Name, s.Signature)
			}
			_, err = fmt.Fprint(f.Writer, b.String())
			return err
		},
	}
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [descriptor|config]",
		Short: "Print a JSON Schema",
		Long: `Print the JSON Schema of call descriptors (the default) or of the
configuration file.`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     []string{"descriptor", "config"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "descriptor"
			if len(args) == 1 {
				target = args[0]
			}

			var (
				data []byte
				err  error
			)
			switch target {
			case "descriptor":
				data, err = signature.Schema()
			case "config":
				data, err = schema.Generate(&config.Config{})
			default:
				return WrapExitError(ExitCommandError, fmt.Sprintf("unknown schema %q", target), nil)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func typeList(types []entities.ArgType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
