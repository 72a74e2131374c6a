package cli

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// corruptHi is a qsort upper bound far past any real array.
const corruptHi = 1 << 44

// NewCrashCommand creates the crash command.
func NewCrashCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "crash",
		Short: "Run qsort_kernel with corrupted bounds to exercise the crash reporter",
		Long: `Run qsort_kernel on a five element array with an upper bound far outside
it. The kernel reads unmapped memory; the crash reporter prints a
symbolized stack trace to stderr and the process exits non-zero.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, err := openModule(cmd, opts)
			if err != nil {
				return err
			}
			defer m.Close(cmd.Context())

			a := entities.FromSlice([]float64{5, 3, 4, 1, 2})
			_, err = m.Run(cmd.Context(), "qsort_kernel", a, entities.Int(0), entities.Int(corruptHi))
			return err
		},
	}
}
