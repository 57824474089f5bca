package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.nhat.io/otelquery"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "otelquery v%s\n", otelquery.Version())
		},
	}
}
