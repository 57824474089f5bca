// Package cli provides the command-line interface of otelquery.
package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"go.nhat.io/otelquery"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "otelquery",
		Short: "Sanitize and summarize database queries",
		Long: `otelquery removes literal values from query text and derives a short summary of each query,
the same way the otelquery database/sql wrapper does before it records a span.`,
		Version:       otelquery.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./otelquery.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")

	root.AddCommand(
		newSanitizeCommand(&cfgFile),
		newVersionCommand(),
	)

	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().
		Logger()
}
