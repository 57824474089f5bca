package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.nhat.io/otelquery/sanitizer"
)

type record struct {
	Query     string  `json:"query"`
	Sanitized *string `json:"sanitized,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

func newSanitizeCommand(cfgFile *string) *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "sanitize [query...]",
		Short: "Sanitize and summarize queries",
		Long: `Sanitize and summarize queries given as arguments, read from a file, or read from stdin.

Input is split on the delimiter, one query per line by default, and blank queries are skipped. The text output prints
the sanitized query and the summary separated by a tab, the json output prints one object per query.`,
		Example: `  otelquery sanitize "SELECT * FROM users WHERE id = 42"
  otelquery sanitize --dialect pipe --output json < queries.kql
  otelquery sanitize --file dump.sql --delimiter ';' --summarize=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

			if cfg.File != "" {
				logger.Debug().Str("config", cfg.File).Msg("loaded config file")
			}

			queries := args

			if len(queries) == 0 {
				queries, err = readQueries(cmd.InOrStdin(), inputFile, cfg.Delimiter)
				if err != nil {
					return err
				}
			}

			d, _ := sanitizer.Lookup(cfg.Dialect)

			logger.Debug().
				Str("dialect", d.Name()).
				Int("queries", len(queries)).
				Int("workers", cfg.Workers).
				Msg("processing queries")

			records, err := process(cmd, d, cfg, queries)
			if err != nil {
				return err
			}

			return write(cmd.OutOrStdout(), cfg.Output, records, logger)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", `read queries from a file, "-" for stdin`)
	cmd.Flags().StringP("dialect", "d", "", "query dialect (sql|pipe)")
	cmd.Flags().Bool("sanitize", true, "replace literal values with placeholders")
	cmd.Flags().Bool("summarize", true, "derive a summary of each query")
	cmd.Flags().StringP("output", "o", "", "output format (text|json)")
	cmd.Flags().String("delimiter", "", `query delimiter for file and stdin input (default "\n")`)
	cmd.Flags().IntP("workers", "w", 0, "number of queries processed concurrently (default GOMAXPROCS)")

	_ = cmd.RegisterFlagCompletionFunc("dialect", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{sanitizer.GenericSQL.Name(), sanitizer.PipeQuery.Name()}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{outputText, outputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func readQueries(stdin io.Reader, path, delimiter string) ([]string, error) {
	r := stdin

	if path != "" && path != "-" {
		f, err := os.Open(path) //nolint: gosec
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		defer f.Close() //nolint: errcheck

		r = f
	}

	return splitQueries(r, delimiter)
}

func splitQueries(r io.Reader, delimiter string) ([]string, error) {
	if delimiter == "" {
		delimiter = "\n"
	}

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	s.Split(splitOn(delimiter))

	var queries []string

	for s.Scan() {
		if q := strings.TrimSpace(s.Text()); q != "" {
			queries = append(queries, q)
		}
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}

	return queries, nil
}

func splitOn(delimiter string) bufio.SplitFunc {
	sep := []byte(delimiter)

	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}

		if i := bytes.Index(data, sep); i >= 0 {
			return i + len(sep), data[:i], nil
		}

		if atEOF {
			return len(data), data, nil
		}

		return 0, nil, nil
	}
}

// process runs the queries through the dialect. The records keep the order of the queries.
func process(cmd *cobra.Command, d sanitizer.Dialect, cfg Config, queries []string) ([]record, error) {
	records := make([]record, len(queries))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Workers)

	for i := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r := d.Process(&queries[i], cfg.Sanitize, cfg.Summarize)

			records[i] = record{
				Query:     queries[i],
				Sanitized: r.SanitizedText,
				Summary:   r.QuerySummary,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

func write(w io.Writer, output string, records []record, logger zerolog.Logger) error {
	bw := bufio.NewWriter(w)

	if output == outputJSON {
		enc := json.NewEncoder(bw)
		enc.SetEscapeHTML(false)

		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
		}
	} else {
		for _, r := range records {
			if _, err := fmt.Fprintln(bw, textLine(r)); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}
		}
	}

	logger.Debug().Int("records", len(records)).Msg("done")

	return bw.Flush()
}

func textLine(r record) string {
	fields := make([]string, 0, 2)

	if r.Sanitized != nil {
		fields = append(fields, *r.Sanitized)
	}

	if r.Summary != nil {
		fields = append(fields, *r.Summary)
	}

	return strings.Join(fields, "\t")
}
