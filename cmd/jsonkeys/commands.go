package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/usestring/jsonkeys/internal/aggregate"
	"github.com/usestring/jsonkeys/internal/cache"
	"github.com/usestring/jsonkeys/internal/config"
	"github.com/usestring/jsonkeys/internal/corpus"
	"github.com/usestring/jsonkeys/internal/logging"
	"github.com/usestring/jsonkeys/internal/report"
)

// app carries the state shared by all subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	dir        string
	configPath string
	workers    int

	cfg        *config.Config
	logCleanup func() error
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsonkeys [DIR] <command>",
		Short: "Infer the aggregate key structure of a directory of JSON documents",
		Long: "jsonkeys scans every .json file under DIR, merges the key-paths of all\n" +
			"documents and reports which JSON kinds occur at each path.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.dir, "dir", "d", "", "Root directory to scan (or pass it before the command)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file (default $JSONKEYS_CONFIG)")
	root.PersistentFlags().IntVar(&a.workers, "workers", 0, "Number of parallel document workers (default $JSONKEYS_WORKERS or CPU count)")

	root.AddCommand(a.keysCmd())
	root.AddCommand(a.queryCmd())
	root.AddCommand(a.statsCmd())
	return root
}

// setup loads configuration and initializes logging before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.workers > 0 {
		cfg.Workers = a.workers
	}
	a.cfg = cfg

	cleanup, err := logging.Setup(logging.FromConfig(cfg), a.stderr)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.logCleanup = cleanup
	return nil
}

// scan discovers and aggregates the corpus under the root directory.
func (a *app) scan(cmd *cobra.Command) (*corpus.Corpus, *aggregate.Result, error) {
	if a.dir == "" {
		return nil, nil, errors.New("root directory is required")
	}

	c, err := corpus.Discover(a.dir, a.cfg.Extension)
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("scanning corpus",
		slog.String("root", a.dir),
		slog.Int("documents", c.Len()),
		slog.Int("workers", a.cfg.Workers),
	)

	res, err := aggregate.Run(cmd.Context(), c, a.cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	return c, res, nil
}

func (a *app) keysCmd() *cobra.Command {
	var typeCount int

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List all member keys with types and how often each occurs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if typeCount < 0 {
				return fmt.Errorf("--type-count must be >= 0, got %d", typeCount)
			}
			_, res, err := a.scan(cmd)
			if err != nil {
				return err
			}
			return report.WriteKeys(a.stdout, res.Tree, typeCount)
		},
	}

	cmd.Flags().IntVar(&typeCount, "type-count", report.DefaultTypeCount, "Only list keys observed with at least this many distinct non-object kinds")
	return cmd
}

func (a *app) queryCmd() *cobra.Command {
	var (
		jqExpr   string
		maxFiles int
	)

	cmd := &cobra.Command{
		Use:   "query <QUERY>...",
		Short: "Print the aggregated statistics of one key-path, e.g. .a.\"b.c\".d",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, queries []string) error {
			qc, err := cache.NewQueryCache(max(1, a.cfg.QueryCacheMaxItems))
			if err != nil {
				return fmt.Errorf("failed to create query cache: %w", err)
			}

			// Reject malformed queries before paying for the scan.
			for _, q := range queries {
				if _, err := qc.Parse(q); err != nil {
					return fmt.Errorf("failed to parse query: %w", err)
				}
			}

			var filter *report.Filter
			if jqExpr != "" {
				if filter, err = report.CompileFilter(jqExpr); err != nil {
					return err
				}
			}

			opts := report.EncodeOptions{MaxFiles: a.cfg.QueryMaxFiles}
			if cmd.Flags().Changed("max-files") {
				opts.MaxFiles = maxFiles
			}

			c, res, err := a.scan(cmd)
			if err != nil {
				return err
			}

			nodes, err := report.NewResolver(res.Tree, qc).ResolveAll(queries)
			if err != nil {
				return err
			}

			if filter == nil {
				return report.WriteNodes(a.stdout, nodes, c, opts)
			}

			var values []any
			for _, node := range nodes {
				out, err := filter.Apply(node, c, opts)
				if err != nil {
					return err
				}
				values = append(values, out...)
			}
			return report.WriteValues(a.stdout, values)
		},
	}

	cmd.Flags().StringVar(&jqExpr, "jq", "", "jq expression applied to each resolved node")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "Trim each document list to N entries (default $QUERY_MAX_FILES, 0 = all)")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the scanned corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, res, err := a.scan(cmd)
			if err != nil {
				return err
			}
			return report.WriteSummary(a.stdout, report.Summarize(res.Tree, res.Documents, res.Skipped))
		},
	}
}
