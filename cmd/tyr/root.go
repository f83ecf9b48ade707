package main

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vegasq/tyr/internal/config"
	"github.com/vegasq/tyr/internal/logging"
	"github.com/vegasq/tyr/loader"
	"github.com/vegasq/tyr/query"
	"github.com/vegasq/tyr/source"
)

type configKey struct{}

type loggerKey struct{}

// NewRootCommand creates the tyr command tree.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tyr",
		Short: "Run SQL SELECT statements over CSV and Parquet sources",
		Long: `tyr evaluates a single SQL SELECT against a local file or an http(s) URL
and writes the result as CSV.

  tyr query "SELECT name FROM ./people.csv WHERE age >= 25 ORDER BY age DESC LIMIT 2"

Sources may be CSV, TSV or Parquet, optionally gzip, zstd, lz4 or brotli
compressed.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			if cfg.File != "" {
				logger.Debug("loaded config file", "path", cfg.File)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./tyr.yaml)")
	flags.String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	flags.String("log-format", config.DefaultLogFormat, "Log format (text|json)")
	flags.Int("workers", 0, "Evaluation goroutines (0 = number of CPUs)")
	flags.Duration("http-timeout", config.DefaultHTTPTimeout, "Timeout for fetching http(s) sources (0 = none)")
	flags.Int("infer-rows", config.DefaultInferRows, "CSV rows sampled for column types (-1 = all)")
	flags.String("delimiter", "", "CSV delimiter (default: detect among , ; tab |)")
	flags.String("max-source-bytes", config.DefaultMaxSource, "Largest accepted source, e.g. 512MB (0 = no limit)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewQueryCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewSchemaCommand())
	rootCmd.AddCommand(NewVersionCommand(Version))

	return rootCmd
}

// getConfig retrieves the config stored by the root command.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		LogLevel:       config.DefaultLogLevel,
		LogFormat:      config.DefaultLogFormat,
		HTTPTimeout:    config.DefaultHTTPTimeout,
		InferRows:      config.DefaultInferRows,
		MaxSourceBytes: config.DefaultMaxSource,
	}
}

// getLogger retrieves the logger stored by the root command.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// newSources builds the retriever and loader described by cfg.
func newSources(cfg *config.Config) (*source.Router, *loader.Auto, error) {
	limit, err := cfg.SourceLimit()
	if err != nil {
		return nil, nil, err
	}
	delim, err := cfg.DelimiterRune()
	if err != nil {
		return nil, nil, err
	}

	router := source.NewRouter(
		source.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		source.WithMaxBytes(limit),
	)
	ld := loader.NewAuto(
		loader.WithInferRows(cfg.InferRows),
		loader.WithDelimiter(delim),
		loader.WithMaxBytes(limit),
	)
	return router, ld, nil
}

// newExecutor builds a query executor from the command's config.
func newExecutor(ctx context.Context) (*query.Executor, error) {
	cfg := getConfig(ctx)
	retriever, ld, err := newSources(cfg)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return query.NewExecutor(
		query.WithRetriever(retriever),
		query.WithLoader(ld),
		query.WithLogger(getLogger(ctx)),
		query.WithWorkers(workers),
	)
}
