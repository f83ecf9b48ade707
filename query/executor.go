package query

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/vegasq/tyr/loader"
	"github.com/vegasq/tyr/source"
	"github.com/vegasq/tyr/sqlparse"
)

// Executor runs SELECT statements against tabular sources. An Executor
// holds no per-query state and is safe for concurrent use.
type Executor struct {
	dialect   sqlparse.Dialect
	parser    *sqlparse.Parser
	retriever source.Retriever
	loader    loader.Loader
	logger    *slog.Logger
	workers   int
}

// Option configures an Executor.
type Option func(*Executor)

// WithDialect sets the SQL dialect. The default is sqlparse.PathDialect.
func WithDialect(d sqlparse.Dialect) Option {
	return func(e *Executor) { e.dialect = d }
}

// WithRetriever sets how sources are fetched. The default is a
// source.Router over the local filesystem and HTTP.
func WithRetriever(r source.Retriever) Option {
	return func(e *Executor) { e.retriever = r }
}

// WithLoader sets how retrieved content becomes a table.
func WithLoader(l loader.Loader) Option {
	return func(e *Executor) { e.loader = l }
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithWorkers sets how many goroutines evaluate each query.
func WithWorkers(n int) Option {
	return func(e *Executor) { e.workers = n }
}

// NewExecutor returns an executor with the given options applied over the
// defaults.
func NewExecutor(opts ...Option) (*Executor, error) {
	e := &Executor{
		dialect:   sqlparse.PathDialect{},
		retriever: source.NewRouter(),
		loader:    loader.NewAuto(),
		logger:    slog.New(slog.DiscardHandler),
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}

	parser, err := sqlparse.NewParser(e.dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	e.parser = parser
	return e, nil
}

var defaultExecutor = sync.OnceValues(func() (*Executor, error) {
	return NewExecutor()
})

// Execute runs sql with the default executor.
func Execute(ctx context.Context, sql string) (*Dataset, error) {
	e, err := defaultExecutor()
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, sql)
}

// Prepare parses and translates sql without touching its source.
func (e *Executor) Prepare(sql string) (*Descriptor, error) {
	stmts, err := e.parser.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(stmts) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrMultiStatement, len(stmts))
	}
	return Translate(stmts[0])
}

// Execute parses sql, fetches and loads its source and evaluates the
// pipeline. Either the complete result or an error is returned.
func (e *Executor) Execute(ctx context.Context, sql string) (*Dataset, error) {
	start := time.Now()
	logger := e.logger.With("query_id", uuid.NewString())

	ds, err := e.execute(ctx, logger, sql)
	if err != nil {
		logger.Debug("query failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	logger.Info("query executed", "rows", ds.Height(), "columns", ds.Width(), "elapsed", time.Since(start))
	return ds, nil
}

func (e *Executor) execute(ctx context.Context, logger *slog.Logger, sql string) (*Dataset, error) {
	d, err := e.Prepare(sql)
	if err != nil {
		return nil, err
	}
	plan := BuildPlan(d)
	logger.Debug("query planned", "source", d.Source(), "steps", len(plan.Steps()))

	content, err := e.retriever.Retrieve(ctx, d.Source())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	logger.Debug("source retrieved",
		"source", content.Source,
		"bytes", humanize.Bytes(uint64(content.Size())),
		"media_type", content.MediaType,
	)

	t, err := e.loader.Load(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, d.Source(), err)
	}
	logger.Debug("source loaded", "source", d.Source(), "rows", t.Height(), "columns", t.Width())

	out, err := plan.Apply(t.Lazy().WithWorkers(e.workers)).Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	return &Dataset{Table: out}, nil
}
