package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sqlesc/internal/config"
	"github.com/roach88/sqlesc/internal/store"
	"github.com/roach88/sqlesc/internal/testutil"
)

// Harness executes scenario steps against one store.
type Harness struct {
	store   *store.Store
	dialect config.Dialect
	clock   *testutil.DeterministicClock
	logger  *slog.Logger
}

type runConfig struct {
	logger  *slog.Logger
	dialect *config.Dialect
}

// Option configures Run.
type Option func(*runConfig)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// WithDialect overrides the scenario's dialect.
func WithDialect(d config.Dialect) Option {
	return func(c *runConfig) {
		c.dialect = &d
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. Step failures and
// expectation mismatches are reported in the Result; the returned error is
// only for problems running the scenario at all (bad dialect, store setup).
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	dialect, err := resolveDialect(scenario, cfg.dialect)
	if err != nil {
		return nil, err
	}

	clock := testutil.NewDeterministicClock()
	st, err := store.Open(store.MemoryPath,
		store.WithClock(clock),
		store.WithEncoding(dialect.WideEncoding),
		store.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:   st,
		dialect: dialect,
		clock:   clock,
		logger:  cfg.logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.runStep(ctx, i, step, result)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

func resolveDialect(scenario *Scenario, override *config.Dialect) (config.Dialect, error) {
	if override != nil {
		if err := override.Validate(); err != nil {
			return config.Dialect{}, fmt.Errorf("invalid dialect: %w", err)
		}
		return *override, nil
	}
	if scenario.Dialect == "" {
		return config.Default(), nil
	}
	d, err := config.LoadDialect(scenario.Dialect)
	if err != nil {
		return config.Dialect{}, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return d, nil
}

// runStep executes one step, records its trace event and checks its
// expect clause.
func (h *Harness) runStep(ctx context.Context, index int, step Step, result *Result) {
	out, err := h.execute(ctx, step)

	ev := TraceEvent{
		Step:    index,
		Op:      step.Op,
		Input:   out.input,
		Results: out.results,
		Seq:     h.clock.Current(),
	}
	if err != nil {
		ev.Error = ErrorCode(err)
	}
	result.AddTrace(ev)

	for _, failure := range checkExpect(index, step, out.results, err) {
		result.AddError(failure.Error())
	}

	h.logger.Debug("step completed",
		"step", index,
		"op", step.Op,
		"input", out.input,
		"results", len(out.results),
		"error", ev.Error,
	)
}
