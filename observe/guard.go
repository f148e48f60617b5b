package observe

import (
	"context"
	"fmt"
)

// Guard runs instrumentation steps on a best-effort basis. A failing or
// panicking step is logged and counted, never propagated to the caller.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Do never returns an error and never panics.
// - Ownership: a nil *Guard still runs steps and swallows their failures.
type Guard struct {
	logger  Logger
	metrics Metrics
}

// NewGuard creates a Guard reporting to logger and metrics. Nil arguments
// fall back to no-op implementations.
func NewGuard(logger Logger, metrics Metrics) *Guard {
	if logger == nil {
		logger = NopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Guard{logger: logger, metrics: metrics}
}

// Do runs fn. An error or panic from fn is reported under op and swallowed.
func (g *Guard) Do(ctx context.Context, op string, fn func() error) {
	if fn == nil {
		return
	}
	if err := g.run(fn); err != nil {
		g.report(ctx, op, err)
	}
}

// Run is Do for steps that cannot fail except by panicking.
func (g *Guard) Run(ctx context.Context, op string, fn func()) {
	if fn == nil {
		return
	}
	g.Do(ctx, op, func() error {
		fn()
		return nil
	})
}

func (g *Guard) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (g *Guard) report(ctx context.Context, op string, err error) {
	if g == nil {
		return
	}
	// Reporting itself must not escape either.
	defer func() { _ = recover() }()

	g.logger.Warn(ctx, "instrumentation step failed",
		Field{Key: "instrumentation.op", Value: op},
		Field{Key: "error", Value: err},
	)
	g.metrics.RecordFailure(ctx, op, err)
}
