// Package runner drives the fixed checklist of finance API checks.
//
// Groups run in a fixed order: transactions, categories, budgets, analytics.
// Steps inside a group run sequentially and the first failing step ends the
// group. With fail-fast enabled the first failing group also ends the run.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leca/finance-conformance/internal/client"
	"github.com/leca/finance-conformance/internal/config"
)

// Check group names.
const (
	GroupTransactions = "transactions"
	GroupCategories   = "categories"
	GroupBudgets      = "budgets"
	GroupAnalytics    = "analytics"
)

// Runner executes check groups against one backend.
type Runner struct {
	client   *client.Client
	logger   *slog.Logger
	failFast bool

	now   func() time.Time
	newID func() string
}

// Option customises a Runner.
type Option func(*Runner)

// WithClock replaces the clock used for transaction dates and budget months.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithIDGenerator replaces the source of never-issued ids used by the 404 checks.
func WithIDGenerator(newID func() string) Option {
	return func(r *Runner) { r.newID = newID }
}

// New creates a Runner that sends requests through c.
func New(c *client.Client, cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		client:   c,
		logger:   logger,
		failFast: cfg.FailFast,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type check struct {
	name string
	run  func(context.Context) GroupResult
}

func (r *Runner) checks() []check {
	return []check{
		{GroupTransactions, r.CheckTransactions},
		{GroupCategories, r.CheckCategories},
		{GroupBudgets, r.CheckBudgets},
		{GroupAnalytics, r.CheckAnalytics},
	}
}

// RunAll runs every check group in order and reports overall success.
func (r *Runner) RunAll(ctx context.Context) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		APIURL:    r.client.APIURL(),
		FailFast:  r.failFast,
		StartedAt: r.now(),
		Passed:    true,
	}
	start := time.Now()

	r.logger.Info("starting backend API checks", "run_id", report.RunID, "api", report.APIURL)

	for _, c := range r.checks() {
		if err := ctx.Err(); err != nil {
			r.logger.Error("run cancelled", "before", c.name, "error", err)
			report.err = fmt.Errorf("run cancelled before %s: %w", c.name, err)
			report.Passed = false
			break
		}

		res := c.run(ctx)
		report.Groups = append(report.Groups, res)
		if res.Passed {
			continue
		}
		report.Passed = false
		if r.failFast {
			break
		}
	}
	report.Duration = time.Since(start)

	if report.Passed {
		r.logger.Info("all checks completed successfully", "run_id", report.RunID, "duration", report.Duration)
	} else {
		r.logger.Error("checks failed", "run_id", report.RunID, "duration", report.Duration)
	}
	return report
}

// step is one request/assert unit inside a group.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// group records step results and cleanup actions for one check group.
type group struct {
	r        *Runner
	result   GroupResult
	cleanups []func(context.Context)
}

func (r *Runner) newGroup(name string) *group {
	return &group{r: r, result: GroupResult{Name: name, Passed: true}}
}

// onCleanup registers fn to run when the group ends, pass or fail.
func (g *group) onCleanup(fn func(context.Context)) {
	g.cleanups = append(g.cleanups, fn)
}

// run executes steps in order, stopping at the first error.
func (g *group) run(ctx context.Context, steps ...step) GroupResult {
	log := g.r.logger.With("group", g.result.Name)
	log.Info("group started")

	for _, s := range steps {
		log.Info("step started", "step", s.name)
		start := time.Now()
		err := s.run(ctx)
		res := StepResult{Name: s.name, Passed: err == nil, Duration: time.Since(start)}
		if err != nil {
			err = fmt.Errorf("%s: %s: %w", g.result.Name, s.name, err)
			res.err = err
			res.Error = err.Error()
			res.Kind = kindOf(err)
			if res.Kind == KindAssertion {
				log.Error("test failed", "step", s.name, "error", err)
			} else {
				log.Error("unexpected error", "step", s.name, "error", err)
			}
		}
		g.result.Steps = append(g.result.Steps, res)
		if err != nil {
			g.result.Passed = false
			break
		}
	}

	// Cleanups run even if ctx is done so created resources are not leaked.
	cleanupCtx := context.WithoutCancel(ctx)
	for i := len(g.cleanups) - 1; i >= 0; i-- {
		g.cleanups[i](cleanupCtx)
	}

	if g.result.Passed {
		log.Info("group completed successfully")
	}
	return g.result
}
