package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-ifmerge/internal/config"
)

// ErrBatchFailed is returned when at least one batch job fails.
var ErrBatchFailed = errors.New("batch failed")

// runBatch handles the batch command: ifmerge batch -c <manifest>.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		printBatchUsage(env.Stderr)
		return fmt.Errorf("%w: batch takes no arguments, jobs come from the config", ErrUsage)
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	defer func() { _ = logger.Sync() }()

	cfg, source, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if source == "" {
		return fmt.Errorf("%w: batch needs a config with jobs (-c or IFMERGE_CONFIG)", ErrUsage)
	}
	if len(cfg.Jobs) == 0 {
		return fmt.Errorf("%w: %s defines no jobs", ErrUsage, source)
	}
	if flags.write.strict {
		cfg.Strict = true
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}

	merger, err := newMerger(cfg, logger)
	if err != nil {
		return err
	}
	opts, err := newWriteOptions(cfg, flags.write)
	if err != nil {
		return err
	}

	workers := resolvePoolSize(cfg.Workers)
	logger.Debug("starting batch", zap.Int("jobs", len(cfg.Jobs)), zap.Int("workers", workers))

	outcomes := mergeBatch(ctx, merger, cfg.Jobs, opts, workers, env)
	return summarizeBatch(env, outcomes, flags.common, flags.write)
}

// mergeBatch runs every job with at most workers in flight. Jobs never fail
// the group: each outcome carries its own error, so one broken host does not
// stop the others. Jobs not started before ctx is cancelled report ctx.Err().
func mergeBatch(ctx context.Context, m Merger, jobs []config.Job, opts writeOptions, workers int, env *Environment) []MergeOutcome {
	if len(jobs) == 0 {
		return nil
	}

	outcomes := make([]MergeOutcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(min(workers, len(jobs)))

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = MergeOutcome{Job: job, Err: err}
				return nil
			}
			outcomes[i] = mergeFile(m, job, opts, env.Now)
			return nil
		})
	}

	_ = g.Wait() // goroutines never return errors
	return outcomes
}

// BatchSummary holds the count of outcomes per state.
type BatchSummary struct {
	Updated   int
	Unchanged int
	Pending   int // check mode only
	Failed    int
}

// countOutcomes tallies batch outcomes.
func countOutcomes(outcomes []MergeOutcome) BatchSummary {
	var s BatchSummary
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
		case o.Written:
			s.Updated++
		case o.Pending:
			s.Pending++
		default:
			s.Unchanged++
		}
	}
	return s
}

// summarizeBatch prints every outcome and the totals, and turns them into
// the command error.
func summarizeBatch(env *Environment, outcomes []MergeOutcome, common commonFlags, write writeFlags) error {
	for _, o := range outcomes {
		printOutcome(env, o, common, write)
	}

	s := countOutcomes(outcomes)
	if !common.quiet && len(outcomes) > 1 {
		if write.check {
			fmt.Fprintf(env.Stdout, "\n%d pending, %d unchanged, %d failed\n", s.Pending, s.Unchanged, s.Failed)
		} else {
			fmt.Fprintf(env.Stdout, "\n%d updated, %d unchanged, %d failed\n", s.Updated, s.Unchanged, s.Failed)
		}
	}

	if s.Failed > 0 {
		var first error
		for _, o := range outcomes {
			if o.Err != nil {
				first = o.Err
				break
			}
		}
		return fmt.Errorf("%w: %d of %d job(s) failed, first: %w", ErrBatchFailed, s.Failed, len(outcomes), first)
	}
	if write.check && s.Pending > 0 {
		return fmt.Errorf("%w: %d of %d file(s) would change", ErrChangesPending, s.Pending, len(outcomes))
	}
	return nil
}

// validateWorkers checks the --workers flag range.
func validateWorkers(n int) error {
	if n < 0 || n > config.MaxWorkers {
		return fmt.Errorf("%w: --workers must be between 0 and %d, got %d", ErrUsage, config.MaxWorkers, n)
	}
	return nil
}

// resolvePoolSize determines the number of concurrent merges.
// Priority: explicit value > GOMAXPROCS-based calculation.
func resolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// Merges are I/O bound and cheap; GOMAXPROCS is set by automaxprocs
	// for containers.
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
