package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-ifmerge/internal/config"
	"github.com/alnah/go-ifmerge/internal/watcher"
)

// runWatch handles the watch command: merge once, then again whenever the
// fragment or the existing file changes, until interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 3 {
		printWatchUsage(env.Stderr)
		return fmt.Errorf("%w: watch takes 3 arguments (existing, fragment, output), got %d", ErrUsage, len(positional))
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	defer func() { _ = logger.Sync() }()

	cfg, _, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.strict {
		cfg.Strict = true
	}
	if flags.debounce != "" {
		cfg.Watch.Debounce = flags.debounce
	}
	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil {
		return err
	}

	merger, err := newMerger(cfg, logger)
	if err != nil {
		return err
	}
	opts, err := newWriteOptions(cfg, writeFlags{backup: flags.backup})
	if err != nil {
		return err
	}

	job := config.Job{Existing: positional[0], Fragment: positional[1], Output: positional[2]}
	mergeOnce := func() {
		out := mergeFile(merger, job, opts, env.Now)
		printOutcome(env, out, flags.common, writeFlags{})
	}

	// Our own write to an in-place target fires an event too; the second
	// pass finds the output up to date and writes nothing.
	w, err := watcher.New([]string{job.Fragment, job.Existing},
		func(context.Context, []string) { mergeOnce() },
		watcher.WithDebounce(debounce),
		watcher.WithLogger(logger))
	if err != nil {
		return err
	}

	mergeOnce()
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s and %s (Ctrl+C to stop)\n", job.Fragment, job.Existing)
	}

	err = w.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Stopped at %s\n", env.Now().Format(time.TimeOnly))
		}
		return nil
	}
	return err
}
