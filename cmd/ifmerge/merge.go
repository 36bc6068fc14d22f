package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-ifmerge"
	"github.com/alnah/go-ifmerge/internal/config"
	"github.com/alnah/go-ifmerge/internal/diffutil"
	"github.com/alnah/go-ifmerge/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("usage error")
	ErrReadExisting   = errors.New("failed to read existing file")
	ErrReadFragment   = errors.New("failed to read fragment")
	ErrWriteOutput    = errors.New("failed to write output")
	ErrChangesPending = errors.New("changes pending")
)

// Merger is the interface for the merge service.
type Merger interface {
	Merge(existing, fragment string) (*ifmerge.Result, error)
}

// Compile-time interface implementation check.
var _ Merger = (*ifmerge.Merger)(nil)

// writeOptions controls how a merge result reaches the disk.
type writeOptions struct {
	check  bool        // compute only, never write
	diff   bool        // keep a unified diff in the outcome
	backup bool        // copy the previous output to <output>.bak first
	mode   os.FileMode // permissions for newly created outputs
}

// MergeOutcome holds the result of merging one job.
type MergeOutcome struct {
	Job      config.Job
	Result   *ifmerge.Result
	Pending  bool   // output differs from what is on disk
	Written  bool   // output file was replaced
	Backup   string // backup path, "" when none was made
	Diff     string // unified diff, when requested
	Err      error
	Duration time.Duration
}

// runMerge handles the merge command: ifmerge merge <existing> <fragment> <output>.
func runMerge(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseMergeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 3 {
		printMergeUsage(env.Stderr)
		return fmt.Errorf("%w: merge takes 3 arguments (existing, fragment, output), got %d", ErrUsage, len(positional))
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	defer func() { _ = logger.Sync() }()

	cfg, _, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.write.strict {
		cfg.Strict = true
	}
	if flags.write.backup {
		cfg.Output.Backup = true
	}

	merger, err := newMerger(cfg, logger)
	if err != nil {
		return err
	}
	opts, err := newWriteOptions(cfg, flags.write)
	if err != nil {
		return err
	}

	job := config.Job{Existing: positional[0], Fragment: positional[1], Output: positional[2]}
	if err := ctx.Err(); err != nil {
		return err
	}
	out := mergeFile(merger, job, opts, env.Now)

	if out.Err != nil {
		return out.Err
	}
	printOutcome(env, out, flags.common, flags.write)
	if flags.write.check && out.Pending {
		return fmt.Errorf("%w: %s", ErrChangesPending, job.Target())
	}
	return nil
}

// loadConfig resolves the config file (flag, then IFMERGE_CONFIG) and
// overlays the environment. It returns the config and its source path,
// "" when defaults are used.
func loadConfig(flagConfig string, env *Environment) (*config.Config, string, error) {
	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	name := flagConfig
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	source := ""
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		source = name
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, source, nil
}

// newMerger builds the library merger from the resolved config.
func newMerger(cfg *config.Config, logger *zap.Logger) (*ifmerge.Merger, error) {
	m, err := ifmerge.New(
		ifmerge.WithMarkers(cfg.Markers.Begin, cfg.Markers.End),
		ifmerge.WithAnchor(cfg.Anchor.Pattern),
		ifmerge.WithOrphanTypes(cfg.Orphans.Types...),
		ifmerge.WithStrict(cfg.Strict),
		ifmerge.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return m, nil
}

// newWriteOptions combines config and flags into write options.
func newWriteOptions(cfg *config.Config, f writeFlags) (writeOptions, error) {
	mode, err := cfg.Output.FileMode()
	if err != nil {
		return writeOptions{}, err
	}
	return writeOptions{
		check:  f.check,
		diff:   f.diff,
		backup: cfg.Output.Backup || f.backup,
		mode:   mode,
	}, nil
}

// mergeFile reads the job inputs, merges them and writes the output
// atomically. An output that already holds the merged text is left alone,
// so re-running on an up-to-date file touches nothing.
func mergeFile(m Merger, job config.Job, opts writeOptions, now func() time.Time) MergeOutcome {
	start := now()
	out := MergeOutcome{Job: job}
	finish := func(err error) MergeOutcome {
		out.Err = err
		out.Duration = now().Sub(start)
		return out
	}

	existing, err := fileutil.ReadText(job.Existing)
	if err != nil {
		return finish(fmt.Errorf("%w: %w", ErrReadExisting, err))
	}
	fragment, err := fileutil.ReadText(job.Fragment)
	if err != nil {
		return finish(fmt.Errorf("%w: %w", ErrReadFragment, err))
	}

	res, err := m.Merge(existing, fragment)
	if err != nil {
		return finish(fmt.Errorf("%s: %w", job.Existing, err))
	}
	out.Result = res

	target := job.Target()
	current, perm, err := readCurrent(target, existing, job, opts.mode)
	if err != nil {
		return finish(fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}
	out.Pending = current != res.Text

	if opts.diff && out.Pending {
		diff, err := diffutil.Unified(current, res.Text, target, target+" (merged)")
		if err != nil {
			return finish(err)
		}
		out.Diff = diff
	}

	if opts.check || !out.Pending {
		return finish(nil)
	}

	if opts.backup {
		backup, err := fileutil.Backup(target)
		if err != nil {
			return finish(fmt.Errorf("%w: %w", ErrWriteOutput, err))
		}
		out.Backup = backup
	}
	if err := fileutil.WriteFileAtomic(target, []byte(res.Text), perm); err != nil {
		return finish(fmt.Errorf("%w: %s: %w", ErrWriteOutput, target, err))
	}
	out.Written = true
	return finish(nil)
}

// readCurrent returns the content and permissions the output has now.
// An in-place job reuses the text already read; a missing output reads as
// empty with the configured mode.
func readCurrent(target, existing string, job config.Job, mode os.FileMode) (string, os.FileMode, error) {
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return "", mode, nil
	}
	if err != nil {
		return "", 0, err
	}

	if sameFile(target, job.Existing) {
		return existing, info.Mode().Perm(), nil
	}
	current, err := fileutil.ReadText(target)
	if err != nil {
		return "", 0, err
	}
	return current, info.Mode().Perm(), nil
}

// sameFile reports whether two paths name the same file.
func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ai, bi)
}

// printOutcome reports one merge on the environment writers.
func printOutcome(env *Environment, out MergeOutcome, common commonFlags, write writeFlags) {
	if out.Err != nil {
		fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", out.Job.Label(), out.Err)
		return
	}

	if out.Diff != "" {
		if err := diffutil.Write(env.Stdout, out.Diff, env.useColor(env.Stdout, write.noColor)); err != nil {
			fmt.Fprintf(env.Stderr, "warning: printing diff: %v\n", err)
		}
	}

	if common.quiet {
		return
	}

	var verb string
	switch {
	case !out.Pending:
		verb = "Unchanged"
	case out.Written:
		verb = "Updated"
	default:
		verb = "Would update"
	}

	line := fmt.Sprintf("%s %s (%s)", verb, out.Job.Target(), summarize(out.Result))
	if common.verbose {
		line += fmt.Sprintf(" in %v", out.Duration.Round(time.Microsecond))
	}
	fmt.Fprintln(env.Stdout, line)

	if out.Backup != "" && common.verbose {
		fmt.Fprintf(env.Stdout, "  backup: %s\n", out.Backup)
	}
}

// summarize describes what the merge did to the document.
func summarize(res *ifmerge.Result) string {
	if res == nil {
		return ""
	}
	parts := []string{
		plural(res.BlocksRemoved, "block replaced", "blocks replaced"),
		plural(res.OrphansDropped, "orphan dropped", "orphans dropped"),
	}
	if res.Anchored {
		parts = append(parts, "anchored")
	} else {
		parts = append(parts, "appended")
	}
	if n := len(res.Issues); n > 0 {
		parts = append(parts, plural(n, "marker repaired", "markers repaired"))
	}
	return strings.Join(parts, ", ")
}

// plural formats a count with the singular or plural noun.
func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
