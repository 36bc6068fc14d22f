package main

// Notes:
// - runMain: we test dispatch, exit codes and the error/hint line printed on
//   stderr, end to end on temp files. Tests don't set IFMERGE_* variables,
//   so they can run in parallel.
// - usageError/isVerbose/hintFor: we test the small helpers directly.
// We don't test main() itself: it only wires automaxprocs and os.Exit.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-ifmerge"
	"github.com/alnah/go-ifmerge/internal/config"
)

// ---------------------------------------------------------------------------
// TestVersion - Version variable
// ---------------------------------------------------------------------------

func TestVersion(t *testing.T) {
	t.Parallel()

	if Version == "" {
		t.Error("Version should not be empty")
	}

	env, stdout, _ := newTestEnv()
	if code := runMain([]string{"ifmerge", "version"}, env); code != ExitSuccess {
		t.Fatalf("runMain(version) = %d", code)
	}
	if got, want := stdout.String(), fmt.Sprintf("ifmerge %s\n", Version); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Main entry point dispatch
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{
			name:         "no args shows usage and exits with ExitUsage",
			args:         []string{"ifmerge"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"Usage: ifmerge"},
		},
		{
			name:         "help command exits 0",
			args:         []string{"ifmerge", "help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: ifmerge", "Commands:"},
		},
		{
			name:         "--help alias",
			args:         []string{"ifmerge", "--help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Commands:"},
		},
		{
			name:         "help merge shows merge help",
			args:         []string{"ifmerge", "help", "merge"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: ifmerge merge"},
		},
		{
			name:         "merge -h exits 0",
			args:         []string{"ifmerge", "merge", "-h"},
			wantCode:     ExitSuccess,
			wantInStderr: []string{"Usage: ifmerge merge"},
		},
		{
			name:         "unknown command exits with ExitUsage",
			args:         []string{"ifmerge", "unknown"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unknown command: unknown"},
		},
		{
			name:         "merge with missing arguments",
			args:         []string{"ifmerge", "merge", "interfaces"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"error: usage error", "got 1"},
		},
		{
			name:         "unknown flag",
			args:         []string{"ifmerge", "merge", "--bogus", "a", "b", "c"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unknown flag: --bogus"},
		},
		{
			name:         "batch without config",
			args:         []string{"ifmerge", "batch"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"needs a config"},
		},
		{
			name:         "unsupported shell",
			args:         []string{"ifmerge", "completion", "tcsh"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unsupported shell"},
		},
		{
			name:         "missing config file has hint",
			args:         []string{"ifmerge", "config", "-c", "no-such-config"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"error: loading config", "hint: use --config"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv()
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d\nstderr: %s", code, tt.wantCode, stderr.String())
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout.String())
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr should contain %q, got %q", want, stderr.String())
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Merge - End to end merge runs
// ---------------------------------------------------------------------------

func TestRunMain_Merge(t *testing.T) {
	t.Parallel()

	t.Run("in place then idempotent", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := writeTestFile(t, dir, "interfaces", sampleExisting)
		fragment := writeTestFile(t, dir, "bridges", sampleFragment)

		env, stdout, _ := newTestEnv()
		if code := runMain([]string{"ifmerge", "merge", existing, fragment, existing}, env); code != ExitSuccess {
			t.Fatalf("first run = %d", code)
		}
		if !strings.Contains(stdout.String(), "Updated "+existing) {
			t.Errorf("stdout = %q, want Updated", stdout.String())
		}
		if got := readTestFile(t, existing); got != sampleMerged {
			t.Errorf("content = %q, want %q", got, sampleMerged)
		}

		env, stdout, _ = newTestEnv()
		if code := runMain([]string{"ifmerge", "merge", existing, fragment, existing}, env); code != ExitSuccess {
			t.Fatalf("second run = %d", code)
		}
		if !strings.Contains(stdout.String(), "Unchanged "+existing) {
			t.Errorf("stdout = %q, want Unchanged", stdout.String())
		}
	})

	t.Run("check reports pending changes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := writeTestFile(t, dir, "interfaces", sampleExisting)
		fragment := writeTestFile(t, dir, "bridges", sampleFragment)

		env, stdout, stderr := newTestEnv()
		code := runMain([]string{"ifmerge", "merge", "--check", "--diff", existing, fragment, existing}, env)

		if code != ExitPending {
			t.Errorf("code = %d, want %d", code, ExitPending)
		}
		if !strings.Contains(stdout.String(), "+# BEGIN OVS BRIDGES") {
			t.Errorf("stdout = %q, want plain diff", stdout.String())
		}
		if strings.Contains(stdout.String(), "\x1b[") {
			t.Error("diff should not be colored when stdout is not a terminal")
		}
		if !strings.Contains(stderr.String(), "hint: run without --check") {
			t.Errorf("stderr = %q, want check hint", stderr.String())
		}
		if got := readTestFile(t, existing); got != sampleExisting {
			t.Errorf("check mode modified the file")
		}
	})

	t.Run("strict malformed exits usage with hint", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := writeTestFile(t, dir, "interfaces", malformedExisting)
		fragment := writeTestFile(t, dir, "bridges", sampleFragment)

		env, _, stderr := newTestEnv()
		code := runMain([]string{"ifmerge", "merge", "--strict", existing, fragment, existing}, env)

		if code != ExitUsage {
			t.Errorf("code = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(stderr.String(), "hint: fix the markers by hand") {
			t.Errorf("stderr = %q, want malformed hint", stderr.String())
		}
		if strings.Count(stderr.String(), "error:") != 1 {
			t.Errorf("error should be reported once, got %q", stderr.String())
		}
	})

	t.Run("lenient repair warns on stderr", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := writeTestFile(t, dir, "interfaces", malformedExisting)
		fragment := writeTestFile(t, dir, "bridges", sampleFragment)

		env, _, stderr := newTestEnv()
		if code := runMain([]string{"ifmerge", "merge", existing, fragment, existing}, env); code != ExitSuccess {
			t.Fatalf("code = %d, stderr: %s", code, stderr.String())
		}
		if !strings.Contains(stderr.String(), "repaired managed block markers") {
			t.Errorf("stderr = %q, want repair warning", stderr.String())
		}
	})

	t.Run("missing fragment exits IO", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := writeTestFile(t, dir, "interfaces", sampleExisting)

		env, _, stderr := newTestEnv()
		code := runMain([]string{"ifmerge", "merge", existing, filepath.Join(dir, "nope"), existing}, env)

		if code != ExitIO {
			t.Errorf("code = %d, want %d\nstderr: %s", code, ExitIO, stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunMain_Batch - Config driven batch runs
// ---------------------------------------------------------------------------

func TestRunMain_Batch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "host1", sampleExisting)
	writeTestFile(t, dir, "host2", sampleExisting)
	writeTestFile(t, dir, "bridges", sampleFragment)
	cfgPath := writeTestFile(t, dir, "hosts.yaml", `workers: 2
jobs:
  - name: host1
    existing: host1
    fragment: bridges
  - name: host2
    existing: host2
    fragment: bridges
    output: host2.new
`)

	env, stdout, stderr := newTestEnv()
	code := runMain([]string{"ifmerge", "batch", "-c", cfgPath}, env)

	if code != ExitSuccess {
		t.Fatalf("code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "2 updated, 0 unchanged, 0 failed") {
		t.Errorf("stdout = %q, want totals", stdout.String())
	}
	if got := readTestFile(t, filepath.Join(dir, "host1")); got != sampleMerged {
		t.Errorf("host1 = %q", got)
	}
	if got := readTestFile(t, filepath.Join(dir, "host2.new")); got != sampleMerged {
		t.Errorf("host2.new = %q", got)
	}

	env, _, _ = newTestEnv()
	if code := runMain([]string{"ifmerge", "batch", "--check", "-c", cfgPath}, env); code != ExitSuccess {
		t.Errorf("check after batch = %d, want %d", code, ExitSuccess)
	}
}

func TestRunMain_BatchFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "host1", sampleExisting)
	writeTestFile(t, dir, "bridges", sampleFragment)
	cfgPath := writeTestFile(t, dir, "hosts.yaml", `jobs:
  - existing: host1
    fragment: bridges
  - existing: missing
    fragment: bridges
`)

	env, _, stderr := newTestEnv()
	code := runMain([]string{"ifmerge", "batch", "-c", cfgPath}, env)

	if code != ExitIO {
		t.Errorf("code = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "FAILED") {
		t.Errorf("stderr = %q, want FAILED line", stderr.String())
	}
	if strings.Contains(stderr.String(), "error:") {
		t.Errorf("batch failures are reported per job only, got %q", stderr.String())
	}
	if got := readTestFile(t, filepath.Join(dir, "host1")); got != sampleMerged {
		t.Error("working job should still be merged")
	}
}

func TestRunMain_BatchChainedJobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "host1", sampleExisting)
	writeTestFile(t, dir, "bridges", sampleFragment)
	cfgPath := writeTestFile(t, dir, "hosts.yaml", `jobs:
  - existing: host1
    fragment: bridges
  - existing: host1
    fragment: bridges
    output: host1.new
`)

	env, _, stderr := newTestEnv()
	code := runMain([]string{"ifmerge", "batch", "-c", cfgPath}, env)

	if code != ExitUsage {
		t.Errorf("code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "second batch") {
		t.Errorf("stderr = %q, want chained jobs hint", stderr.String())
	}
	if got := readTestFile(t, filepath.Join(dir, "host1")); got != sampleExisting {
		t.Error("no job should run when the config is rejected")
	}
}

// ---------------------------------------------------------------------------
// TestUsageError - Flag errors become usage errors
// ---------------------------------------------------------------------------

func TestUsageError(t *testing.T) {
	t.Parallel()

	if err := usageError(flag.ErrHelp); !errors.Is(err, flag.ErrHelp) || errors.Is(err, ErrUsage) {
		t.Errorf("usageError(ErrHelp) = %v, want ErrHelp untouched", err)
	}
	if err := usageError(errors.New("bad flag")); !errors.Is(err, ErrUsage) {
		t.Errorf("usageError() = %v, want ErrUsage", err)
	}
}

func TestIsVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"ifmerge", "merge", "-v"}, true},
		{[]string{"ifmerge", "batch", "--verbose"}, true},
		{[]string{"ifmerge", "merge", "--", "-v"}, false},
		{[]string{"ifmerge", "merge", "a", "b", "c"}, false},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			if got := isVerbose(tt.args); got != tt.want {
				t.Errorf("isVerbose(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Hint selection
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config not found", fmt.Errorf("loading config: %w", config.ErrConfigNotFound), "--config"},
		{"duplicate output", config.ErrDuplicateOutput, "distinct output"},
		{"chained jobs", fmt.Errorf("loading config: %w", config.ErrChainedJobs), "second batch"},
		{"malformed", ifmerge.ErrMalformedBlock, "--strict"},
		{"permission", &os.PathError{Op: "open", Path: "/etc/network/interfaces", Err: os.ErrPermission}, "output path"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err)
			if tt.want == "" && got != "" {
				t.Errorf("hintFor() = %q, want none", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want it to mention %q", got, tt.want)
			}
		})
	}
}
