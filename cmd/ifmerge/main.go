package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-ifmerge"
	"github.com/alnah/go-ifmerge/internal/config"
	"github.com/alnah/go-ifmerge/internal/fileutil"
	"github.com/alnah/go-ifmerge/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

// command runs one subcommand with the arguments after its name.
type command func(ctx context.Context, args []string, env *Environment) error

// commands maps subcommand names to their handlers.
var commands = map[string]command{
	"merge":  runMerge,
	"batch":  runBatch,
	"watch":  runWatch,
	"doctor": runDoctor,
	"config": runConfig,
	"completion": func(_ context.Context, args []string, env *Environment) error {
		return runCompletion(args, env)
	},
	"help": func(_ context.Context, args []string, env *Environment) error {
		return runHelp(args, env)
	},
	"version": func(_ context.Context, _ []string, env *Environment) error {
		fmt.Fprintf(env.Stdout, "ifmerge %s\n", Version)
		return nil
	},
}

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if isVerbose(os.Args) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches args (program name included) and returns the exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	name := args[1]
	switch name {
	case "-h", "--help":
		name = "help"
	case "-V", "--version":
		name = "version"
	}

	run, ok := commands[name]
	if !ok {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", name)
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, args[2:], env)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, flag.ErrHelp):
		return ExitSuccess
	case errors.Is(err, errDoctorFailed), errors.Is(err, ErrBatchFailed):
		// Already reported line by line.
		return exitCodeFor(err)
	case errors.Is(err, ErrChangesPending):
		if !slices.ContainsFunc(args[2:], isQuietFlag) {
			fmt.Fprintf(env.Stderr, "%v%s\n", err, hints.ForChangesPending())
		}
		return ExitPending
	}

	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

// hintFor picks the hint matching err, "" when none applies.
func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("ifmerge"))
	case errors.Is(err, config.ErrDuplicateOutput):
		return hints.ForDuplicateOutput()
	case errors.Is(err, config.ErrChainedJobs):
		return hints.ForChainedJobs()
	case errors.Is(err, ifmerge.ErrMalformedBlock):
		return hints.ForMalformedBlock()
	case errors.Is(err, fileutil.ErrNotText):
		return hints.ForNotText()
	case errors.Is(err, os.ErrPermission):
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return hints.ForPermission(pathErr.Path)
		}
		return hints.ForPermission("")
	}
	return ""
}

// usageError marks a flag parsing error as a usage error.
// flag.ErrHelp passes through so -h exits 0.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// isVerbose reports whether -v or --verbose appears before "--".
func isVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

func isQuietFlag(a string) bool {
	return a == "-q" || a == "--quiet"
}
