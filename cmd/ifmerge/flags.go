package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// writeFlags holds flags for commands that write merged files.
type writeFlags struct {
	strict  bool
	check   bool
	diff    bool
	backup  bool
	noColor bool
}

// mergeFlags holds all flags for the merge command.
type mergeFlags struct {
	common commonFlags
	write  writeFlags
}

// batchFlags holds all flags for the batch command.
type batchFlags struct {
	common  commonFlags
	write   writeFlags
	workers int
}

// watchFlags holds all flags for the watch command.
type watchFlags struct {
	common   commonFlags
	strict   bool
	backup   bool
	debounce string
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug traces and timing")
}

// addWriteFlags adds output control flags to a FlagSet.
func addWriteFlags(fs *flag.FlagSet, f *writeFlags) {
	fs.BoolVar(&f.strict, "strict", false, "fail on stray, nested or unterminated markers")
	fs.BoolVar(&f.check, "check", false, "write nothing, exit 5 if a file would change")
	fs.BoolVar(&f.diff, "diff", false, "print a unified diff of the change")
	fs.BoolVar(&f.backup, "backup", false, "keep the previous content as <output>.bak")
	fs.BoolVar(&f.noColor, "no-color", false, "disable diff highlighting")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage with the given function.
func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// buildMergeFlagSet registers merge flags into f.
func buildMergeFlagSet(f *mergeFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("merge", printMergeUsage, stderr)
	addCommonFlags(fs, &f.common)
	addWriteFlags(fs, &f.write)
	return fs
}

// buildBatchFlagSet registers batch flags into f.
func buildBatchFlagSet(f *batchFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("batch", printBatchUsage, stderr)
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addCommonFlags(fs, &f.common)
	addWriteFlags(fs, &f.write)
	return fs
}

// buildWatchFlagSet registers watch flags into f.
func buildWatchFlagSet(f *watchFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("watch", printWatchUsage, stderr)
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.strict, "strict", false, "fail on stray, nested or unterminated markers")
	fs.BoolVar(&f.backup, "backup", false, "keep the previous content as <output>.bak")
	fs.StringVar(&f.debounce, "debounce", "", "quiet period before re-merging (e.g. 500ms)")
	return fs
}

// buildDoctorFlagSet registers doctor flags into f.
func buildDoctorFlagSet(f *doctorFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("doctor", printDoctorUsage, stderr)
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	return fs
}

// buildConfigFlagSet registers config command flags into f.
func buildConfigFlagSet(f *commonFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("config", printConfigUsage, stderr)
	addCommonFlags(fs, f)
	return fs
}

// parseMergeFlags parses merge command flags and returns positional args.
func parseMergeFlags(args []string, stderr io.Writer) (*mergeFlags, []string, error) {
	f := &mergeFlags{}
	fs := buildMergeFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseBatchFlags parses batch command flags and returns positional args.
func parseBatchFlags(args []string, stderr io.Writer) (*batchFlags, []string, error) {
	f := &batchFlags{}
	fs := buildBatchFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string, stderr io.Writer) (*watchFlags, []string, error) {
	f := &watchFlags{}
	fs := buildWatchFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags and returns positional args.
func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, []string, error) {
	f := &doctorFlags{}
	fs := buildDoctorFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses config command flags and returns positional args.
func parseConfigFlags(args []string, stderr io.Writer) (*commonFlags, []string, error) {
	f := &commonFlags{}
	fs := buildConfigFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}
