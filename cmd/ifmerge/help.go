package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ifmerge <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keep one managed block of OVS stanzas in an interfaces(5) file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  merge       Merge a fragment into an interfaces file")
	fmt.Fprintln(w, "  batch       Run every merge job of a config file")
	fmt.Fprintln(w, "  watch       Merge again whenever the inputs change")
	fmt.Fprintln(w, "  doctor      Inspect an interfaces file and the setup")
	fmt.Fprintln(w, "  config      Print the effective configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'ifmerge help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags every command accepts.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug traces and timing")
}

// printWriteFlags prints the flags of commands that write merged files.
func printWriteFlags(w io.Writer) {
	fmt.Fprintln(w, "      --strict              Fail on stray, nested or unterminated markers")
	fmt.Fprintln(w, "      --check               Write nothing, exit 5 if a file would change")
	fmt.Fprintln(w, "      --diff                Print a unified diff of the change")
	fmt.Fprintln(w, "      --backup              Keep the previous content as <output>.bak")
	fmt.Fprintln(w, "      --no-color            Disable diff highlighting (NO_COLOR works too)")
}

// printEnvVars prints the recognized environment variables.
func printEnvVars(w io.Writer) {
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  IFMERGE_CONFIG            Config file name or path (--config wins)")
	fmt.Fprintln(w, "  IFMERGE_STRICT            true/false, overrides the config file")
	fmt.Fprintln(w, "  IFMERGE_WORKERS           Batch workers, overrides the config file")
}

// printMergeUsage prints usage for the merge command.
func printMergeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ifmerge merge <existing> <fragment> <output> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Remove every managed block and orphan OVS stanza from <existing>,")
	fmt.Fprintln(w, "wrap <fragment> in markers, insert it after the anchor line and")
	fmt.Fprintln(w, "write the result to <output>. <output> may be <existing>.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  existing    Current interfaces file")
	fmt.Fprintln(w, "  fragment    Stanzas to manage")
	fmt.Fprintln(w, "  output      Destination, written atomically")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonFlags(w)
	printWriteFlags(w)
	fmt.Fprintln(w)
	printEnvVars(w)
}

// printBatchUsage prints usage for the batch command.
func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ifmerge batch -c <config> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run every job listed under 'jobs:' in the config, in parallel.")
	fmt.Fprintln(w, "A failing job does not stop the others.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonFlags(w)
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	printWriteFlags(w)
	fmt.Fprintln(w)
	printEnvVars(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ifmerge watch <existing> <fragment> <output> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Merge once, then again each time <existing> or <fragment> changes.")
	fmt.Fprintln(w, "Stops on Ctrl+C or SIGTERM.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonFlags(w)
	fmt.Fprintln(w, "      --strict              Fail on stray, nested or unterminated markers")
	fmt.Fprintln(w, "      --backup              Keep the previous content as <output>.bak")
	fmt.Fprintln(w, "      --debounce <d>        Quiet period before re-merging (default 500ms)")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ifmerge doctor [file] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Inspect [file] (default %s) without changing it:\n", defaultInterfacesPath)
	fmt.Fprintln(w, "managed blocks, orphan stanzas, anchor, malformed markers and")
	fmt.Fprintln(w, "write access.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonFlags(w)
	fmt.Fprintln(w, "      --json                Print the report as JSON")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ifmerge config [-c <name>]")
	fmt.Fprintln(w, "       ifmerge config paths [name]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML, or the locations")
	fmt.Fprintln(w, "searched for a config name.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonFlags(w)
	fmt.Fprintln(w)
	printEnvVars(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "merge":
		printMergeUsage(env.Stdout)
	case "batch":
		printBatchUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: ifmerge version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: ifmerge help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, args[0])
	}
	return nil
}
