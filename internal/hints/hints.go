// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-ifmerge/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// IsRoot reports whether the process runs with root privileges.
// Always false on Windows, where Geteuid returns -1.
var IsRoot = func() bool {
	return os.Geteuid() == 0
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config dir.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Suggest the first user-level location, it survives cwd changes
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/ifmerge/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForPermission returns hints for permission errors on a target file.
// Interface files under /etc usually need root.
func ForPermission(path string) string {
	var hints []string

	if !IsRoot() && strings.HasPrefix(filepath.ToSlash(path), "/etc/") {
		hints = append(hints, "run as root (e.g. sudo)")
	}
	hints = append(hints, "or choose an output path you can write")

	if IsInContainer() {
		hints = append(hints, "in a container, bind-mount the host's /etc/network")
	}

	return formatHints(hints)
}

// ForMalformedBlock returns hints for strict mode marker errors.
func ForMalformedBlock() string {
	return format("fix the markers by hand, or drop --strict to let ifmerge repair them")
}

// ForChangesPending returns hints for --check runs that found differences.
func ForChangesPending() string {
	return format("run without --check to apply, or add --diff to see the change")
}

// ForChainedJobs returns hints for batch jobs reading another job's output.
func ForChainedJobs() string {
	return format("jobs run concurrently; move the dependent job to a second batch config")
}

// ForDuplicateOutput returns hints for batch jobs sharing an output path.
func ForDuplicateOutput() string {
	return format("give each job a distinct output path")
}

// ForNotText returns hints when an input is not a text file.
func ForNotText() string {
	return format("expected an interfaces(5) file or fragment, check the path")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
