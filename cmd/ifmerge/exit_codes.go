package main

import (
	"errors"
	"os"

	"github.com/alnah/go-ifmerge"
	"github.com/alnah/go-ifmerge/internal/config"
	"github.com/alnah/go-ifmerge/internal/fileutil"
)

// Exit codes for the ifmerge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Merge done, or nothing to do
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or malformed markers in strict mode
	ExitIO      = 3 // File not found, permission denied
	ExitPending = 5 // --check found a file that would change
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check mode (exit 5)
	if errors.Is(err, ErrChangesPending) {
		return ExitPending
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrDuplicateOutput) ||
		errors.Is(err, config.ErrChainedJobs) ||
		errors.Is(err, config.ErrIncompleteJob) ||
		errors.Is(err, config.ErrInvalidWorkers) ||
		errors.Is(err, config.ErrInvalidFileMode) ||
		errors.Is(err, config.ErrInvalidDebounce) ||
		errors.Is(err, ifmerge.ErrMalformedBlock) ||
		errors.Is(err, ifmerge.ErrInvalidMarker) ||
		errors.Is(err, ifmerge.ErrInvalidAnchor) ||
		errors.Is(err, ifmerge.ErrInvalidOrphanType) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadExisting) ||
		errors.Is(err, ErrReadFragment) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, fileutil.ErrNotText) ||
		errors.Is(err, fileutil.ErrFileTooLarge) ||
		errors.Is(err, fileutil.ErrIsDirectory) {
		return ExitIO
	}

	return ExitGeneral
}
