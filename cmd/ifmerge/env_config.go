package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-ifmerge/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // IFMERGE_CONFIG: config file name or path
	Strict     *bool  // IFMERGE_STRICT: reject malformed markers (nil = unset)
	Workers    int    // IFMERGE_WORKERS: batch parallelism (0 = unset)
}

// knownEnvVars lists valid IFMERGE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"IFMERGE_CONFIG":  true,
	"IFMERGE_STRICT":  true,
	"IFMERGE_WORKERS": true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable values are ignored, not errors.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("IFMERGE_CONFIG"),
	}

	if strict := os.Getenv("IFMERGE_STRICT"); strict != "" {
		if b, err := strconv.ParseBool(strict); err == nil {
			cfg.Strict = &b
		}
	}

	if workers := os.Getenv("IFMERGE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 && w <= config.MaxWorkers {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized IFMERGE_* variables.
// Helps catch typos like IFMERGE_STRCIT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "IFMERGE_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overlays environment values on cfg.
// Order: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Strict != nil {
		cfg.Strict = *env.Strict
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
