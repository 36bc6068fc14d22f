package main

// Notes:
// - loadEnvConfig: we test the three IFMERGE_* variables. Invalid values for
//   strict and workers are ignored, not errors.
// - warnUnknownEnvVars: we test typo detection and that known vars don't warn.
// - applyEnvConfig: we test that env values override the config file.
// - Tests use t.Setenv() which prevents t.Parallel() at parent level.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alnah/go-ifmerge/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Run("all variables set", func(t *testing.T) {
		t.Setenv("IFMERGE_CONFIG", "/etc/ifmerge/hosts.yaml")
		t.Setenv("IFMERGE_STRICT", "true")
		t.Setenv("IFMERGE_WORKERS", "4")

		cfg := loadEnvConfig()

		if cfg.ConfigPath != "/etc/ifmerge/hosts.yaml" {
			t.Errorf("ConfigPath = %q, want /etc/ifmerge/hosts.yaml", cfg.ConfigPath)
		}
		if cfg.Strict == nil || !*cfg.Strict {
			t.Errorf("Strict = %v, want true", cfg.Strict)
		}
		if cfg.Workers != 4 {
			t.Errorf("Workers = %d, want 4", cfg.Workers)
		}
	})

	t.Run("strict false is kept", func(t *testing.T) {
		t.Setenv("IFMERGE_STRICT", "0")

		cfg := loadEnvConfig()

		if cfg.Strict == nil || *cfg.Strict {
			t.Errorf("Strict = %v, want pointer to false", cfg.Strict)
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv("IFMERGE_CONFIG", "")
		t.Setenv("IFMERGE_STRICT", "")
		t.Setenv("IFMERGE_WORKERS", "")

		cfg := loadEnvConfig()

		if cfg.ConfigPath != "" || cfg.Strict != nil || cfg.Workers != 0 {
			t.Errorf("loadEnvConfig() = %+v, want zero value", cfg)
		}
	})

	invalid := []struct {
		name    string
		strict  string
		workers string
	}{
		{"unparsable strict", "maybe", ""},
		{"negative workers", "", "-1"},
		{"zero workers", "", "0"},
		{"workers above limit", "", "65"},
		{"non-numeric workers", "", "four"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("IFMERGE_STRICT", tt.strict)
			t.Setenv("IFMERGE_WORKERS", tt.workers)

			cfg := loadEnvConfig()

			if cfg.Strict != nil {
				t.Errorf("Strict = %v, want nil", *cfg.Strict)
			}
			if cfg.Workers != 0 {
				t.Errorf("Workers = %d, want 0", cfg.Workers)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Run("warns on typo", func(t *testing.T) {
		t.Setenv("IFMERGE_STRCIT", "true")

		var buf bytes.Buffer
		warnUnknownEnvVars(&buf)

		if !strings.Contains(buf.String(), "IFMERGE_STRCIT") {
			t.Errorf("expected warning for IFMERGE_STRCIT, got %q", buf.String())
		}
	})

	t.Run("known vars are silent", func(t *testing.T) {
		t.Setenv("IFMERGE_STRICT", "true")
		t.Setenv("IFMERGE_WORKERS", "2")

		var buf bytes.Buffer
		warnUnknownEnvVars(&buf)

		if strings.Contains(buf.String(), "IFMERGE_STRICT") || strings.Contains(buf.String(), "IFMERGE_WORKERS") {
			t.Errorf("unexpected warning: %q", buf.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overrides config file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	strictOff := false
	tests := []struct {
		name        string
		env         *envConfig
		cfgStrict   bool
		cfgWorkers  int
		wantStrict  bool
		wantWorkers int
	}{
		{"empty env keeps config", &envConfig{}, true, 3, true, 3},
		{"strict false overrides config", &envConfig{Strict: &strictOff}, true, 0, false, 0},
		{"workers override config", &envConfig{Workers: 6}, false, 2, false, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.Strict = tt.cfgStrict
			cfg.Workers = tt.cfgWorkers

			applyEnvConfig(tt.env, cfg)

			if cfg.Strict != tt.wantStrict {
				t.Errorf("Strict = %v, want %v", cfg.Strict, tt.wantStrict)
			}
			if cfg.Workers != tt.wantWorkers {
				t.Errorf("Workers = %d, want %d", cfg.Workers, tt.wantWorkers)
			}
		})
	}
}
