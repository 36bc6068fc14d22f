package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-ifmerge/internal/fileutil"
	"github.com/alnah/go-ifmerge/internal/pipeline"
	"github.com/alnah/go-ifmerge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound   = errors.New("config file not found")
	ErrEmptyConfigName  = errors.New("config name cannot be empty")
	ErrConfigParse      = errors.New("failed to parse config")
	ErrFieldTooLong     = errors.New("field exceeds maximum length")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrDuplicateOutput  = errors.New("several jobs write the same output")
	ErrChainedJobs      = errors.New("job reads a file another job writes")
	ErrIncompleteJob    = errors.New("job is missing a path")
	ErrInvalidWorkers   = errors.New("invalid worker count")
	ErrInvalidFileMode  = errors.New("invalid output file mode")
	ErrInvalidDebounce  = errors.New("invalid watch debounce")
	errNoConfigLocation = errors.New("no config location")
)

// Field length limits.
const (
	MaxMarkerLength  = 200
	MaxPatternLength = 512
	MaxTypeLength    = 64
	MaxPathLength    = 4096
	MaxJobNameLength = 100
	MaxWorkers       = 64
)

// appName is the directory searched under the user config dir.
const appName = "ifmerge"

// Config holds all configuration for a merge run.
type Config struct {
	Markers MarkersConfig `yaml:"markers"`
	Anchor  AnchorConfig  `yaml:"anchor"`
	Orphans OrphansConfig `yaml:"orphans"`
	Strict  bool          `yaml:"strict"`
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
	Workers int           `yaml:"workers"` // batch parallelism (0 = auto)
	Jobs    []Job         `yaml:"jobs"`
}

// MarkersConfig defines the managed block delimiters.
type MarkersConfig struct {
	Begin string `yaml:"begin"`
	End   string `yaml:"end"`
}

// AnchorConfig defines where the block is inserted.
type AnchorConfig struct {
	Pattern string `yaml:"pattern"` // regexp, multi-line mode
}

// OrphansConfig defines which stray stanzas are removed.
type OrphansConfig struct {
	Types []string `yaml:"types"`
}

// OutputConfig defines how results are written.
type OutputConfig struct {
	Backup bool   `yaml:"backup"` // keep <out>.bak of the previous content
	Mode   string `yaml:"mode"`   // octal permission bits, e.g. "0644"
}

// WatchConfig defines the watch command behavior.
type WatchConfig struct {
	Debounce string `yaml:"debounce"` // Go duration, e.g. "500ms"
}

// Job is one merge of the batch command.
type Job struct {
	Name     string `yaml:"name"`
	Existing string `yaml:"existing"`
	Fragment string `yaml:"fragment"`
	Output   string `yaml:"output"` // empty = rewrite Existing in place
}

// Target returns the path the job writes to.
func (j Job) Target() string {
	if j.Output == "" {
		return j.Existing
	}
	return j.Output
}

// Label returns the job name, falling back to its target path.
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Target()
}

// DefaultConfig returns the OVS bridge defaults with no jobs.
func DefaultConfig() *Config {
	return &Config{
		Markers: MarkersConfig{
			Begin: pipeline.DefaultBeginMarker,
			End:   pipeline.DefaultEndMarker,
		},
		Anchor:  AnchorConfig{Pattern: pipeline.DefaultAnchorPattern},
		Orphans: OrphansConfig{Types: append([]string(nil), pipeline.DefaultOrphanTypes...)},
		Output:  OutputConfig{Mode: "0644"},
		Watch:   WatchConfig{Debounce: "500ms"},
	}
}

// Validate checks field lengths, patterns and jobs. Called by LoadConfig, but
// available for configs built in code.
func (c *Config) Validate() error {
	if err := validateFieldLength("markers.begin", c.Markers.Begin, MaxMarkerLength); err != nil {
		return err
	}
	if err := validateFieldLength("markers.end", c.Markers.End, MaxMarkerLength); err != nil {
		return err
	}
	markers := pipeline.Markers{Begin: c.Markers.Begin, End: c.Markers.End}
	if err := markers.Validate(); err != nil {
		return fmt.Errorf("%w: markers: %w", ErrInvalidConfig, err)
	}

	if err := validateFieldLength("anchor.pattern", c.Anchor.Pattern, MaxPatternLength); err != nil {
		return err
	}
	if _, err := pipeline.NewAnchorInserter(markers, c.Anchor.Pattern); err != nil {
		return fmt.Errorf("%w: anchor.pattern: %w", ErrInvalidConfig, err)
	}

	for i, typ := range c.Orphans.Types {
		if err := validateFieldLength(fmt.Sprintf("orphans.types[%d]", i), typ, MaxTypeLength); err != nil {
			return err
		}
	}
	if _, err := pipeline.NewOrphanFilter(c.Orphans.Types); err != nil {
		return fmt.Errorf("%w: orphans.types: %w", ErrInvalidConfig, err)
	}

	if _, err := c.Output.FileMode(); err != nil {
		return err
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		return err
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers: must be between 0 and %d, got %d", ErrInvalidWorkers, MaxWorkers, c.Workers)
	}

	return c.validateJobs()
}

// validateJobs requires paths on every job. Jobs run concurrently, so it
// rejects two jobs writing the same file and a job reading a file that
// another job writes.
func (c *Config) validateJobs() error {
	targets := make(map[string]string, len(c.Jobs))

	for i, job := range c.Jobs {
		field := fmt.Sprintf("jobs[%d]", i)
		if err := validateFieldLength(field+".name", job.Name, MaxJobNameLength); err != nil {
			return err
		}
		for name, path := range map[string]string{
			"existing": job.Existing,
			"fragment": job.Fragment,
			"output":   job.Output,
		} {
			if err := validateFieldLength(field+"."+name, path, MaxPathLength); err != nil {
				return err
			}
		}
		if job.Existing == "" || job.Fragment == "" {
			return fmt.Errorf("%w: %s (%s): existing and fragment are required", ErrIncompleteJob, field, job.Label())
		}

		target := filepath.Clean(job.Target())
		if prev, ok := targets[target]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutput, prev, field, target)
		}
		targets[target] = field
	}

	for i, job := range c.Jobs {
		field := fmt.Sprintf("jobs[%d]", i)
		for _, input := range []string{job.Existing, job.Fragment} {
			path := filepath.Clean(input)
			if writer, ok := targets[path]; ok && writer != field {
				return fmt.Errorf("%w: %s reads %s, which %s writes", ErrChainedJobs, field, path, writer)
			}
		}
	}
	return nil
}

// FileMode parses Mode as octal permission bits. Empty means 0644.
func (o OutputConfig) FileMode() (os.FileMode, error) {
	if o.Mode == "" {
		return 0o644, nil
	}
	bits, err := strconv.ParseUint(o.Mode, 8, 32)
	if err != nil || bits > 0o777 {
		return 0, fmt.Errorf("%w: %q (want octal like 0644)", ErrInvalidFileMode, o.Mode)
	}
	return os.FileMode(bits), nil
}

// DebounceDuration parses Debounce. Empty means 500ms.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	if w.Debounce == "" {
		return 500 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d < 0 || d > time.Minute {
		return 0, fmt.Errorf("%w: %q (want a duration up to 1m, e.g. 500ms)", ErrInvalidDebounce, w.Debounce)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as <name>.yaml or <name>.yml in the current
// directory, then in the user config directory under ifmerge/.
// Relative job paths are resolved against the config file's directory.
// Keys absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.Decode(data, cfg, true); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	cfg.resolveJobPaths(filepath.Dir(configPath))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveJobPaths makes relative job paths relative to dir.
func (c *Config) resolveJobPaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Jobs {
		c.Jobs[i].Existing = resolve(c.Jobs[i].Existing)
		c.Jobs[i].Fragment = resolve(c.Jobs[i].Fragment)
		c.Jobs[i].Output = resolve(c.Jobs[i].Output)
	}
}

// SearchPaths lists the candidate files for a config name, in lookup order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := userConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, appName, name+ext))
		}
	}
	return paths
}

// userConfigDir is a variable so tests can redirect the lookup.
var userConfigDir = func() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNoConfigLocation, err)
	}
	return dir, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
