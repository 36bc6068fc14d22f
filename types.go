package ifmerge

import (
	"slices"

	"go.uber.org/zap"

	"github.com/alnah/go-ifmerge/internal/pipeline"
)

// Default marker literals and anchor pattern.
const (
	DefaultBeginMarker   = pipeline.DefaultBeginMarker
	DefaultEndMarker     = pipeline.DefaultEndMarker
	DefaultAnchorPattern = pipeline.DefaultAnchorPattern
)

// DefaultOrphanTypes returns the ovs_type values removed outside the block.
func DefaultOrphanTypes() []string {
	return slices.Clone(pipeline.DefaultOrphanTypes)
}

// Result is the outcome of a merge.
type Result struct {
	Text           string        // merged document
	BlocksRemoved  int           // complete marker pairs stripped from the input
	OrphansDropped int           // stray OVS paragraphs removed
	Anchored       bool          // block placed before the anchor line (false = appended)
	Changed        bool          // Text differs from the existing document
	Issues         []MarkerIssue // marker problems repaired in lenient mode
}

// MarkerIssue records a stray, nested or unterminated marker and its line.
type MarkerIssue = pipeline.Issue

// Option configures a Merger.
type Option func(*Merger)

// mergerConfig holds the raw option values validated by New.
type mergerConfig struct {
	markers       pipeline.Markers
	anchorPattern string
	orphanTypes   []string
	strict        bool
}

// WithMarkers sets the begin/end marker lines.
// Invalid markers make New return ErrInvalidMarker.
func WithMarkers(begin, end string) Option {
	return func(m *Merger) {
		m.cfg.markers = pipeline.Markers{Begin: begin, End: end}
	}
}

// WithAnchor sets the regular expression locating the insertion line.
// The pattern is compiled in multi-line mode.
func WithAnchor(pattern string) Option {
	return func(m *Merger) {
		m.cfg.anchorPattern = pattern
	}
}

// WithOrphanTypes sets the ovs_type values whose paragraphs are dropped
// outside the managed block.
func WithOrphanTypes(types ...string) Option {
	return func(m *Merger) {
		m.cfg.orphanTypes = slices.Clone(types)
	}
}

// WithStrict makes malformed markers an error instead of repairing them.
func WithStrict(strict bool) Option {
	return func(m *Merger) {
		m.cfg.strict = strict
	}
}

// WithLogger sets the logger used for debug traces and repair warnings.
// A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Merger) {
		if logger == nil {
			logger = zap.NewNop()
		}
		m.logger = logger
	}
}
