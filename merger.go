package ifmerge

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alnah/go-ifmerge/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.BlockStripper   = (*pipeline.MarkerStripper)(nil)
	_ pipeline.ParagraphFilter = (*pipeline.OrphanFilter)(nil)
	_ pipeline.BlockInserter   = (*pipeline.AnchorInserter)(nil)
)

// Merger runs the strip, filter, insert and normalize stages.
// Create with New(); a Merger is safe for concurrent use.
type Merger struct {
	cfg      mergerConfig
	logger   *zap.Logger
	stripper pipeline.BlockStripper
	filter   pipeline.ParagraphFilter
	inserter pipeline.BlockInserter
}

// New creates a Merger with the OVS bridge defaults.
// Use options to customize markers, anchor, orphan types and strictness.
// Returns an error wrapping ErrInvalidMarker, ErrInvalidAnchor or
// ErrInvalidOrphanType when an option value is rejected.
func New(opts ...Option) (*Merger, error) {
	m := &Merger{
		cfg: mergerConfig{
			markers:       pipeline.DefaultMarkers(),
			anchorPattern: pipeline.DefaultAnchorPattern,
			orphanTypes:   DefaultOrphanTypes(),
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	stripper, err := pipeline.NewMarkerStripper(m.cfg.markers, m.cfg.strict)
	if err != nil {
		return nil, err
	}
	filter, err := pipeline.NewOrphanFilter(m.cfg.orphanTypes)
	if err != nil {
		return nil, err
	}
	inserter, err := pipeline.NewAnchorInserter(m.cfg.markers, m.cfg.anchorPattern)
	if err != nil {
		return nil, err
	}

	m.stripper = stripper
	m.filter = filter
	m.inserter = inserter
	return m, nil
}

// Merge splices fragment into existing and returns the merged document.
// In lenient mode (the default) it never fails. In strict mode it returns
// an error wrapping ErrMalformedBlock when the existing document has stray,
// nested or unterminated markers, or when the fragment carries marker lines
// inside its body; the returned Result is nil in that case.
func (m *Merger) Merge(existing, fragment string) (*Result, error) {
	stripped, err := m.stripper.Strip(existing)
	if err != nil {
		return nil, err
	}
	for _, issue := range stripped.Issues {
		m.logger.Warn("repaired managed block markers",
			zap.Int("line", issue.Line),
			zap.Error(issue.Err))
	}

	if issues := m.inserter.FragmentIssues(fragment); len(issues) > 0 {
		if m.cfg.strict {
			errs := make([]error, len(issues))
			for i, issue := range issues {
				errs[i] = issue
			}
			return nil, fmt.Errorf("%w: fragment: %w", ErrMalformedBlock, errors.Join(errs...))
		}
		for _, issue := range issues {
			m.logger.Warn("dropped marker line from fragment",
				zap.Int("line", issue.Line),
				zap.Error(issue.Err))
		}
	}

	filtered, dropped := m.filter.Filter(stripped.Text)
	inserted, anchored := m.inserter.Insert(filtered, fragment)
	merged := pipeline.CompressBlankLines(inserted)

	m.logger.Debug("merged managed block",
		zap.Int("blocksRemoved", stripped.Blocks),
		zap.Int("orphansDropped", dropped),
		zap.Bool("anchored", anchored),
		zap.Int("bytes", len(merged)))

	return &Result{
		Text:           merged,
		BlocksRemoved:  stripped.Blocks,
		OrphansDropped: dropped,
		Anchored:       anchored,
		Changed:        merged != existing,
		Issues:         stripped.Issues,
	}, nil
}

// Strict reports whether malformed markers are rejected.
func (m *Merger) Strict() bool {
	return m.cfg.strict
}

var defaultMerger = sync.OnceValue(func() *Merger {
	m, err := New()
	if err != nil {
		panic("ifmerge: default merger: " + err.Error())
	}
	return m
})

// Merge splices fragment into existing using the default markers, anchor and
// orphan types. It is a total function: every input produces an output with
// exactly one managed block.
func Merge(existing, fragment string) string {
	res, _ := defaultMerger().Merge(existing, fragment) // lenient mode cannot fail
	return res.Text
}
