package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// BlockStripper defines the contract for removing managed blocks.
type BlockStripper interface {
	Strip(doc string) (StripResult, error)
}

// StripResult holds the stripped document and what was found in it.
type StripResult struct {
	Text   string
	Blocks int     // complete begin/end pairs removed
	Issues []Issue // marker problems that were repaired
}

// scanState is the position of the line scanner relative to a managed block.
type scanState int

const (
	beforeBlock scanState = iota
	insideBlock
	afterBlock
)

// MarkerStripper removes every begin/end delimited span with a line scan.
//
// Each complete span, end marker line terminator included, is replaced by a
// single empty line so the paragraphs around it stay separated. Malformed
// input is repaired: a stray end marker line becomes an empty line, a nested
// begin marker is absorbed into the open block, and an unterminated block
// has only its begin marker line replaced by an empty line. With Strict set,
// any repair is reported as an error wrapping ErrMalformedBlock instead.
type MarkerStripper struct {
	Markers Markers
	Strict  bool
}

// NewMarkerStripper validates the markers and returns a stripper.
func NewMarkerStripper(markers Markers, strict bool) (*MarkerStripper, error) {
	if err := markers.Validate(); err != nil {
		return nil, err
	}
	return &MarkerStripper{Markers: markers, Strict: strict}, nil
}

// Strip removes managed blocks from doc. A document without markers is
// returned unchanged.
func (s *MarkerStripper) Strip(doc string) (StripResult, error) {
	var (
		out   strings.Builder
		open  []string // lines of the block being scanned, begin marker first
		start int
		state = beforeBlock
		res   StripResult
	)
	out.Grow(len(doc))

	for i, line := range strings.SplitAfter(doc, "\n") {
		lineNo := i + 1

		switch state {
		case beforeBlock, afterBlock:
			switch {
			case s.Markers.IsBegin(line):
				state = insideBlock
				start = lineNo
				open = append(open[:0], line)
			case s.Markers.IsEnd(line):
				res.Issues = append(res.Issues, Issue{Line: lineNo, Err: ErrStrayEndMarker})
				out.WriteString("\n")
			default:
				out.WriteString(line)
			}

		case insideBlock:
			switch {
			case s.Markers.IsEnd(line):
				state = afterBlock
				open = open[:0]
				res.Blocks++
				out.WriteString("\n")
			case s.Markers.IsBegin(line):
				res.Issues = append(res.Issues, Issue{Line: lineNo, Err: ErrNestedBeginMarker})
				open = append(open, line)
			default:
				open = append(open, line)
			}
		}
	}

	if state == insideBlock {
		res.Issues = append(res.Issues, Issue{Line: start, Err: ErrUnterminatedBlock})
		// The body goes back untouched; the orphan filter decides its fate.
		out.WriteString("\n")
		for _, line := range open[1:] {
			if !s.Markers.IsBegin(line) {
				out.WriteString(line)
			}
		}
	}

	res.Text = out.String()

	if s.Strict && len(res.Issues) > 0 {
		errs := make([]error, len(res.Issues))
		for i, issue := range res.Issues {
			errs[i] = issue
		}
		return res, fmt.Errorf("%w: %w", ErrMalformedBlock, errors.Join(errs...))
	}
	return res, nil
}
