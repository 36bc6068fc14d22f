package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultAnchorPattern matches the include directive that must stay last in
// /etc/network/interfaces. The managed block is placed right before it.
const DefaultAnchorPattern = `^source\s+/etc/network/interfaces\.d/.*$`

// BlockInserter defines the contract for splicing a fragment into a document.
type BlockInserter interface {
	Insert(doc, fragment string) (string, bool)
	FragmentIssues(fragment string) []Issue
}

// AnchorInserter places the managed block before the first anchor line, or
// at the end of the document when no line matches.
type AnchorInserter struct {
	Markers Markers
	Anchor  *regexp.Regexp
}

// NewAnchorInserter compiles pattern in multi-line mode so ^ and $ match at
// line boundaries.
func NewAnchorInserter(markers Markers, pattern string) (*AnchorInserter, error) {
	if err := markers.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidAnchor)
	}

	anchor, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnchor, err)
	}
	return &AnchorInserter{Markers: markers, Anchor: anchor}, nil
}

// NormalizeFragment returns the managed block for fragment, prefixed with
// exactly one newline which becomes the blank line above the begin marker
// once spliced. Marker lines are recognized as in documents: a begin marker
// on the first non-blank line and an end marker on the last one are written
// back in canonical form, a missing one is added with a blank line between
// it and the body, and marker lines inside the body are dropped.
func (a *AnchorInserter) NormalizeFragment(fragment string) string {
	lines, first := splitFragment(fragment)

	var b strings.Builder
	b.Grow(len(fragment) + len(a.Markers.Begin) + len(a.Markers.End) + 6)
	b.WriteString("\n" + a.Markers.Begin + "\n")

	if lines == nil {
		b.WriteString("\n" + a.Markers.End + "\n")
		return b.String()
	}

	lo, hi := first, len(lines)-1
	if a.Markers.IsBegin(lines[lo]) {
		lo++
	} else {
		b.WriteString("\n")
	}
	hasEnd := a.Markers.IsEnd(lines[hi])
	if hasEnd {
		hi--
	}

	for _, line := range lines[lo : hi+1] {
		if a.Markers.IsBegin(line) || a.Markers.IsEnd(line) {
			continue
		}
		b.WriteString(line + "\n")
	}

	if !hasEnd {
		b.WriteString("\n")
	}
	b.WriteString(a.Markers.End + "\n")
	return b.String()
}

// FragmentIssues reports marker lines inside the fragment body, where they
// would split the managed block. Line numbers are 1-based in fragment.
func (a *AnchorInserter) FragmentIssues(fragment string) []Issue {
	lines, first := splitFragment(fragment)
	last := len(lines) - 1

	var issues []Issue
	for i := first; i <= last; i++ {
		switch {
		case a.Markers.IsBegin(lines[i]) && i != first,
			a.Markers.IsEnd(lines[i]) && i != last:
			issues = append(issues, Issue{Line: i + 1, Err: ErrMarkerInFragment})
		}
	}
	return issues
}

// Insert splices the normalized fragment into doc. It reports whether the
// anchor line was found.
func (a *AnchorInserter) Insert(doc, fragment string) (string, bool) {
	block := a.NormalizeFragment(fragment)

	loc := a.Anchor.FindStringIndex(doc)
	if loc == nil {
		return strings.TrimRightFunc(doc, unicode.IsSpace) + "\n\n" + block, false
	}

	prefix := strings.TrimRightFunc(doc[:loc[0]], unicode.IsSpace) + "\n\n"
	suffix := strings.TrimLeftFunc(doc[loc[0]:], unicode.IsSpace)
	return prefix + block + "\n" + suffix, true
}

// splitFragment splits fragment into lines without trailing whitespace and
// returns the index of the first non-blank line. It returns nil lines for a
// blank fragment.
func splitFragment(fragment string) ([]string, int) {
	trimmed := strings.TrimRightFunc(fragment, unicode.IsSpace)
	if trimmed == "" {
		return nil, 0
	}

	lines := strings.Split(trimmed, "\n")
	first := 0
	for strings.TrimSpace(lines[first]) == "" {
		first++
	}
	return lines, first
}
