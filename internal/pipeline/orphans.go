package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultOrphanTypes are the ovs_type values whose stanzas must only live
// inside the managed block.
var DefaultOrphanTypes = []string{"OVSBridge", "OVSPort"}

// orphanTypeName restricts orphan types to plain identifiers.
var orphanTypeName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ParagraphFilter defines the contract for dropping paragraphs.
type ParagraphFilter interface {
	Filter(doc string) (string, int)
}

// OrphanFilter drops blank-line separated paragraphs that declare one of the
// configured ovs_type values. It runs regardless of marker state, catching
// stanzas left behind when a user deletes the markers by hand.
type OrphanFilter struct {
	pattern *regexp.Regexp
}

// NewOrphanFilter builds a filter matching "ovs_type <type>" for each type.
// Matching is case-sensitive and unanchored.
func NewOrphanFilter(types []string) (*OrphanFilter, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: at least one type is required", ErrInvalidOrphanType)
	}

	quoted := make([]string, len(types))
	for i, t := range types {
		if !orphanTypeName.MatchString(t) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrphanType, t)
		}
		quoted[i] = regexp.QuoteMeta(t)
	}

	return &OrphanFilter{
		pattern: regexp.MustCompile(`ovs_type\s+(?:` + strings.Join(quoted, "|") + `)`),
	}, nil
}

// IsOrphan reports whether a paragraph looks like a leftover OVS stanza.
func (f *OrphanFilter) IsOrphan(paragraph string) bool {
	return f.pattern.MatchString(paragraph)
}

// Filter splits doc into paragraphs on runs of blank or whitespace-only
// lines, drops orphans, and rejoins survivors with exactly one blank line.
// Non-empty output always ends with a newline. The second return value is
// the number of paragraphs dropped.
func (f *OrphanFilter) Filter(doc string) (string, int) {
	var (
		kept    []string
		current []string
		dropped int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		p := strings.TrimRightFunc(strings.Join(current, "\n"), unicode.IsSpace)
		current = current[:0]
		switch {
		case p == "":
		case f.IsOrphan(p):
			dropped++
		default:
			kept = append(kept, p)
		}
	}

	for _, line := range strings.Split(doc, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	if len(kept) == 0 {
		return "", dropped
	}
	return strings.Join(kept, "\n\n") + "\n", dropped
}
