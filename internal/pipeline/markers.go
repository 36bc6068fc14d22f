package pipeline

import (
	"fmt"
	"strings"
)

// Default marker literals. They must match previously written files
// byte for byte, otherwise old blocks are no longer recognized.
const (
	DefaultBeginMarker = "# BEGIN OVS BRIDGES"
	DefaultEndMarker   = "# END OVS BRIDGES"
)

// Markers is the begin/end line pair delimiting a managed block.
type Markers struct {
	Begin string
	End   string
}

// DefaultMarkers returns the OVS bridge marker pair.
func DefaultMarkers() Markers {
	return Markers{Begin: DefaultBeginMarker, End: DefaultEndMarker}
}

// Validate checks that both markers are non-empty single lines without
// surrounding whitespace and that they differ.
func (m Markers) Validate() error {
	if err := validateMarker("begin", m.Begin); err != nil {
		return err
	}
	if err := validateMarker("end", m.End); err != nil {
		return err
	}
	if m.Begin == m.End {
		return fmt.Errorf("%w: begin and end markers are identical (%q)", ErrInvalidMarker, m.Begin)
	}
	return nil
}

func validateMarker(kind, marker string) error {
	switch {
	case marker == "":
		return fmt.Errorf("%w: %s marker is empty", ErrInvalidMarker, kind)
	case strings.ContainsAny(marker, "\r\n"):
		return fmt.Errorf("%w: %s marker spans lines", ErrInvalidMarker, kind)
	case strings.TrimSpace(marker) != marker:
		return fmt.Errorf("%w: %s marker has surrounding whitespace", ErrInvalidMarker, kind)
	}
	return nil
}

// IsBegin reports whether line is the begin marker, ignoring surrounding
// whitespace and the line terminator.
func (m Markers) IsBegin(line string) bool {
	return strings.TrimSpace(line) == m.Begin
}

// IsEnd reports whether line is the end marker.
func (m Markers) IsEnd(line string) bool {
	return strings.TrimSpace(line) == m.End
}
