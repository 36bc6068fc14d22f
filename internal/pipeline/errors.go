package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline construction and marker scanning.
var (
	ErrMalformedBlock    = errors.New("malformed managed block")
	ErrUnterminatedBlock = errors.New("begin marker without matching end marker")
	ErrStrayEndMarker    = errors.New("end marker outside a managed block")
	ErrNestedBeginMarker = errors.New("begin marker inside a managed block")
	ErrMarkerInFragment  = errors.New("marker line inside the fragment body")

	ErrInvalidMarker     = errors.New("invalid marker")
	ErrInvalidAnchor     = errors.New("invalid anchor pattern")
	ErrInvalidOrphanType = errors.New("invalid orphan type")
)

// Issue records a marker problem found at a given line of the document.
type Issue struct {
	Line int   // 1-based line number in the input document
	Err  error // one of the marker scanning sentinels above
}

func (i Issue) Error() string {
	return fmt.Sprintf("line %d: %v", i.Line, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}
