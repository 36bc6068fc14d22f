package ifmerge

import "github.com/alnah/go-ifmerge/internal/pipeline"

// Sentinel errors for merge operations.
var (
	// Malformed marker errors (strict mode only).
	ErrMalformedBlock    = pipeline.ErrMalformedBlock
	ErrUnterminatedBlock = pipeline.ErrUnterminatedBlock
	ErrStrayEndMarker    = pipeline.ErrStrayEndMarker
	ErrNestedBeginMarker = pipeline.ErrNestedBeginMarker
	ErrMarkerInFragment  = pipeline.ErrMarkerInFragment

	// Option validation errors.
	ErrInvalidMarker     = pipeline.ErrInvalidMarker
	ErrInvalidAnchor     = pipeline.ErrInvalidAnchor
	ErrInvalidOrphanType = pipeline.ErrInvalidOrphanType
)
