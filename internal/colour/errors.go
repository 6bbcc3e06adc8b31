package colour

import "errors"

// Errors returned by the extraction engine. Callers match them with errors.Is;
// most are wrapped with additional detail.
var (
	// ErrEmptyInput is returned when there are no pixel samples to cluster.
	ErrEmptyInput = errors.New("no pixel samples to cluster")

	// ErrInvalidOption is returned for an unknown algorithm or format, or a
	// non-positive k or top_n.
	ErrInvalidOption = errors.New("invalid option")

	// ErrInvalidGrid is returned when a grid's pixel slice does not match its
	// dimensions.
	ErrInvalidGrid = errors.New("invalid pixel grid")

	// ErrNotConverged marks a clustering run that hit its iteration cap.
	// It is reported as a warning and never fails an extraction.
	ErrNotConverged = errors.New("clustering did not converge")
)
