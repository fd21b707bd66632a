package extract

import "errors"

// Recoverable failures. None of them escapes Extractor.Extract; they are
// logged and surface in Explanation.
var (
	// ErrUnparsablePublicationDate means the fallback date is not YYYY-MM-DD.
	ErrUnparsablePublicationDate = errors.New("unparsable publication date")

	// ErrUnresolvableDate means a date candidate could not become a calendar date.
	ErrUnresolvableDate = errors.New("unresolvable date candidate")

	// ErrUnresolvableTime means a time candidate could not become a clock time.
	ErrUnresolvableTime = errors.New("unresolvable time candidate")
)
