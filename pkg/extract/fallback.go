package extract

import (
	"fmt"
	"strconv"
	"time"
)

// FallbackPattern names the candidate synthesized from a publication date.
const FallbackPattern = "publication-date"

// PublicationLayout is the only accepted publication date format.
const PublicationLayout = "2006-01-02"

// ResolveFallback returns the date candidates to normalize. When dates is
// empty and published is set, published is parsed as YYYY-MM-DD and stands in
// as the only candidate. A non-empty dates is returned untouched even if none
// of its candidates later resolves.
//
// On a parse failure the result is empty and the error wraps
// ErrUnparsablePublicationDate.
func ResolveFallback(dates []DateCandidate, published string) ([]DateCandidate, error) {
	if len(dates) > 0 || published == "" {
		return dates, nil
	}

	t, err := time.Parse(PublicationLayout, published)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnparsablePublicationDate, published, err)
	}

	// Day-first, like every 3-field candidate.
	return []DateCandidate{{
		Pattern: FallbackPattern,
		Fields: []string{
			strconv.Itoa(t.Day()),
			strconv.Itoa(int(t.Month())),
			strconv.Itoa(t.Year()),
		},
	}}, nil
}
