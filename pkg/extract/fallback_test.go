package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFallback(t *testing.T) {
	t.Run("text dates win", func(t *testing.T) {
		dates := []DateCandidate{{Pattern: "p", Fields: []string{"31", "02", "2025"}}}
		got, err := ResolveFallback(dates, "2025-01-15")
		require.NoError(t, err)
		assert.Equal(t, dates, got)
	})

	t.Run("no publication date", func(t *testing.T) {
		got, err := ResolveFallback(nil, "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("day first fields", func(t *testing.T) {
		got, err := ResolveFallback(nil, "2025-01-15")
		require.NoError(t, err)
		assert.Equal(t, []DateCandidate{{Pattern: FallbackPattern, Fields: []string{"15", "1", "2025"}}}, got)
	})

	for _, bad := range []string{"2025-1-5", "15/01/2025", "2025-02-30", "nan"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			got, err := ResolveFallback(nil, bad)
			assert.ErrorIs(t, err, ErrUnparsablePublicationDate)
			assert.Empty(t, got)
		})
	}
}
