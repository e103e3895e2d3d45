package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat_UTCSecondPrecision(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	ts := time.Date(2025, 3, 1, 16, 30, 45, 999999999, loc)

	require.Equal(t, "2025-03-02 00:30:45", Format(ts))
}

func TestParse_RoundTrip(t *testing.T) {
	parsed, err := Parse("2025-03-02 00:30:45")
	require.NoError(t, err)
	require.Equal(t, time.UTC, parsed.Location())
	require.Equal(t, "2025-03-02 00:30:45", Format(parsed))
}

func TestParse_RejectsRFC3339(t *testing.T) {
	_, err := Parse("2025-03-02T00:30:45Z")
	require.Error(t, err)
}
