package internal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeParserParse(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	parser := NewTimeParser(nil)

	cases := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"iso_fraction", "2024-01-01T12:30:00.500Z", time.Date(2024, 1, 1, 12, 30, 0, 500000000, time.UTC)},
		{"iso", "2024-01-01T12:30:00Z", time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)},
		{"space_seconds", "2024-01-01 12:30:00", time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)},
		{"space_minutes", "2024-01-01 12:30", time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)},
		{"relative", "30", now.Add(30 * time.Second)},
		{"relative_fraction", "1.5", now.Add(1500 * time.Millisecond)},
		{"relative_negative", "-5", now.Add(-5 * time.Second)},
		{"relative_padded", " 30 ", now.Add(30 * time.Second)},
		{"relative_exponent", "1e2", now.Add(100 * time.Second)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := parser.Parse(c.input, now)
			require.NoError(t, err)
			require.True(t, c.expected.Equal(got), "got %s want %s", got, c.expected)
			require.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestTimeParserRejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	parser := NewTimeParser(time.UTC)

	for _, input := range []string{"", "abc", "0x10", "NaN", "Inf", "+Inf", "12:30", "2024-01-01T12:30:00+02:00", "1_000", "1e10", "-1e20", "9.3e9"} {
		t.Run(input, func(t *testing.T) {
			_, err := parser.Parse(input, now)
			require.Error(t, err)
			var tfe *TimeFormatError
			require.True(t, errors.As(err, &tfe))
			require.Equal(t, input, tfe.Value)
		})
	}
}

func TestTimeParserLocation(t *testing.T) {
	parser := NewTimeParser(time.FixedZone("CET", 3600))
	got, err := parser.Parse("2024-01-01 12:30", time.Time{})
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC), got)

	// The Z layouts are always UTC
	got, err = parser.Parse("2024-01-01T12:30:00Z", time.Time{})
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC), got)
}
