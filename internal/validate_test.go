package internal

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestValidate(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	parser := NewTimeParser(time.UTC)

	cases := []struct {
		name    string
		records []AdBreakRequest
		// field of every expected error, in order
		fields []string
	}{
		{
			name: "valid",
			records: []AdBreakRequest{
				NewAdBreakRequest("b1", "ad1", "30", 30),
				NewAdBreakRequest("b2", "42", "2024-01-01T12:10:00Z", 15),
			},
		},
		{
			name:    "empty",
			records: nil,
		},
		{
			name:    "missing_everything",
			records: []AdBreakRequest{{}},
			fields:  []string{"id", "scheduled_time", "duration", "ad_id"},
		},
		{
			name: "bad_values",
			records: []AdBreakRequest{
				NewAdBreakRequest("b1", "adxx", "soon", 0),
			},
			fields: []string{"scheduled_time", "duration", "ad_id"},
		},
		{
			name: "negative_and_nan_duration",
			records: []AdBreakRequest{
				NewAdBreakRequest("b1", "ad1", "30", -1),
				NewAdBreakRequest("b2", "ad2", "30", math.NaN()),
			},
			fields: []string{"duration", "duration"},
		},
		{
			name: "duplicate_id",
			records: []AdBreakRequest{
				NewAdBreakRequest("b1", "ad1", "30", 30),
				NewAdBreakRequest("b1", "ad2", "60", 30),
			},
			fields: []string{"id"},
		},
		{
			name: "event_id_overflow",
			records: []AdBreakRequest{
				NewAdBreakRequest("b1", "ad4294967296", "30", 30),
			},
			fields: []string{"ad_id"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(c.records, parser, now)
			if len(c.fields) == 0 {
				require.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			got := make([]string, 0, len(verrs))
			for _, e := range verrs {
				got = append(got, e.Field)
			}
			require.Equal(t, c.fields, got)
		})
	}
}

func TestValidateReportsAllRecords(t *testing.T) {
	records := []AdBreakRequest{
		{ID: ptr("b1"), AdID: ptr("ad1"), Duration: ptr(10.0)},
		NewAdBreakRequest("b2", "ad2", "10", 10),
		{ID: ptr("b3"), ScheduledTime: ptr(TimeSpec("10")), AdID: ptr("ad3")},
	}
	err := Validate(records, NewTimeParser(nil), time.Now())
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	require.Equal(t, 0, verrs[0].Index)
	require.Equal(t, 2, verrs[1].Index)
	require.Equal(t, "ad break 0: missing 'scheduled_time' field", verrs[0].Error())
	require.Contains(t, err.Error(), "ad break 2: missing 'duration' field")
}

func TestValidateDoesNotMutate(t *testing.T) {
	records := []AdBreakRequest{{ID: ptr("b1"), AdID: ptr("ad1"), ScheduledTime: ptr(TimeSpec("30")), Duration: ptr(5.0)}}
	_ = Validate(records, NewTimeParser(nil), time.Now())
	require.Nil(t, records[0].Name)
	require.Nil(t, records[0].ProviderID)
	require.Equal(t, TimeSpec("30"), *records[0].ScheduledTime)
}
