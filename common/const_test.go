package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecondsToTicks(t *testing.T) {
	testCases := []struct {
		name    string
		seconds float64
		want    uint64
	}{
		{"zero", 0, 0},
		{"one second", 1, 90000},
		{"thirty seconds", 30, 2700000},
		{"rounds up", 1.0000056, 90001},
		{"rounds down", 1.0000044, 90000},
		{"half second", 0.5, 45000},
		{"odd fraction", 12.345, 1111050},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SecondsToTicks(tc.seconds))
		})
	}
}

func TestAddPTSWraps(t *testing.T) {
	require.Equal(t, uint64(5), AddPTS(PtsWrap-5, 10))
	require.Equal(t, uint64(90000), AddPTS(0, 90000))
}

func TestTicksToSeconds(t *testing.T) {
	require.Equal(t, 30.0, TicksToSeconds(2700000))
}
