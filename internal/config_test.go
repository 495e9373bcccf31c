package internal

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, NewDefaultConfig(), cfg)
	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ADBREAK_PROVIDER_ID", "0x2")
	t.Setenv("ADBREAK_PROVIDER_NAME", "Acme")
	t.Setenv("ADBREAK_CUE_TYPE", "time_signal")
	t.Setenv("ADBREAK_MARKER_STYLE", "daterange")
	t.Setenv("ADBREAK_PTS_ORIGIN", "900000")
	t.Setenv("ADBREAK_LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "0x2", cfg.ProviderID)
	require.Equal(t, "Acme", cfg.ProviderName)
	require.Equal(t, "time_signal", cfg.CueType)
	require.Equal(t, "daterange", cfg.MarkerStyle)
	require.Equal(t, uint64(900000), cfg.PTSOrigin)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"ADBREAK_CUE_TYPE", "splice_null"},
		{"ADBREAK_MARKER_STYLE", "cue-out"},
		{"ADBREAK_TIME_ZONE", "Nowhere/Nothing"},
		{"ADBREAK_PTS_ORIGIN", "8589934592"},
		{"ADBREAK_PTS_ORIGIN", "abc"},
		{"ADBREAK_LOG_FORMAT", "xml"},
	}
	for _, c := range cases {
		t.Run(c.key+"="+c.value, func(t *testing.T) {
			t.Setenv(c.key, c.value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", LogFormatJSON)
	require.NoError(t, err)
	logger.Info().Msg("hidden")
	logger.Warn().Str("id", "b1").Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"id":"b1"`)

	buf.Reset()
	logger, err = NewLogger(&buf, "", LogFormatConsole)
	require.NoError(t, err)
	logger.Info().Msg("hello")
	require.Contains(t, buf.String(), "hello")

	_, err = NewLogger(&buf, "loud", LogFormatJSON)
	require.Error(t, err)
	_, err = NewLogger(&buf, "info", LogFormat("xml"))
	require.Error(t, err)
}
