package internal

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// NewLogger creates a logger writing to w (stderr when nil). Console output
// is human readable, JSON output is one object per line.
func NewLogger(w io.Writer, level string, format LogFormat) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), errors.Wrapf(err, "parsing log level %q", level)
		}
	}

	var writer io.Writer
	switch format {
	case LogFormatJSON:
		writer = w
	case LogFormatConsole, "":
		writer = zerolog.ConsoleWriter{Out: w, NoColor: true}
	default:
		return zerolog.Nop(), errors.Newf("unknown log format %q", format)
	}

	return zerolog.New(writer).With().Timestamp().Logger().Level(lvl), nil
}
