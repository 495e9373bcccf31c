package internal

import (
	"time"

	"github.com/Eyevinn/adbreak-tools/common"
	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ADBREAK"

// Config holds the defaults read from ADBREAK_* environment variables.
// Command line flags override them.
type Config struct {
	ProviderID   string `envconfig:"PROVIDER_ID" default:"0x1"`
	ProviderName string `envconfig:"PROVIDER_NAME" default:"YourProvider"`
	CueType      string `envconfig:"CUE_TYPE" default:"splice_insert"`
	MarkerStyle  string `envconfig:"MARKER_STYLE" default:"x-scte35"`
	TimeZone     string `envconfig:"TIME_ZONE" default:"UTC"`
	PTSOrigin    uint64 `envconfig:"PTS_ORIGIN" default:"0"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"console"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "processing env config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func NewDefaultConfig() Config {
	return Config{
		ProviderID:   common.DefaultProviderID,
		ProviderName: common.DefaultProviderName,
		CueType:      string(SpliceInsert),
		MarkerStyle:  string(StyleXSCTE35),
		TimeZone:     "UTC",
		LogLevel:     "info",
		LogFormat:    string(LogFormatConsole),
	}
}

func (c Config) Validate() error {
	if _, err := ParseCommandType(c.CueType); err != nil {
		return errors.Wrap(err, EnvPrefix+"_CUE_TYPE")
	}
	if _, err := ParseMarkerStyle(c.MarkerStyle); err != nil {
		return errors.Wrap(err, EnvPrefix+"_MARKER_STYLE")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.PTSOrigin >= common.PtsWrap {
		return errors.Newf("%s_PTS_ORIGIN %d does not fit in 33 bits", EnvPrefix, c.PTSOrigin)
	}
	switch LogFormat(c.LogFormat) {
	case LogFormatConsole, LogFormatJSON:
	default:
		return errors.Newf("%s_LOG_FORMAT %q is not console or json", EnvPrefix, c.LogFormat)
	}
	return nil
}

// Location is where naive scheduled times are interpreted.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, errors.Wrapf(err, "%s_TIME_ZONE", EnvPrefix)
	}
	return loc, nil
}
