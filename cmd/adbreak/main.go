package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var usg = `adbreak schedules SCTE-35 ad breaks and places their cues in HLS playlists.

Ad breaks are read from a JSON array or YAML sequence ("-" for stdin).
Defaults are taken from ADBREAK_* environment variables and can be
overridden with flags.`

// app is the state shared by all subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg    internal.Config
	logger zerolog.Logger
	clock  internal.Clock

	logLevel  string
	logFormat string
	timeZone  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, clock: internal.NewRealClock()}

	root := &cobra.Command{
		Use:           "adbreak",
		Short:         "SCTE-35 ad-break scheduling and HLS cue placement",
		Long:          usg,
		Version:       internal.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("adbreak version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides ADBREAK_LOG_LEVEL")
	pf.StringVar(&a.logFormat, "log-format", "", "log format (console, json); overrides ADBREAK_LOG_FORMAT")
	pf.StringVar(&a.timeZone, "time-zone", "", "zone for scheduled times without offset; overrides ADBREAK_TIME_ZONE")

	root.AddCommand(
		newValidateCmd(a),
		newScheduleCmd(a),
		newBuildCueCmd(a),
		newSidecarCmd(a),
		newInjectCmd(a),
		newDecodeCmd(a),
		newParseHLSCmd(a),
		newProbeCmd(a),
		newEmsgCmd(a),
	)
	return root
}

// setup loads the configuration, applies global flag overrides and
// creates the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if a.timeZone != "" {
		cfg.TimeZone = a.timeZone
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := internal.NewLogger(a.stderr, cfg.LogLevel, internal.LogFormat(cfg.LogFormat))
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.With().Str("cmd", cmd.Name()).Logger()
	return nil
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

// printError writes one line per aggregated problem.
func printError(w io.Writer, err error) {
	var verrs internal.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			fmt.Fprintf(w, "error: %s\n", e)
		}
		return
	}
	var perrs internal.PlacementErrors
	if errors.As(err, &perrs) {
		for _, e := range perrs {
			fmt.Fprintf(w, "error: %s\n", e)
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
