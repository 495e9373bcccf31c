package main

import (
	"fmt"

	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newBuildCueCmd(a *app) *cobra.Command {
	var (
		co        cueOptions
		id        string
		adID      string
		name      string
		at        string
		duration  float64
		reference string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "build-cue",
		Short: "Build a single SCTE-35 cue",
		Long: `Build a single SCTE-35 cue.

--at takes the same formats as scheduled_time in a batch: an absolute
time or a number of seconds after the reference time.`,
		Example: "  adbreak build-cue --ad-id ad42 --duration 30 --at 120 --format base64",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "hex", "base64", "json":
			default:
				return errors.Newf("unknown output format %q (hex, base64, json)", format)
			}
			if id == "" {
				id = uuid.NewString()
			}
			req := internal.NewAdBreakRequest(id, adID, at, duration)
			if name != "" {
				req.Name = &name
			}
			records := []internal.AdBreakRequest{req}
			a.providerDefaults(records)
			sched, err := a.scheduleRecords(records, reference)
			if err != nil {
				return err
			}
			if len(sched.Breaks) == 0 {
				return errors.Newf("ad break %q is scheduled before the reference time", id)
			}
			builder, variant, err := a.cueBuilder(cmd, co)
			if err != nil {
				return err
			}
			br := sched.Breaks[0]
			cue, err := builder.Build(br, variant)
			if err != nil {
				return err
			}

			switch format {
			case "hex":
				_, err = fmt.Fprintf(a.stdout, "0x%s\n", cue.Hex())
			case "base64":
				_, err = fmt.Fprintln(a.stdout, cue.Base64())
			default:
				jp := &internal.JsonPrinter{W: a.stdout, Indent: true}
				jp.PrintCue(internal.ScheduledCue{Break: br, Cue: cue}, true)
				err = jp.Error()
			}
			return err
		},
	}
	co.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "ad break id (default a random UUID)")
	cmd.Flags().StringVar(&adID, "ad-id", "", "ad id with a numeric suffix used as splice event id")
	cmd.Flags().StringVar(&name, "name", "", "ad break name (default \"Ad Break <ad-id>\")")
	cmd.Flags().StringVar(&at, "at", "0", "scheduled time")
	cmd.Flags().Float64Var(&duration, "duration", 0, "break duration in seconds")
	cmd.Flags().StringVar(&reference, "reference-time", "", "reference instant (default now)")
	cmd.Flags().StringVarP(&format, "format", "f", "hex", "output format (hex, base64, json)")
	_ = cmd.MarkFlagRequired("ad-id")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}
