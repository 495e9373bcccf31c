package main

import (
	"bytes"

	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newInjectCmd(a *app) *cobra.Command {
	var (
		bo            batchOptions
		co            cueOptions
		breaks        string
		sidecar       string
		style         string
		allowUnplaced bool
		report        bool
		output        string
	)
	cmd := &cobra.Command{
		Use:   "inject <playlist.m3u8|->",
		Short: "Insert SCTE-35 markers into an HLS media playlist",
		Long: `Insert SCTE-35 markers into an HLS media playlist.

Cues come either from an ad-break batch (--breaks) or from a sidecar
document (--sidecar). Each cue is placed before the first segment that
starts at or after its offset. If a cue cannot be placed nothing is
written, unless --allow-unplaced is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (breaks == "") == (sidecar == "") {
				return errors.New("exactly one of --breaks and --sidecar is required")
			}
			if style == "" {
				style = a.cfg.MarkerStyle
			}
			markerStyle, err := internal.ParseMarkerStyle(style)
			if err != nil {
				return err
			}

			var cues []internal.ScheduledCue
			if sidecar != "" {
				cues, err = a.loadSidecar(sidecar, bo.format)
			} else {
				cues, err = a.buildCues(cmd, breaks, bo, co)
			}
			if err != nil {
				return err
			}

			in, err := internal.OpenInput(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			var buf bytes.Buffer
			placed, injectErr := internal.InjectPlaylist(in, &buf, cues, markerStyle, allowUnplaced)
			var perrs internal.PlacementErrors
			if injectErr != nil && !errors.As(injectErr, &perrs) {
				return injectErr
			}
			jp := &internal.JsonPrinter{W: a.stderr}
			jp.PrintPlacement(placed, report)
			if err := jp.Error(); err != nil {
				return err
			}
			for _, e := range perrs {
				a.logger.Warn().Str("id", e.ID).Str("reason", string(e.Reason)).Msg("cue not placed")
			}
			if err := a.writeOutput(output, buf.Bytes()); err != nil {
				return err
			}
			return injectErr
		},
	}
	bo.register(cmd)
	co.register(cmd)
	cmd.Flags().StringVar(&breaks, "breaks", "", "ad-break batch to schedule")
	cmd.Flags().StringVar(&sidecar, "sidecar", "", "sidecar document with built cues")
	cmd.Flags().StringVar(&style, "style", "", "marker style (x-scte35, scte35, daterange); overrides ADBREAK_MARKER_STYLE")
	cmd.Flags().BoolVar(&allowUnplaced, "allow-unplaced", false, "write the playlist even if some cues cannot be placed")
	cmd.Flags().BoolVar(&report, "report", false, "print where each cue was placed to stderr")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output playlist (- for stdout)")
	return cmd
}
