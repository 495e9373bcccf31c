package main

import (
	"bytes"

	"github.com/Eyevinn/adbreak-tools/common"
	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newEmsgCmd(a *app) *cobra.Command {
	var (
		format    string
		timescale uint32
		output    string
	)
	cmd := &cobra.Command{
		Use:   "emsg <sidecar.json|->",
		Short: "Write the cues of a sidecar document as emsg boxes",
		Long: `Write the cues of a sidecar document as version 1 emsg boxes with
scheme ` + common.SCTE35SchemeIDURI + `, for in-band carriage in
CMAF and DASH segments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "-" || output == "" {
				return errors.New("emsg output is binary, give a file with --output")
			}
			cues, err := a.loadSidecar(args[0], format)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := internal.WriteEmsgBoxes(&buf, cues, timescale); err != nil {
				return err
			}
			a.logger.Info().Int("boxes", len(cues)).Uint32("timescale", timescale).Str("output", output).Msg("wrote emsg boxes")
			return a.writeOutput(output, buf.Bytes())
		},
	}
	cmd.Flags().StringVar(&format, "input-format", "", "sidecar format (json, yaml); guessed from the file name when empty")
	cmd.Flags().Uint32Var(&timescale, "timescale", common.TimeScale, "timescale of presentation time and duration")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}
