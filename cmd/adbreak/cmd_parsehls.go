package main

import (
	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/spf13/cobra"
)

func newParseHLSCmd(a *app) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "parse-hls <playlist.m3u8|->",
		Short: "List the SCTE-35 cues carried by an HLS media playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := internal.OpenInput(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			pl, err := internal.ReadMediaPlaylist(f)
			if err != nil {
				return err
			}
			jp := &internal.JsonPrinter{W: a.stdout, Indent: indent}
			for _, c := range pl.Cues() {
				if c.DecodeFailure != "" {
					a.logger.Warn().Int("segment", c.Segment).Str("error", c.DecodeFailure).Msg("undecodable cue")
				}
				jp.Print(c, true)
			}
			return jp.Error()
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "indent JSON output")
	return cmd
}
