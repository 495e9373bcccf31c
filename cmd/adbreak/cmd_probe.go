package main

import (
	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/spf13/cobra"
)

func newProbeCmd(a *app) *cobra.Command {
	var (
		o        internal.Options
		infoOnly bool
	)
	cmd := &cobra.Command{
		Use:   "probe <file.ts|->",
		Short: "List the streams of an MPEG-TS file and the SCTE-35 cues it carries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.ShowStreamInfo = true
			if infoOnly || o.ShowService {
				return internal.Execute(cmd.Context(), a.stdout, o, args[0], internal.ParseInfo)
			}
			o.ShowSCTE35 = true
			return internal.Execute(cmd.Context(), a.stdout, o, args[0], internal.ParseSCTE35)
		},
	}
	cmd.Flags().BoolVar(&infoOnly, "info", false, "only list elementary streams")
	cmd.Flags().BoolVar(&o.ShowService, "service", false, "also list SDT services; implies --info")
	cmd.Flags().IntVar(&o.MaxCues, "max", 0, "stop after this many cues (0 for all)")
	cmd.Flags().BoolVar(&o.Indent, "indent", false, "indent JSON output")
	return cmd
}
