package main

import (
	"bytes"

	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/spf13/cobra"
)

func newScheduleCmd(a *app) *cobra.Command {
	var (
		bo     batchOptions
		stats  bool
		indent bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "schedule <breaks.json|->",
		Short: "Resolve an ad-break batch into a time-ordered schedule",
		Long: `Resolve an ad-break batch into a time-ordered schedule.

Breaks scheduled before the reference time are dropped and logged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := a.schedule(args[0], bo)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			jp := &internal.JsonPrinter{W: &buf, Indent: indent}
			jp.Print(sched, true)
			jp.PrintStatistics(internal.CalculateStatistics(sched), stats)
			if err := jp.Error(); err != nil {
				return err
			}
			return a.writeOutput(output, buf.Bytes())
		},
	}
	bo.register(cmd)
	cmd.Flags().BoolVar(&stats, "stats", false, "also print schedule statistics")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent JSON output")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	return cmd
}
