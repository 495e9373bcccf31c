package main

import (
	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var bo batchOptions
	cmd := &cobra.Command{
		Use:   "validate <breaks.json|->",
		Short: "Check an ad-break batch and report every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.loadBatch(args[0], bo)
			if err != nil {
				return err
			}
			parser, err := a.timeParser()
			if err != nil {
				return err
			}
			now, err := a.referenceTime(parser, bo.reference)
			if err != nil {
				return err
			}
			if err := internal.Validate(records, parser, now); err != nil {
				return err
			}
			jp := &internal.JsonPrinter{W: a.stdout}
			jp.Print(struct {
				Valid bool `json:"valid"`
				Count int  `json:"count"`
			}{true, len(records)}, true)
			return jp.Error()
		},
	}
	bo.register(cmd)
	return cmd
}
