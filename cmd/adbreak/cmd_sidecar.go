package main

import (
	"bytes"

	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/spf13/cobra"
)

func newSidecarCmd(a *app) *cobra.Command {
	var (
		bo     batchOptions
		co     cueOptions
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:     "sidecar <breaks.json|->",
		Aliases: []string{"serialize-sidecar"},
		Short:   "Schedule a batch, build its cues and write a sidecar document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := internal.ParseBatchFormat(format)
			if err != nil {
				return err
			}
			cues, err := a.buildCues(cmd, args[0], bo, co)
			if err != nil {
				return err
			}
			doc := internal.Serialize(cues, a.cfg.ProviderID, a.cfg.ProviderName)
			var buf bytes.Buffer
			if err := internal.WriteSidecar(&buf, doc, outFormat); err != nil {
				return err
			}
			return a.writeOutput(output, buf.Bytes())
		},
	}
	bo.register(cmd)
	co.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "sidecar format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	return cmd
}
