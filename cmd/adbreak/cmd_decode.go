package main

import (
	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "decode <cue>",
		Short: "Print an SCTE-35 cue given as hex (0x...) or base64",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := internal.DecodeCueString(args[0])
			if err != nil {
				return err
			}
			info, err := internal.DescribeCue(data)
			if err != nil {
				return err
			}
			jp := &internal.JsonPrinter{W: a.stdout, Indent: indent}
			jp.Print(info, true)
			return jp.Error()
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", true, "indent JSON output")
	return cmd
}
