package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [NAME]",
		Short: "List the built-in systems or describe one.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				sys, ok := lsystem.Preset(args[0])
				if !ok {
					return fmt.Errorf("unknown preset %q", args[0])
				}

				return lsystem.Describe(cmd.OutOrStdout(), sys)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range lsystem.PresetNames() {
				sys, _ := lsystem.Preset(name)
				fmt.Fprintf(tw, "%s\t%s\t%d iterations\n",
					sys.Name, sys.Axiom, sys.Iterations)
			}

			return tw.Flush()
		},
	}
}
