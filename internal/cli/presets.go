package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewPresetsCmd creates the presets command.
func NewPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List preset endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetContext(cmd).Config
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tURL")
			for _, p := range cfg.Presets {
				fmt.Fprintf(tw, "%s\t%s\n", p.Label, p.URL)
			}
			return tw.Flush()
		},
	}
}
