package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	seekerx "github.com/tanpawarit/symphony/agent/agents/seeker"
)

func newSeekersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seekers",
		Short: "List the built-in seekers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCONFIDENCE\tDESCRIPTION")
			for _, p := range seekerx.Profiles() {
				conf := fmt.Sprintf("%.2f", p.Confidence)
				if !p.FixedConfidence {
					conf += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, conf, p.Description)
			}
			return w.Flush()
		},
	}
}
