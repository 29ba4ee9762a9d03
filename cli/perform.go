package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	conductorx "github.com/tanpawarit/symphony/agent/agents/conductor"
)

type performOptions struct {
	seekers    []string
	threshold  float64
	sequential bool
}

func newPerformCmd() *cobra.Command {
	opts := &performOptions{}

	cmd := &cobra.Command{
		Use:   "perform <query>",
		Short: "Run one symphony and print it as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			performOpts := conductorx.Options{
				Seekers:    opts.seekers,
				Sequential: opts.sequential,
			}
			if cmd.Flags().Changed("threshold") {
				threshold := opts.threshold
				performOpts.ResonanceThreshold = &threshold
			}

			symphony, err := a.conductor.Perform(cmd.Context(), strings.Join(args, " "), performOpts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(symphony)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.seekers, "seekers", "s", nil, "seekers to use (default all)")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0.3, "resonance similarity threshold (0-1)")
	cmd.Flags().BoolVar(&opts.sequential, "sequential", false, "run seekers one at a time")
	return cmd
}
