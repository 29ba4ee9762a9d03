package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/symphony/agent/contract"
)

func newSeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seek <seeker> <query>",
		Short: "Query a single seeker and print its findings",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			seeker, ok := a.conductor.Seeker(args[0])
			if !ok {
				return fmt.Errorf("%w: unknown seeker %q (available: %s)",
					contractx.ErrValidation, args[0], strings.Join(a.conductor.Seekers(), ", "))
			}

			findings, err := seeker.Seek(cmd.Context(), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if findings == nil {
				findings = []contractx.Finding{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(findings)
		},
	}
}
