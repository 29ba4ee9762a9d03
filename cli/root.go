// Package cli holds the symphony command line.
package cli

import (
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/symphony/pkg/config"
	logx "github.com/tanpawarit/symphony/pkg/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

type rootOptions struct {
	envFile string
	debug   bool
	pretty  bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "symphony",
		Short: "Multi-seeker research orchestrator",
		Long: `Symphony sends one question to several independent seekers at once,
finds where their answers converge and condenses everything into a short
synthesis. It runs as an MCP server over stdio or as a one-shot command.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configx.SetEnvFile(opts.envFile)
			if cmd.Flags().Changed("debug") || cmd.Flags().Changed("pretty") {
				logx.Init(logx.Config{Debug: opts.debug, PrettyFormat: opts.pretty})
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "path to .env file (default ./.env when present)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "human readable log output")

	root.AddCommand(
		newServeCmd(),
		newPerformCmd(),
		newSeekCmd(),
		newSeekersCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
