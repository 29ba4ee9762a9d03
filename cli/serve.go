package cli

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	archivex "github.com/tanpawarit/symphony/agent/archive"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Serve exposes the plain Exa search tools (web_search_exa, crawling_exa and
friends) and, unless SYMPHONY_ENABLE_SYMPHONY=false, the symphony,
seek_<name>, memory_search and memory_insights tools over the MCP stdio
transport. When an archive backend is configured the research memory is
restored at start-up and saved on shutdown.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx, appOptions{withArchive: true, withPublisher: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("close archive")
		}
	}()

	restored, err := archivex.Restore(ctx, a.archive, a.memory)
	if err != nil {
		log.Warn().Err(err).Msg("memory restore failed, starting empty")
	} else if restored > 0 {
		log.Info().Int("records", restored).Msg("research memory restored")
	}

	s := server.NewMCPServer(
		a.cfg.ServerName,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)
	catalog := a.catalog()
	names := catalog.Register(s)
	log.Info().Strs("tools", names).Strs("seekers", a.conductor.Seekers()).Msg("symphony server ready")

	serveErr := server.ServeStdio(s)

	saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := catalog.Checkpoint(saveCtx); err != nil {
		log.Warn().Err(err).Msg("memory save on shutdown failed")
	}

	return serveErr
}

func serverInstructions() string {
	return `Symphony runs several independent research seekers against one question.

Use "symphony" for broad research: it queries the selected seekers (truth,
scholar, commerce, source, rival, network, lore; default all), reports where
their findings converge and returns a synthesis. Use "seek_<name>" to query a
single seeker. "memory_search" finds earlier research on similar questions and
"memory_insights" summarizes the research history.

The *_exa tools run a single Exa search without orchestration: web, research
papers, companies, competitors, LinkedIn, Wikipedia and GitHub, plus
"crawling_exa" to extract the text of one URL.`
}
