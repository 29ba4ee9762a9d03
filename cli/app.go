package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	conductorx "github.com/tanpawarit/symphony/agent/agents/conductor"
	seekerx "github.com/tanpawarit/symphony/agent/agents/seeker"
	archivex "github.com/tanpawarit/symphony/agent/archive"
	contractx "github.com/tanpawarit/symphony/agent/contract"
	llmx "github.com/tanpawarit/symphony/agent/llm"
	memoryx "github.com/tanpawarit/symphony/agent/memory"
	narratorx "github.com/tanpawarit/symphony/agent/narrator"
	toolx "github.com/tanpawarit/symphony/agent/tool"
	configx "github.com/tanpawarit/symphony/pkg/config"
	"github.com/tanpawarit/symphony/pkg/exa"
	"github.com/tanpawarit/symphony/pkg/qstash"
)

type AppConfig struct {
	ServerName     string   `split_words:"true" default:"symphony"`
	EnabledTools   []string `split_words:"true"`
	MemoryCapacity int      `split_words:"true" default:"100"`
	Narrate        bool     `split_words:"true" default:"true"`
	EnableSymphony bool     `split_words:"true" default:"true"`
}

type app struct {
	cfg       *AppConfig
	searcher  seekerx.Searcher
	conductor *conductorx.Conductor
	memory    *memoryx.Store
	archive   archivex.Archive
	publisher toolx.Publisher
	closeFns  []func() error
}

type appOptions struct {
	withArchive   bool
	withPublisher bool
}

func buildApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := configx.New[AppConfig]("SYMPHONY")
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}

	exaCfg, err := configx.New[exa.Config]("EXA")
	if err != nil {
		return nil, fmt.Errorf("load exa config: %w", err)
	}
	client, err := exa.NewClient(*exaCfg)
	if err != nil {
		return nil, err
	}

	seekers, err := seekerx.NewDefaultSet(client)
	if err != nil {
		return nil, err
	}

	conductorOpts := []conductorx.Option{conductorx.WithSeekers(seekers...)}
	if cfg.Narrate {
		narrator, err := buildNarrator(ctx)
		if err != nil {
			return nil, err
		}
		if narrator != nil {
			conductorOpts = append(conductorOpts, conductorx.WithNarrator(narrator))
		}
	}

	conductor, err := conductorx.New(conductorOpts...)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		searcher:  client,
		conductor: conductor,
		memory:    memoryx.New(memoryx.WithCapacity(cfg.MemoryCapacity)),
	}

	if opts.withArchive {
		archiveCfg, err := configx.New[archivex.Config]("ARCHIVE")
		if err != nil {
			return nil, fmt.Errorf("load archive config: %w", err)
		}
		archive, closeFn, err := archivex.New(*archiveCfg)
		if err != nil {
			return nil, err
		}
		a.archive = archive
		a.closeFns = append(a.closeFns, closeFn)

		if pg, ok := archive.(*archivex.PostgresArchive); ok {
			if err := pg.Migrate(ctx); err != nil {
				_ = a.Close()
				return nil, err
			}
		}
	}

	if opts.withPublisher {
		qstashCfg, err := configx.New[qstash.Config]("QSTASH")
		if err != nil {
			return nil, fmt.Errorf("load qstash config: %w", err)
		}
		if qstashCfg.Enabled() {
			publisher, err := qstash.NewClient(*qstashCfg)
			if err != nil {
				_ = a.Close()
				return nil, err
			}
			a.publisher = publisher
		}
	}

	return a, nil
}

// buildNarrator returns nil when no narrator model is configured.
func buildNarrator(ctx context.Context) (contractx.Narrator, error) {
	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		return nil, fmt.Errorf("load openrouter config: %w", err)
	}
	if !llmCfg.Enabled() {
		log.Debug().Msg("narrator disabled: no openrouter model configured")
		return nil, nil
	}
	return narratorx.NewFromConfig(ctx, *llmCfg)
}

func (a *app) catalog() *toolx.Catalog {
	opts := []toolx.Option{
		toolx.WithEnabledTools(a.cfg.EnabledTools),
		toolx.WithSymphony(a.cfg.EnableSymphony),
		toolx.WithSearcher(a.searcher),
	}
	if a.archive != nil {
		opts = append(opts, toolx.WithArchive(a.archive))
	}
	if a.publisher != nil {
		opts = append(opts, toolx.WithPublisher(a.publisher))
	}
	return toolx.NewCatalog(a.conductor, a.memory, opts...)
}

func (a *app) Close() error {
	var firstErr error
	for _, fn := range a.closeFns {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
