package tool

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	conductorx "github.com/tanpawarit/symphony/agent/agents/conductor"
	seekerx "github.com/tanpawarit/symphony/agent/agents/seeker"
	archivex "github.com/tanpawarit/symphony/agent/archive"
	memoryx "github.com/tanpawarit/symphony/agent/memory"
	"github.com/tanpawarit/symphony/pkg/qstash"
)

const (
	ToolSymphony       = "symphony"
	ToolMemorySearch   = "memory_search"
	ToolMemoryInsights = "memory_insights"
	seekToolPrefix     = "seek_"
)

// Publisher delivers completion notices. *qstash.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, payload any) (*qstash.PublishResponse, error)
}

var _ Publisher = (*qstash.Client)(nil)

type Option func(*Catalog)

func WithArchive(a archivex.Archive) Option {
	return func(c *Catalog) {
		c.archive = a
	}
}

// WithSearcher enables the plain Exa search and crawling tools.
func WithSearcher(s seekerx.Searcher) Option {
	return func(c *Catalog) {
		c.searcher = s
	}
}

// WithSymphony turns the orchestration tools (symphony, seek_<name> and the
// memory tools) on or off as a group. They are on by default.
func WithSymphony(enabled bool) Option {
	return func(c *Catalog) {
		c.symphony = enabled
	}
}

func WithPublisher(p Publisher) Option {
	return func(c *Catalog) {
		c.publisher = p
	}
}

// WithEnabledTools restricts the catalog to the named tools. An empty list
// keeps every tool.
func WithEnabledTools(names []string) Option {
	return func(c *Catalog) {
		enabled := make(map[string]struct{}, len(names))
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				enabled[trimmed] = struct{}{}
			}
		}
		if len(enabled) == 0 {
			c.enabled = nil
			return
		}
		c.enabled = enabled
	}
}

// Catalog exposes the conductor, its seekers, the research memory and plain
// Exa search as MCP tools.
type Catalog struct {
	conductor *conductorx.Conductor
	memory    *memoryx.Store
	archive   archivex.Archive
	publisher Publisher
	searcher  seekerx.Searcher
	symphony  bool
	enabled   map[string]struct{}

	// checkpointMu orders export and save so an older snapshot never
	// overwrites a newer one.
	checkpointMu sync.Mutex
}

func NewCatalog(conductor *conductorx.Conductor, memory *memoryx.Store, opts ...Option) *Catalog {
	c := &Catalog{conductor: conductor, memory: memory, symphony: true}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func SeekToolName(seeker string) string {
	return seekToolPrefix + seeker
}

// Tools returns the enabled tool definitions with their handlers, in a
// stable order: the Exa tools when a searcher is set, then symphony, one seek
// tool per registered seeker and the two memory tools.
func (c *Catalog) Tools() []server.ServerTool {
	all := c.exaTools()
	if c.symphony && c.conductor != nil {
		all = append(all, server.ServerTool{Tool: symphonyTool(), Handler: c.handleSymphony})
		for _, name := range c.conductor.Seekers() {
			all = append(all, server.ServerTool{Tool: seekTool(name), Handler: c.seekHandler(name)})
		}
		all = append(all,
			server.ServerTool{Tool: memorySearchTool(), Handler: c.handleMemorySearch},
			server.ServerTool{Tool: memoryInsightsTool(), Handler: c.handleMemoryInsights},
		)
	}

	if c.enabled == nil {
		return all
	}
	filtered := make([]server.ServerTool, 0, len(all))
	for _, t := range all {
		if _, ok := c.enabled[t.Tool.Name]; ok {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Register adds the enabled tools to s and returns their names.
func (c *Catalog) Register(s *server.MCPServer) []string {
	tools := c.Tools()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Tool.Name)
	}
	s.AddTools(tools...)
	return names
}

// Checkpoint saves the research memory to the archive. Calls are serialized.
func (c *Catalog) Checkpoint(ctx context.Context) error {
	c.checkpointMu.Lock()
	defer c.checkpointMu.Unlock()
	return archivex.Checkpoint(ctx, c.archive, c.memory)
}

func symphonyTool() mcp.Tool {
	return mcp.NewTool(ToolSymphony,
		mcp.WithDescription("Orchestrate multiple seekers to research a topic, detect where they agree and synthesize the result"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to research"),
		),
		mcp.WithArray("seekers",
			mcp.Description("Which seekers to use (default: all)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("resonanceThreshold",
			mcp.Description("Similarity threshold for resonance detection (0-1, default 0.3)"),
		),
		mcp.WithBoolean("parallel",
			mcp.Description("Run seekers in parallel (default true)"),
		),
	)
}

func seekTool(name string) mcp.Tool {
	desc := seekerx.Describe(name)
	if desc == "" {
		desc = fmt.Sprintf("Use the %s seeker directly", name)
	} else {
		desc = fmt.Sprintf("Use the %s seeker directly: %s", name, desc)
	}
	return mcp.NewTool(SeekToolName(name),
		mcp.WithDescription(desc),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to search for"),
		),
	)
}

func memorySearchTool() mcp.Tool {
	return mcp.NewTool(ToolMemorySearch,
		mcp.WithDescription("Search past research sessions by query similarity"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to search for in memory"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of sessions to return (default %d, max %d)", memoryx.DefaultSimilarLimit, memoryx.DefaultCapacity)),
		),
	)
}

func memoryInsightsTool() mcp.Tool {
	return mcp.NewTool(ToolMemoryInsights,
		mcp.WithDescription("Get aggregate insights from research history"),
	)
}
