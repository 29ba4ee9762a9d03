package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	conductorx "github.com/tanpawarit/symphony/agent/agents/conductor"
	contractx "github.com/tanpawarit/symphony/agent/contract"
	memoryx "github.com/tanpawarit/symphony/agent/memory"
)

func (c *Catalog) handleSymphony(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return symphonyError(err), nil
	}

	opts, err := parseSymphonyOptions(req.GetArguments())
	if err != nil {
		return symphonyError(err), nil
	}

	symphony, err := c.conductor.Perform(ctx, query, opts)
	if err != nil {
		return symphonyError(err), nil
	}

	c.afterPerform(ctx, symphony)

	return jsonResult(symphony)
}

// afterPerform records a finished symphony. Archive and notification
// failures are logged and never reach the caller.
func (c *Catalog) afterPerform(ctx context.Context, symphony *contractx.Symphony) {
	if c.memory == nil {
		return
	}
	c.memory.Remember(symphony)

	if err := c.Checkpoint(ctx); err != nil {
		log.Warn().Err(err).Str("symphony_id", symphony.ID).Msg("memory checkpoint failed")
	}

	if c.publisher != nil {
		resp, err := c.publisher.Publish(ctx, NewNotice(symphony))
		if err != nil {
			log.Warn().Err(err).Str("symphony_id", symphony.ID).Msg("symphony notification failed")
		} else {
			log.Debug().Str("symphony_id", symphony.ID).Str("message_id", resp.MessageID).Msg("symphony notification published")
		}
	}
}

func parseSymphonyOptions(args map[string]any) (conductorx.Options, error) {
	var opts conductorx.Options

	if raw, ok := args["seekers"]; ok && raw != nil {
		names, err := stringSlice(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: seekers: %v", contractx.ErrValidation, err)
		}
		opts.Seekers = names
	}

	if raw, ok := args["resonanceThreshold"]; ok && raw != nil {
		v, ok := raw.(float64)
		if !ok {
			return opts, fmt.Errorf("%w: resonanceThreshold must be a number", contractx.ErrValidation)
		}
		opts.ResonanceThreshold = &v
	}

	if raw, ok := args["parallel"]; ok && raw != nil {
		parallel, ok := raw.(bool)
		if !ok {
			return opts, fmt.Errorf("%w: parallel must be a boolean", contractx.ErrValidation)
		}
		opts.Sequential = !parallel
	}

	return opts, nil
}

func stringSlice(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected array, got %T", raw)
	}
}

func (c *Catalog) seekHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return seekerError(err), nil
		}

		seeker, ok := c.conductor.Seeker(name)
		if !ok {
			return seekerError(fmt.Errorf("%w: seeker %q is not registered", contractx.ErrValidation, name)), nil
		}

		// A failed seeker reports no findings, the same as inside a symphony.
		findings, err := seeker.Seek(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("seeker", name).Msg("seeker failed")
			findings = nil
		}
		if findings == nil {
			findings = []contractx.Finding{}
		}
		return jsonResult(findings)
	}
}

func (c *Catalog) handleMemorySearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit := clampCount(req.GetArguments()["limit"], memoryx.DefaultSimilarLimit, memoryx.DefaultCapacity)

	records := []memoryx.Record{}
	if c.memory != nil {
		records = c.memory.FindSimilar(query, limit)
	}
	return jsonResult(records)
}

func (c *Catalog) handleMemoryInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var insights memoryx.Insights
	if c.memory != nil {
		insights = c.memory.Insights()
	}
	return jsonResult(insights)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func symphonyError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Symphony error: " + err.Error())
}

func seekerError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Seeker error: " + err.Error())
}
