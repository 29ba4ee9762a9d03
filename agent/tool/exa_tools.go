package tool

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	seekerx "github.com/tanpawarit/symphony/agent/agents/seeker"
	"github.com/tanpawarit/symphony/pkg/exa"
)

const (
	ToolWebSearch           = "web_search_exa"
	ToolResearchPaperSearch = "research_paper_search_exa"
	ToolCompanyResearch     = "company_research_exa"
	ToolCrawling            = "crawling_exa"
	ToolCompetitorFinder    = "competitor_finder_exa"
	ToolLinkedInSearch      = "linkedin_search_exa"
	ToolWikipediaSearch     = "wikipedia_search_exa"
	ToolGitHubSearch        = "github_search_exa"

	maxSearchResults       = 25
	defaultCrawlCharacters = 3000
	crawlLivecrawl         = "always"
	searchErrorPrefix      = "Search error: "
	crawlErrorPrefix       = "Crawling error: "
	argNumResults          = "numResults"
)

// searchTool is a plain Exa search exposed without orchestration.
type searchTool struct {
	name        string
	description string
	profile     seekerx.Profile
}

// searchTools lists the profile-backed tools in registration order. The
// crawling tool is inserted separately after company research.
func searchTools() []searchTool {
	return []searchTool{
		{ToolWebSearch, "Search the web in real time using Exa AI", seekerx.TruthProfile},
		{ToolResearchPaperSearch, "Search academic papers and research", seekerx.ScholarProfile},
		{ToolCompanyResearch, "Research companies and organizations", seekerx.CommerceProfile},
		{ToolCompetitorFinder, "Find business competitors", seekerx.RivalProfile},
		{ToolLinkedInSearch, "Search LinkedIn profiles and companies", seekerx.NetworkProfile},
		{ToolWikipediaSearch, "Search Wikipedia articles", seekerx.LoreProfile},
		{ToolGitHubSearch, "Search GitHub repositories and code", seekerx.GitHubProfile},
	}
}

func (c *Catalog) exaTools() []server.ServerTool {
	if c.searcher == nil {
		return nil
	}
	out := make([]server.ServerTool, 0, len(searchTools())+1)
	for _, st := range searchTools() {
		out = append(out, server.ServerTool{Tool: st.definition(), Handler: c.searchHandler(st)})
		if st.name == ToolCompanyResearch {
			out = append(out, server.ServerTool{Tool: crawlingTool(), Handler: c.handleCrawling})
		}
	}
	return out
}

func (st searchTool) definition() mcp.Tool {
	return mcp.NewTool(st.name,
		mcp.WithDescription(st.description),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber(argNumResults,
			mcp.Description(fmt.Sprintf("Number of results to return (default %d, max %d)", st.profile.NumResults, maxSearchResults)),
		),
	)
}

func crawlingTool() mcp.Tool {
	return mcp.NewTool(ToolCrawling,
		mcp.WithDescription("Extract content from a specific URL"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL to crawl"),
		),
		mcp.WithNumber("maxCharacters",
			mcp.Description(fmt.Sprintf("Maximum characters of page text (default %d)", defaultCrawlCharacters)),
		),
	)
}

func (c *Catalog) searchHandler(st searchTool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(searchErrorPrefix + err.Error()), nil
		}

		numResults := clampCount(req.GetArguments()[argNumResults], st.profile.NumResults, maxSearchResults)
		resp, err := c.searcher.Search(ctx, st.profile.SearchRequest(query, numResults))
		if err != nil {
			log.Warn().Err(err).Str("tool", st.name).Msg("exa search failed")
			return mcp.NewToolResultError(searchErrorPrefix + err.Error()), nil
		}
		return jsonResult(normalizeResponse(resp))
	}
}

func (c *Catalog) handleCrawling(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(crawlErrorPrefix + err.Error()), nil
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return mcp.NewToolResultError(crawlErrorPrefix + "url is empty"), nil
	}

	// The contents request only carries a text flag, so the cap is applied here.
	maxChars := clampCount(req.GetArguments()["maxCharacters"], defaultCrawlCharacters, math.MaxInt32)
	resp, err := c.searcher.Contents(ctx, exa.ContentsRequest{
		IDs:       []string{target},
		Text:      true,
		Livecrawl: crawlLivecrawl,
	})
	if err != nil {
		log.Warn().Err(err).Str("tool", ToolCrawling).Str("url", target).Msg("exa crawl failed")
		return mcp.NewToolResultError(crawlErrorPrefix + err.Error()), nil
	}

	resp = normalizeResponse(resp)
	for i := range resp.Results {
		resp.Results[i].Text = clipRunes(resp.Results[i].Text, maxChars)
	}
	return jsonResult(resp)
}

func normalizeResponse(resp *exa.Response) *exa.Response {
	if resp == nil {
		resp = &exa.Response{}
	}
	if resp.Results == nil {
		resp.Results = []exa.Result{}
	}
	return resp
}

// clampCount reads an optional JSON number. Missing, non-numeric or
// non-positive values yield def; anything else is rounded into [1, upper].
func clampCount(raw any, def, upper int) int {
	v, ok := raw.(float64)
	if !ok || math.IsNaN(v) || v <= 0 {
		return def
	}
	if v >= float64(upper) {
		return upper
	}
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}

func clipRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
