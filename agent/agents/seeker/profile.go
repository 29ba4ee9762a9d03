package seeker

import (
	contractx "github.com/tanpawarit/symphony/agent/contract"
	"github.com/tanpawarit/symphony/pkg/exa"
)

// Profile describes how one seeker phrases its Exa search and how much it
// trusts what comes back.
type Profile struct {
	Name           string
	Description    string
	QuerySuffix    string
	Category       string
	IncludeDomains []string
	NumResults     int
	MaxCharacters  int
	Livecrawl      string
	// Confidence is used when Exa reports no positive score, or always when
	// FixedConfidence is set.
	Confidence      float64
	FixedConfidence bool
}

const (
	defaultNumResults    = 5
	defaultMaxCharacters = 3000
	livecrawlPreferred   = "preferred"
	livecrawlAlways      = "always"
)

var (
	TruthProfile = Profile{
		Name:          contractx.SeekerTruth,
		Description:   "Direct web search for facts and current information",
		NumResults:    defaultNumResults,
		MaxCharacters: defaultMaxCharacters,
		Livecrawl:     livecrawlPreferred,
		Confidence:    0.8,
	}

	ScholarProfile = Profile{
		Name:          contractx.SeekerScholar,
		Description:   "Academic papers and research",
		QuerySuffix:   "site:arxiv.org OR site:scholar.google.com OR site:pubmed.ncbi.nlm.nih.gov OR site:researchgate.net",
		Category:      "research paper",
		NumResults:    defaultNumResults,
		MaxCharacters: defaultMaxCharacters,
		Livecrawl:     livecrawlPreferred,
		Confidence:    0.85,
	}

	CommerceProfile = Profile{
		Name:          contractx.SeekerCommerce,
		Description:   "Companies, business and market information",
		QuerySuffix:   "company business revenue funding",
		Category:      "company",
		NumResults:    defaultNumResults,
		MaxCharacters: defaultMaxCharacters,
		Livecrawl:     livecrawlPreferred,
		Confidence:    0.75,
	}

	RivalProfile = Profile{
		Name:          contractx.SeekerRival,
		Description:   "Competitors and competitive intelligence",
		QuerySuffix:   `competitors "similar to" "alternative to" "vs" market share`,
		NumResults:    defaultNumResults,
		MaxCharacters: defaultMaxCharacters,
		Livecrawl:     livecrawlPreferred,
		Confidence:    0.7,
	}

	NetworkProfile = Profile{
		Name:           contractx.SeekerNetwork,
		Description:    "Professional network profiles and companies",
		QuerySuffix:    "site:linkedin.com",
		IncludeDomains: []string{"linkedin.com", "www.linkedin.com"},
		NumResults:     defaultNumResults,
		MaxCharacters:  defaultMaxCharacters,
		Livecrawl:      livecrawlPreferred,
		Confidence:     0.7,
	}

	LoreProfile = Profile{
		Name:            contractx.SeekerLore,
		Description:     "Established knowledge from Wikipedia",
		QuerySuffix:     "site:wikipedia.org",
		IncludeDomains:  []string{"wikipedia.org", "en.wikipedia.org"},
		NumResults:      defaultNumResults,
		MaxCharacters:   defaultMaxCharacters,
		Livecrawl:       livecrawlPreferred,
		Confidence:      0.9,
		FixedConfidence: true,
	}

	// SourceProfile backs the source seeker's search fallback. Direct URL
	// crawls use sourceCrawlConfidence instead.
	SourceProfile = Profile{
		Name:            contractx.SeekerSource,
		Description:     "Content extracted directly from URLs",
		NumResults:      3,
		MaxCharacters:   5000,
		Livecrawl:       livecrawlAlways,
		Confidence:      0.9,
		FixedConfidence: true,
	}

	// GitHubProfile is not a seeker. It backs the github_search_exa tool.
	GitHubProfile = Profile{
		Name:           "github",
		Description:    "GitHub repositories and code",
		QuerySuffix:    "site:github.com",
		IncludeDomains: []string{"github.com"},
		NumResults:     defaultNumResults,
		MaxCharacters:  defaultMaxCharacters,
		Livecrawl:      livecrawlPreferred,
		Confidence:     0.8,
	}
)

// SearchRequest builds the Exa search for q. A positive numResults overrides
// the profile default.
func (p Profile) SearchRequest(q string, numResults int) exa.SearchRequest {
	if numResults <= 0 {
		numResults = p.NumResults
	}
	return exa.SearchRequest{
		Query:          p.query(q),
		Type:           "auto",
		Category:       p.Category,
		IncludeDomains: p.IncludeDomains,
		NumResults:     numResults,
		Contents: exa.SearchContents{
			Text:      exa.TextOptions{MaxCharacters: p.MaxCharacters},
			Livecrawl: p.Livecrawl,
		},
	}
}

func (p Profile) query(q string) string {
	if p.QuerySuffix == "" {
		return q
	}
	return q + " " + p.QuerySuffix
}

func (p Profile) confidence(score *float64) float64 {
	c := p.Confidence
	if !p.FixedConfidence && score != nil && *score > 0 {
		c = *score
	}
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
