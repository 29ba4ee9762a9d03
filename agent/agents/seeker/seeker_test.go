package seeker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/symphony/agent/contract"
	"github.com/tanpawarit/symphony/pkg/exa"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeSearcher struct {
	searchResp   *exa.Response
	searchErr    error
	contentsResp *exa.Response
	contentsErr  error

	searches []exa.SearchRequest
	contents []exa.ContentsRequest
}

func (f *fakeSearcher) Search(ctx context.Context, req exa.SearchRequest) (*exa.Response, error) {
	f.searches = append(f.searches, req)
	return f.searchResp, f.searchErr
}

func (f *fakeSearcher) Contents(ctx context.Context, req exa.ContentsRequest) (*exa.Response, error) {
	f.contents = append(f.contents, req)
	return f.contentsResp, f.contentsErr
}

func score(v float64) *float64 { return &v }

func TestNewDefaultSetOrder(t *testing.T) {
	t.Parallel()

	seekers, err := NewDefaultSet(&fakeSearcher{})
	if err != nil {
		t.Fatalf("NewDefaultSet() error = %v", err)
	}

	want := []string{"truth", "scholar", "commerce", "source", "rival", "network", "lore"}
	if len(seekers) != len(want) {
		t.Fatalf("got %d seekers, want %d", len(seekers), len(want))
	}
	for i, s := range seekers {
		if s.Name() != want[i] {
			t.Fatalf("seekers[%d] = %q, want %q", i, s.Name(), want[i])
		}
		if Describe(s.Name()) == "" {
			t.Fatalf("missing description for %q", s.Name())
		}
	}
}

func TestNewRejectsUnknownSeeker(t *testing.T) {
	t.Parallel()

	if _, err := New("oracle", &fakeSearcher{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("New() error = %v, want ErrValidation", err)
	}
	if _, err := New("truth", nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("New() error = %v, want ErrValidation", err)
	}
}

func TestSeekRequestShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		wantQuery    string
		wantCategory string
		wantDomains  []string
	}{
		{name: "truth", wantQuery: "fusion"},
		{name: "scholar", wantQuery: "fusion site:arxiv.org OR site:scholar.google.com OR site:pubmed.ncbi.nlm.nih.gov OR site:researchgate.net", wantCategory: "research paper"},
		{name: "commerce", wantQuery: "fusion company business revenue funding", wantCategory: "company"},
		{name: "rival", wantQuery: `fusion competitors "similar to" "alternative to" "vs" market share`},
		{name: "network", wantQuery: "fusion site:linkedin.com", wantDomains: []string{"linkedin.com", "www.linkedin.com"}},
		{name: "lore", wantQuery: "fusion site:wikipedia.org", wantDomains: []string{"wikipedia.org", "en.wikipedia.org"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			searcher := &fakeSearcher{searchResp: &exa.Response{}}
			s, err := New(tc.name, searcher)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if _, err := s.Seek(context.Background(), "fusion"); err != nil {
				t.Fatalf("Seek() error = %v", err)
			}

			if len(searcher.searches) != 1 {
				t.Fatalf("expected one search, got %d", len(searcher.searches))
			}
			req := searcher.searches[0]
			if req.Query != tc.wantQuery {
				t.Fatalf("query = %q, want %q", req.Query, tc.wantQuery)
			}
			if req.Category != tc.wantCategory {
				t.Fatalf("category = %q, want %q", req.Category, tc.wantCategory)
			}
			if strings.Join(req.IncludeDomains, ",") != strings.Join(tc.wantDomains, ",") {
				t.Fatalf("includeDomains = %v, want %v", req.IncludeDomains, tc.wantDomains)
			}
			if req.NumResults != 5 || req.Contents.Text.MaxCharacters != 3000 || req.Contents.Livecrawl != "preferred" {
				t.Fatalf("unexpected request options: %#v", req)
			}
		})
	}
}

func TestSeekConfidence(t *testing.T) {
	t.Parallel()

	results := []exa.Result{
		{Title: "scored", Text: "a", Score: score(0.42)},
		{Title: "unscored", Text: "b"},
		{Title: "zero", Text: "c", Score: score(0)},
		{Title: "oversized", Text: "d", Score: score(3.5)},
	}

	tests := []struct {
		name string
		want []float64
	}{
		{name: "truth", want: []float64{0.42, 0.8, 0.8, 1}},
		{name: "scholar", want: []float64{0.42, 0.85, 0.85, 1}},
		{name: "commerce", want: []float64{0.42, 0.75, 0.75, 1}},
		{name: "rival", want: []float64{0.42, 0.7, 0.7, 1}},
		{name: "network", want: []float64{0.42, 0.7, 0.7, 1}},
		{name: "lore", want: []float64{0.9, 0.9, 0.9, 0.9}},
		{name: "source", want: []float64{0.9, 0.9, 0.9, 0.9}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			searcher := &fakeSearcher{searchResp: &exa.Response{Results: results}}
			s, err := New(tc.name, searcher, WithClock(fixedClock))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			findings, err := s.Seek(context.Background(), "topic")
			if err != nil {
				t.Fatalf("Seek() error = %v", err)
			}
			if len(findings) != len(tc.want) {
				t.Fatalf("got %d findings, want %d", len(findings), len(tc.want))
			}
			for i, f := range findings {
				if f.Confidence != tc.want[i] {
					t.Fatalf("findings[%d].Confidence = %v, want %v", i, f.Confidence, tc.want[i])
				}
				if f.Source != tc.name {
					t.Fatalf("findings[%d].Source = %q, want %q", i, f.Source, tc.name)
				}
				if !f.Timestamp.Equal(fixedNow) {
					t.Fatalf("findings[%d].Timestamp = %v", i, f.Timestamp)
				}
			}
		})
	}
}

func TestSeekWrapsFailure(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{searchErr: errors.New("boom")}
	s, err := New("truth", searcher)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	findings, err := s.Seek(context.Background(), "q")
	if !errors.Is(err, contractx.ErrSeekerFailed) {
		t.Fatalf("Seek() error = %v, want ErrSeekerFailed", err)
	}
	if findings != nil {
		t.Fatalf("expected no findings, got %v", findings)
	}
}

func TestSourceSeekerCrawlsURL(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		contentsResp: &exa.Response{Results: []exa.Result{{Text: "page body"}}},
	}
	s, err := New("source", searcher, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	findings, err := s.Seek(context.Background(), "https://example.com/report")
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if len(searcher.searches) != 0 {
		t.Fatalf("crawl hit must not search, got %d searches", len(searcher.searches))
	}
	if len(searcher.contents) != 1 || searcher.contents[0].IDs[0] != "https://example.com/report" || searcher.contents[0].Livecrawl != "always" {
		t.Fatalf("unexpected contents request: %#v", searcher.contents)
	}
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Content != "Content\n\npage body" || f.URL != "https://example.com/report" || f.Confidence != 0.95 {
		t.Fatalf("unexpected finding: %#v", f)
	}
}

func TestSourceSeekerFallsBackToSearch(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		contentsResp: &exa.Response{},
		searchResp:   &exa.Response{Results: []exa.Result{{Title: "T", Text: "x", URL: "https://a"}}},
	}
	s, err := New("source", searcher)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	findings, err := s.Seek(context.Background(), "http://empty.example")
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if len(searcher.searches) != 1 {
		t.Fatalf("expected search fallback, got %d searches", len(searcher.searches))
	}
	req := searcher.searches[0]
	if req.NumResults != 3 || req.Contents.Text.MaxCharacters != 5000 || req.Contents.Livecrawl != "always" {
		t.Fatalf("unexpected fallback request: %#v", req)
	}
	if len(findings) != 1 || findings[0].URL != "https://a" {
		t.Fatalf("unexpected findings: %#v", findings)
	}

	plain := &fakeSearcher{searchResp: &exa.Response{}}
	s, _ = New("source", plain)
	if _, err := s.Seek(context.Background(), "not a url"); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if len(plain.contents) != 0 || len(plain.searches) != 1 {
		t.Fatalf("plain query must only search: contents=%d searches=%d", len(plain.contents), len(plain.searches))
	}
}

func TestSeekAgainstExaServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		var req exa.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		fmt.Fprintf(w, `{"results":[{"title":"About %s","url":"https://example.com","text":"Solar adoption grows","score":0.61}]}`, req.Query)
	}))
	t.Cleanup(server.Close)

	client := exa.MustNew(exa.Config{APIKey: "key", BaseURL: server.URL}, exa.WithHTTPClient(server.Client()))
	s, err := New("truth", client)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	findings, err := s.Seek(context.Background(), "solar")
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if findings[0].Content != "About solar\n\nSolar adoption grows" || findings[0].Confidence != 0.61 {
		t.Fatalf("unexpected finding: %#v", findings[0])
	}
}

func TestProfileSearchRequest(t *testing.T) {
	t.Parallel()

	req := GitHubProfile.SearchRequest("vector db", 0)
	if req.Query != "vector db site:github.com" || req.NumResults != GitHubProfile.NumResults {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(req.IncludeDomains) != 1 || req.IncludeDomains[0] != "github.com" {
		t.Fatalf("IncludeDomains = %v", req.IncludeDomains)
	}

	req = ScholarProfile.SearchRequest("fusion", 9)
	if req.NumResults != 9 || req.Category != "research paper" || req.Type != "auto" {
		t.Fatalf("unexpected request: %+v", req)
	}

	for _, p := range Profiles() {
		if p.Name == GitHubProfile.Name {
			t.Fatal("github profile must not register as a seeker")
		}
	}
}
