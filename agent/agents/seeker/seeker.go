// Package seeker provides the Exa-backed seekers the conductor fans out to.
package seeker

import (
	"context"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/symphony/agent/contract"
	"github.com/tanpawarit/symphony/pkg/exa"
)

const sourceCrawlConfidence = 0.95

// Searcher is the slice of the Exa client the seekers depend on.
type Searcher interface {
	Search(ctx context.Context, req exa.SearchRequest) (*exa.Response, error)
	Contents(ctx context.Context, req exa.ContentsRequest) (*exa.Response, error)
}

var _ Searcher = (*exa.Client)(nil)

type Option func(*options)

type options struct {
	now func() time.Time
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func resolveOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

type exaSeeker struct {
	profile Profile
	client  Searcher
	now     func() time.Time
}

var _ contractx.Seeker = (*exaSeeker)(nil)

func newExaSeeker(profile Profile, client Searcher, opts ...Option) *exaSeeker {
	o := resolveOptions(opts)
	return &exaSeeker{profile: profile, client: client, now: o.now}
}

func (s *exaSeeker) Name() string {
	return s.profile.Name
}

func (s *exaSeeker) Seek(ctx context.Context, query string) ([]contractx.Finding, error) {
	return search(ctx, s.client, s.profile, query, s.now)
}

func search(ctx context.Context, client Searcher, profile Profile, query string, now func() time.Time) ([]contractx.Finding, error) {
	resp, err := client.Search(ctx, profile.SearchRequest(query, 0))
	if err != nil {
		return nil, fmt.Errorf("%w: seeker=%s: %v", contractx.ErrSeekerFailed, profile.Name, err)
	}
	if resp == nil {
		return []contractx.Finding{}, nil
	}

	timestamp := now()
	findings := make([]contractx.Finding, 0, len(resp.Results))
	for _, result := range resp.Results {
		findings = append(findings, contractx.Finding{
			Source:     profile.Name,
			Content:    result.Title + "\n\n" + result.Text,
			URL:        result.URL,
			Confidence: profile.confidence(result.Score),
			Timestamp:  timestamp,
		})
	}
	return findings, nil
}

// sourceSeeker crawls the query directly when it is a URL and otherwise
// searches for pages about it.
type sourceSeeker struct {
	client Searcher
	now    func() time.Time
}

var _ contractx.Seeker = (*sourceSeeker)(nil)

func newSourceSeeker(client Searcher, opts ...Option) *sourceSeeker {
	o := resolveOptions(opts)
	return &sourceSeeker{client: client, now: o.now}
}

func (s *sourceSeeker) Name() string {
	return contractx.SeekerSource
}

func (s *sourceSeeker) Seek(ctx context.Context, query string) ([]contractx.Finding, error) {
	if isURL(query) {
		resp, err := s.client.Contents(ctx, exa.ContentsRequest{
			IDs:       []string{query},
			Text:      true,
			Livecrawl: livecrawlAlways,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: seeker=%s: crawl %s: %v", contractx.ErrSeekerFailed, contractx.SeekerSource, query, err)
		}
		if resp != nil && len(resp.Results) > 0 {
			result := resp.Results[0]
			title := result.Title
			if title == "" {
				title = "Content"
			}
			return []contractx.Finding{{
				Source:     contractx.SeekerSource,
				Content:    title + "\n\n" + result.Text,
				URL:        query,
				Confidence: sourceCrawlConfidence,
				Timestamp:  s.now(),
			}}, nil
		}
	}

	return search(ctx, s.client, SourceProfile, query, s.now)
}

func isURL(query string) bool {
	return strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://")
}
