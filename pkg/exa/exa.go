package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var ErrMissingAPIKey = errors.New("exa api key is not configured")

const (
	DefaultBaseURL       = "https://api.exa.ai"
	APIKeyEnv            = "EXA_API_KEY"
	maxResponseSizeBytes = 8 << 20
)

type Config struct {
	APIKey  string        `envconfig:"API_KEY" split_words:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.exa.ai"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"25s"`
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client talks to the Exa search API over REST.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type TextOptions struct {
	MaxCharacters int `json:"maxCharacters,omitempty"`
}

type SearchContents struct {
	Text      TextOptions `json:"text"`
	Livecrawl string      `json:"livecrawl,omitempty"`
}

type SearchRequest struct {
	Query          string         `json:"query"`
	Type           string         `json:"type"`
	Category       string         `json:"category,omitempty"`
	IncludeDomains []string       `json:"includeDomains,omitempty"`
	ExcludeDomains []string       `json:"excludeDomains,omitempty"`
	NumResults     int            `json:"numResults"`
	Contents       SearchContents `json:"contents"`
}

type ContentsRequest struct {
	IDs       []string `json:"ids"`
	Text      bool     `json:"text"`
	Livecrawl string   `json:"livecrawl,omitempty"`
}

type Result struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Author        string   `json:"author,omitempty"`
	Text          string   `json:"text"`
	Score         *float64 `json:"score,omitempty"`
}

type Response struct {
	RequestID          string   `json:"requestId"`
	ResolvedSearchType string   `json:"resolvedSearchType,omitempty"`
	Results            []Result `json:"results"`
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid exa base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...ClientOption) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("exa search query is empty")
	}
	if req.Type == "" {
		req.Type = "auto"
	}
	return c.post(ctx, "/search", req)
}

func (c *Client) Contents(ctx context.Context, req ContentsRequest) (*Response, error) {
	if len(req.IDs) == 0 {
		return nil, errors.New("exa contents request has no ids")
	}
	return c.post(ctx, "/contents", req)
}

// key prefers the configured key and falls back to the environment so a key
// exported after start-up is still picked up.
func (c *Client) key() string {
	if c.apiKey != "" {
		return c.apiKey
	}
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Response, error) {
	if c == nil {
		return nil, errors.New("nil exa client")
	}
	apiKey := c.key()
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal exa request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build exa request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute exa request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read exa response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("exa http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode exa response: %w", err)
	}
	return &parsed, nil
}
