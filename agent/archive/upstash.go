package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	memoryx "github.com/tanpawarit/symphony/agent/memory"
)

const (
	defaultSnapshotKey   = "symphony:memory"
	maxResponseSizeBytes = 4 << 20
)

type UpstashOption func(*UpstashArchive)

func WithKey(key string) UpstashOption {
	return func(a *UpstashArchive) {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			a.key = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) UpstashOption {
	return func(a *UpstashArchive) {
		a.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(a *UpstashArchive) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// UpstashArchive keeps the snapshot as one JSON string in Upstash Redis,
// reached over its REST API.
type UpstashArchive struct {
	baseURL    string
	token      string
	httpClient *http.Client
	key        string
	ttl        time.Duration
}

var _ Archive = (*UpstashArchive)(nil)

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Key     string        `envconfig:"KEY" split_words:"true" default:"symphony:memory"`
	TTL     time.Duration `envconfig:"TTL" split_words:"true" default:"0s"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashArchive(cfg UpstashConfig, opts ...UpstashOption) (*UpstashArchive, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	a := &UpstashArchive{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		key: defaultSnapshotKey,
		ttl: cfg.TTL,
	}
	if k := strings.TrimSpace(cfg.Key); k != "" {
		a.key = k
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	if a.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}

	return a, nil
}

func (a *UpstashArchive) Load(ctx context.Context) ([]memoryx.Record, error) {
	resp, err := a.exec(ctx, []any{"GET", a.key})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrSnapshotNotFound
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode memory payload: %w", err)
	}

	var records []memoryx.Record
	if err := json.Unmarshal([]byte(encoded), &records); err != nil {
		return nil, fmt.Errorf("unmarshal memory snapshot: %w", err)
	}
	return records, nil
}

func (a *UpstashArchive) Save(ctx context.Context, records []memoryx.Record) error {
	if records == nil {
		records = []memoryx.Record{}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal memory snapshot: %w", err)
	}

	cmd := []any{"SET", a.key, string(payload)}
	if a.ttl > 0 {
		cmd = append(cmd, "EX", ttlSeconds(a.ttl))
	}

	_, err = a.exec(ctx, cmd)
	return err
}

func (a *UpstashArchive) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if a == nil {
		return nil, errors.New("nil archive")
	}
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
