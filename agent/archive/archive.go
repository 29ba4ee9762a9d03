// Package archive persists research memory snapshots outside the process.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	memoryx "github.com/tanpawarit/symphony/agent/memory"
)

var ErrSnapshotNotFound = errors.New("memory snapshot not found")

// Archive stores and restores the full contents of a research memory.
// Save replaces whatever snapshot was stored before.
type Archive interface {
	Save(ctx context.Context, records []memoryx.Record) error
	Load(ctx context.Context) ([]memoryx.Record, error)
}

const (
	BackendNone     = "none"
	BackendUpstash  = "upstash"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend  string `split_words:"true" default:"none"`
	Upstash  UpstashConfig
	Postgres PostgresConfig
}

// New returns the archive selected by cfg.Backend, or nil when archiving is
// disabled. The returned close func is never nil.
func New(cfg Config) (Archive, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return nil, noop, nil
	case BackendUpstash:
		a, err := NewUpstashArchive(cfg.Upstash)
		if err != nil {
			return nil, noop, err
		}
		return a, noop, nil
	case BackendPostgres:
		a, err := NewPostgresArchive(cfg.Postgres)
		if err != nil {
			return nil, noop, err
		}
		return a, a.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

// Restore loads the stored snapshot into store. A missing snapshot is not an
// error.
func Restore(ctx context.Context, a Archive, store *memoryx.Store) (int, error) {
	if a == nil || store == nil {
		return 0, nil
	}
	records, err := a.Load(ctx)
	if errors.Is(err, ErrSnapshotNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	store.Import(records)
	return len(records), nil
}

// Checkpoint writes the current contents of store.
func Checkpoint(ctx context.Context, a Archive, store *memoryx.Store) error {
	if a == nil || store == nil {
		return nil
	}
	return a.Save(ctx, store.Export())
}
