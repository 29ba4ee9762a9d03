package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	memoryx "github.com/tanpawarit/symphony/agent/memory"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

type memoryRow struct {
	bun.BaseModel `bun:"table:research_memories,alias:rm"`

	Position          int       `bun:"position,pk"`
	SymphonyID        string    `bun:"symphony_id"`
	Query             string    `bun:"query,notnull"`
	RecordedAt        time.Time `bun:"recorded_at,notnull"`
	TopFindings       []string  `bun:"top_findings,array"`
	ResonanceStrength float64   `bun:"resonance_strength,notnull"`
	DurationNS        int64     `bun:"duration_ns,notnull"`
}

// PostgresArchive keeps one row per memory record in research_memories.
// Save replaces the whole table inside a transaction.
type PostgresArchive struct {
	db *bun.DB
}

var _ Archive = (*PostgresArchive)(nil)

func NewPostgresArchive(cfg PostgresConfig) (*PostgresArchive, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	return NewPostgresArchiveFromDB(bun.NewDB(sqldb, pgdialect.New())), nil
}

func NewPostgresArchiveFromDB(db *bun.DB) *PostgresArchive {
	return &PostgresArchive{db: db}
}

// Migrate creates the research_memories table when it does not exist.
func (a *PostgresArchive) Migrate(ctx context.Context) error {
	_, err := a.db.NewCreateTable().
		Model((*memoryRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create research_memories: %w", err)
	}
	return nil
}

func (a *PostgresArchive) Save(ctx context.Context, records []memoryx.Record) error {
	rows := toRows(records)
	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewTruncateTable().Model((*memoryRow)(nil)).Exec(ctx); err != nil {
			return fmt.Errorf("truncate research_memories: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert research_memories: %w", err)
		}
		return nil
	})
}

func (a *PostgresArchive) Load(ctx context.Context) ([]memoryx.Record, error) {
	var rows []memoryRow
	if err := a.db.NewSelect().Model(&rows).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select research_memories: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrSnapshotNotFound
	}
	return fromRows(rows), nil
}

func (a *PostgresArchive) Close() error {
	return a.db.Close()
}

func toRows(records []memoryx.Record) []memoryRow {
	rows := make([]memoryRow, 0, len(records))
	for i, rec := range records {
		rows = append(rows, memoryRow{
			Position:          i + 1,
			SymphonyID:        rec.SymphonyID,
			Query:             rec.Query,
			RecordedAt:        rec.Timestamp.UTC(),
			TopFindings:       append([]string{}, rec.TopFindings...),
			ResonanceStrength: rec.ResonanceStrength,
			DurationNS:        int64(rec.Duration),
		})
	}
	return rows
}

func fromRows(rows []memoryRow) []memoryx.Record {
	records := make([]memoryx.Record, 0, len(rows))
	for _, row := range rows {
		findings := row.TopFindings
		if findings == nil {
			findings = []string{}
		}
		records = append(records, memoryx.Record{
			SymphonyID:        row.SymphonyID,
			Query:             row.Query,
			Timestamp:         row.RecordedAt,
			TopFindings:       findings,
			ResonanceStrength: row.ResonanceStrength,
			Duration:          time.Duration(row.DurationNS),
		})
	}
	return records
}
