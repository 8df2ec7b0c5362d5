package sink

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

// Postgres mirrors written chunks into a table keyed by output name, so a
// rerun or a name collision overwrites the row just like the file.
type Postgres struct {
	db    *sql.DB
	table string
}

func NewPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &Postgres{db: db, table: pq.QuoteIdentifier(table)}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var _ Sink = (*Postgres)(nil)

func (s *Postgres) Name() string { return "postgres" }

func (s *Postgres) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("failed to create chunk table: %w", err)
	}
	return nil
}

func createTableSQL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
		id UUID PRIMARY KEY,
		source TEXT NOT NULL,
		name TEXT NOT NULL UNIQUE,
		ord INT NOT NULL,
		text TEXT NOT NULL,
		line_count INT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now()
	)`
}

func upsertSQL(table string) string {
	return `INSERT INTO ` + table + `(id, source, name, ord, text, line_count)
		VALUES($1,$2,$3,$4,$5,$6)
		ON CONFLICT (name) DO UPDATE SET
			id=excluded.id, source=excluded.source, ord=excluded.ord,
			text=excluded.text, line_count=excluded.line_count, created_at=now()`
}

func (s *Postgres) Write(ctx context.Context, c Chunk) error {
	_, err := s.db.ExecContext(ctx, upsertSQL(s.table),
		uuid.New(), c.Source, c.Name, c.Index, c.Text, c.Lines)
	return err
}

func (s *Postgres) Close() error {
	return s.db.Close()
}
