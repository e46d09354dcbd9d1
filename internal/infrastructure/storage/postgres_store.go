package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

// PostgresStore persists report documents as jsonb rows keyed by collection
// and document key, with upsert semantics so every run overwrites the
// previous snapshot for a source.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// Open connects to Postgres and verifies the connection. An empty DSN
// returns a nil store; callers treat that as "persistence disabled".
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Put upserts one document snapshot.
func (s *PostgresStore) Put(ctx context.Context, collection, key string, doc any) error {
	if s == nil || s.db == nil {
		return nil
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	query, args, err := s.builder.
		Insert("documents").
		Columns("collection", "doc_key", "body", "updated_at").
		Values(collection, key, payload, sq.Expr("NOW()")).
		Suffix(`ON CONFLICT (collection, doc_key) DO UPDATE
		        SET body = EXCLUDED.body,
		            updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
