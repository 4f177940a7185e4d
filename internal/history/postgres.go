package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jomardyan/ToolBox/internal/config"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS conversion_history (
	id           UUID PRIMARY KEY,
	operation    TEXT NOT NULL,
	source       TEXT,
	target       TEXT,
	bytes_in     INTEGER NOT NULL DEFAULT 0,
	bytes_out    INTEGER NOT NULL DEFAULT 0,
	row_count    INTEGER NOT NULL DEFAULT 0,
	duration_ms  BIGINT NOT NULL DEFAULT 0,
	error_code   TEXT,
	client_ip    TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createIndexSQL = `
CREATE INDEX IF NOT EXISTS conversion_history_created_at_idx
	ON conversion_history (created_at DESC)`

const insertSQL = `
INSERT INTO conversion_history
	(id, operation, source, target, bytes_in, bytes_out, row_count, duration_ms, error_code, client_ip, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const recentSQL = `
SELECT id, operation, source, target, bytes_in, bytes_out, row_count, duration_ms, error_code, client_ip, created_at
FROM conversion_history
ORDER BY created_at DESC
LIMIT $1`

// PostgresStore writes entries to the conversion_history table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps db. Call Migrate once before use.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the history table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create conversion_history: %w", err)
	}
	if _, err := s.db.Exec(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("create conversion_history index: %w", err)
	}
	return nil
}

// Record inserts e.
func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	_, err := s.db.Exec(ctx, insertSQL,
		pgtype.UUID{Bytes: e.ID, Valid: true},
		e.Operation,
		toPgText(e.Source),
		toPgText(e.Target),
		e.BytesIn,
		e.BytesOut,
		e.Rows,
		e.DurationMs,
		toPgText(e.ErrorCode),
		toPgText(e.ClientIP),
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultMemoryCapacity
	}

	rows, err := s.db.Query(ctx, recentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			id                             pgtype.UUID
			source, target, code, clientIP pgtype.Text
			createdAt                      pgtype.Timestamptz
			e                              Entry
		)
		if err := rows.Scan(&id, &e.Operation, &source, &target,
			&e.BytesIn, &e.BytesOut, &e.Rows, &e.DurationMs,
			&code, &clientIP, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.ID = fromPgUUID(id)
		e.Source = source.String
		e.Target = target.String
		e.ErrorCode = code.String
		e.ClientIP = clientIP.String
		e.CreatedAt = createdAt.Time
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// NewPool opens and pings a pgx pool sized from cfg.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func fromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}
