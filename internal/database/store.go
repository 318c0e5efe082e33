// Package database persists finished matches to Postgres. The store
// is optional: the server runs without a DATABASE_URL and simply skips
// persistence.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id          UUID PRIMARY KEY,
	human_count INT         NOT NULL,
	outcome     TEXT        NOT NULL,
	winner_seat INT,
	turn_count  INT         NOT NULL,
	points      INT[]       NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS matches_finished_at_idx ON matches (finished_at DESC);
`

// MatchRecord is one finished match row.
type MatchRecord struct {
	ID         uuid.UUID
	HumanCount int
	Outcome    string
	WinnerSeat *int // nil when the match had no single winner
	TurnCount  int
	Points     []int
	FinishedAt time.Time
}

// Store wraps the Postgres connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the given DSN and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the matches table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveMatch inserts one finished match.
func (s *Store) SaveMatch(ctx context.Context, rec MatchRecord) error {
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO matches (id, human_count, outcome, winner_seat, turn_count, points, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.HumanCount, rec.Outcome, rec.WinnerSeat, rec.TurnCount, rec.Points, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save match %s: %w", rec.ID, err)
	}
	return nil
}

// RecentMatches returns the most recently finished matches, newest
// first.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, human_count, outcome, winner_seat, turn_count, points, finished_at
		 FROM matches ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(&rec.ID, &rec.HumanCount, &rec.Outcome, &rec.WinnerSeat, &rec.TurnCount, &rec.Points, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
