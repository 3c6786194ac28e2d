// Package postgres persists decoded matches in PostgreSQL, loading event
// logs and scoreboards with COPY.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tagpro-science/tp-dissect/dissect"
)

//go:embed schema.sql
var schema string

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dbURL and creates the tables when they are missing.
func Open(ctx context.Context, dbURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

var eventColumns = append(append([]string{"seq"}, dissect.EventColumns(nil)...), "score")

// SaveMatch replaces everything stored for m's match id with m.
func (s *Store) SaveMatch(ctx context.Context, m *dissect.MatchReader) error {
	score, err := json.Marshal(m.Score)
	if err != nil {
		return err
	}
	events := make([][]any, 0, len(m.Events))
	for i, e := range m.Events {
		eventScore, err := json.Marshal(e.Score)
		if err != nil {
			return err
		}
		row := append([]any{i}, e.Values(nil)...)
		events = append(events, append(row, eventScore))
	}
	scoreboards := make([][]any, 0, len(m.Scoreboards))
	for _, sb := range m.Scoreboards {
		scoreboards = append(scoreboards, sb.Values())
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM matches WHERE match_id = $1", m.Match.ID); err != nil {
			return fmt.Errorf("delete match %s: %w", m.Match.ID, err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO matches (match_id, date, map_id, duration, score) VALUES ($1, $2, $3, $4, $5)",
			m.Match.ID, m.Match.Timestamp, m.Match.MapID, m.Match.Duration, score,
		); err != nil {
			return fmt.Errorf("insert match %s: %w", m.Match.ID, err)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"events"}, eventColumns, pgx.CopyFromRows(events))
		if err != nil {
			return fmt.Errorf("copy events of match %s: %w", m.Match.ID, err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"scoreboards"}, dissect.ScoreboardColumns, pgx.CopyFromRows(scoreboards)); err != nil {
			return fmt.Errorf("copy scoreboards of match %s: %w", m.Match.ID, err)
		}
		log.Debug().Str("match", m.Match.ID).Int64("events", n).Msg("postgres_saved")
		return nil
	})
}

// CountEvents returns how many events are stored for matchID, by event name.
func (s *Store) CountEvents(ctx context.Context, matchID string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, "SELECT event, COUNT(*) FROM events WHERE match_id = $1 GROUP BY event", matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
