// Package sqlite persists decoded matches in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tagpro-science/tp-dissect/dissect"
	"github.com/tagpro-science/tp-dissect/store/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists matches, their merged event logs and scoreboards.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite match store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

var eventColumns = append(append([]string{"seq"}, dissect.EventColumns(nil)...), "score")

// SaveMatch replaces everything stored for m's match id with m.
func (s *Store) SaveMatch(ctx context.Context, m *dissect.MatchReader) (err error) {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	score, err := json.Marshal(m.Score)
	if err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin match transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM matches WHERE match_id = ?", m.Match.ID); err != nil {
		return fmt.Errorf("delete match %s: %w", m.Match.ID, err)
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO matches (match_id, date, map_id, duration, score) VALUES (?, ?, ?, ?, ?)",
		m.Match.ID, m.Match.Timestamp.Unix(), m.Match.MapID, m.Match.Duration, string(score),
	); err != nil {
		return fmt.Errorf("insert match %s: %w", m.Match.ID, err)
	}

	events, err := tx.PrepareContext(ctx, insertSQL("events", eventColumns))
	if err != nil {
		return fmt.Errorf("prepare events: %w", err)
	}
	defer events.Close()
	for i, e := range m.Events {
		eventScore, err := json.Marshal(e.Score)
		if err != nil {
			return err
		}
		row := append([]any{i}, e.Values(nil)...)
		row = append(row, string(eventScore))
		if _, err = events.ExecContext(ctx, sqliteValues(row)...); err != nil {
			return fmt.Errorf("insert event %d of match %s: %w", i, m.Match.ID, err)
		}
	}

	scoreboards, err := tx.PrepareContext(ctx, insertSQL("scoreboards", dissect.ScoreboardColumns))
	if err != nil {
		return fmt.Errorf("prepare scoreboards: %w", err)
	}
	defer scoreboards.Close()
	for _, sb := range m.Scoreboards {
		if _, err = scoreboards.ExecContext(ctx, sqliteValues(sb.Values())...); err != nil {
			return fmt.Errorf("insert scoreboard %q of match %s: %w", sb.Name, m.Match.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit match %s: %w", m.Match.ID, err)
	}
	log.Debug().Str("match", m.Match.ID).Int("events", len(m.Events)).Msg("sqlite_saved")
	return nil
}

// CountEvents returns how many events are stored for matchID, by event name.
func (s *Store) CountEvents(ctx context.Context, matchID string) (map[string]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT event, COUNT(*) FROM events WHERE match_id = ? GROUP BY event", matchID)
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

// FinalScore returns the stored final score of matchID.
func (s *Store) FinalScore(ctx context.Context, matchID string) (map[dissect.Team]int, error) {
	var raw string
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT score FROM matches WHERE match_id = ?", matchID).Scan(&raw); err != nil {
		return nil, err
	}
	score := make(map[dissect.Team]int)
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return nil, err
	}
	return score, nil
}

func insertSQL(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
}

// sqliteValues stores times as unix seconds.
func sqliteValues(row []any) []any {
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			row[i] = t.Unix()
		}
	}
	return row
}
