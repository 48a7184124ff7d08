package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"go.uber.org/zap"

	"moodtune/internal/core"
)

const recentMoodsSchema = `
CREATE TABLE IF NOT EXISTS recent_moods (
	mood    TEXT PRIMARY KEY,
	used_at INTEGER NOT NULL,
	seq     INTEGER NOT NULL
)`

// RecentMoodStore keeps the most recently used moods in SQLite, most recent first and
// without duplicates.
type RecentMoodStore struct {
	db     *sql.DB
	limit  int
	logger *zap.Logger
	now    func() time.Time
}

// OpenRecentMoodStore opens (or creates) the database at path and migrates its schema.
// Use ":memory:" for a throwaway store.
func OpenRecentMoodStore(path string, limit int, logger *zap.Logger) (*RecentMoodStore, error) {
	if limit <= 0 {
		limit = core.DefaultRecentMoodsLimit
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec(recentMoodsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &RecentMoodStore{
		db:     db,
		limit:  limit,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close closes the database.
func (s *RecentMoodStore) Close() error {
	return s.db.Close()
}

// Record moves mood to the front of the list and trims the list to its limit.
func (s *RecentMoodStore) Record(ctx context.Context, mood string) error {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return core.ErrEmptyMood
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// seq orders entries recorded within the same millisecond.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO recent_moods (mood, used_at, seq)
		VALUES (?, ?, (SELECT IFNULL(MAX(seq), 0) + 1 FROM recent_moods))
		ON CONFLICT(mood) DO UPDATE SET used_at = excluded.used_at, seq = excluded.seq
	`, mood, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record mood: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM recent_moods
		WHERE mood NOT IN (SELECT mood FROM recent_moods ORDER BY seq DESC LIMIT ?)
	`, s.limit)
	if err != nil {
		return fmt.Errorf("failed to trim recent moods: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mood: %w", err)
	}

	s.logger.Debug("Recorded mood", zap.String("mood", mood))
	return nil
}

// List returns the recent moods, most recent first.
func (s *RecentMoodStore) List(ctx context.Context) ([]core.RecentMood, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT mood, used_at FROM recent_moods ORDER BY seq DESC LIMIT ?", s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent moods: %w", err)
	}
	defer rows.Close()

	moods := []core.RecentMood{}
	for rows.Next() {
		var mood string
		var usedAt int64
		if err := rows.Scan(&mood, &usedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent mood: %w", err)
		}
		moods = append(moods, core.RecentMood{Mood: mood, UsedAt: time.UnixMilli(usedAt)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent moods: %w", err)
	}

	return moods, nil
}
