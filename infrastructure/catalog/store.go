// Package catalog records processed videos and their chapters in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"chaptercut/domain/catalog"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const timeLayout = time.RFC3339

// SQLiteStore implements catalog.Store on a local SQLite database
type SQLiteStore struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at dbPath and applies migrations
func Open(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{conn: conn, logger: logger}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	for _, m := range migrations {
		if m.IsDir() {
			continue
		}
		name := m.Name()
		if s.isMigrationApplied(name) {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		s.logger.Debug("applied migration", "name", name)
	}
	return nil
}

func (s *SQLiteStore) isMigrationApplied(name string) bool {
	var exists int
	err := s.conn.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name='_migrations'").Scan(&exists)
	if err != nil {
		return false
	}

	var applied int
	err = s.conn.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}

// SaveRun implements catalog.Store. The video row is upserted and its chapters are
// replaced in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, v catalog.Video, chapters []catalog.Chapter) error {
	if v.ID == "" {
		return errors.New("video id is required")
	}
	if v.ProcessedAt.IsZero() {
		v.ProcessedAt = time.Now()
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO videos (video_id, url, title, total_duration, output_dir, processed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			total_duration = excluded.total_duration,
			output_dir = excluded.output_dir,
			processed_at = excluded.processed_at`,
		v.ID, v.URL, v.Title, v.Duration, v.OutputDir, v.ProcessedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save video %s: %w", v.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE video_id = ?", v.ID); err != nil {
		return fmt.Errorf("failed to clear chapters of %s: %w", v.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chapters (video_id, position, chapter_title, start_time, end_time, path)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chapter insert: %w", err)
	}
	defer stmt.Close()

	for i, ch := range chapters {
		if _, err := stmt.ExecContext(ctx, v.ID, i, ch.Title, ch.Start, ch.End, ch.Path); err != nil {
			return fmt.Errorf("failed to save chapter %q: %w", ch.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	s.logger.Debug("recorded run", "video_id", v.ID, "chapters", len(chapters))
	return nil
}

// List implements catalog.Store
func (s *SQLiteStore) List(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT v.video_id, v.url, v.title, v.total_duration, v.output_dir, v.processed_at, COUNT(c.id)
		FROM videos v
		LEFT JOIN chapters c ON c.video_id = v.video_id
		GROUP BY v.video_id
		ORDER BY v.processed_at DESC, v.video_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		var e catalog.Entry
		var processed string
		if err := rows.Scan(&e.ID, &e.URL, &e.Title, &e.Duration, &e.OutputDir, &processed, &e.ChapterCount); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		e.ProcessedAt, err = time.Parse(timeLayout, processed)
		if err != nil {
			return nil, fmt.Errorf("invalid processed_at %q for %s: %w", processed, e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Chapters implements catalog.Store
func (s *SQLiteStore) Chapters(ctx context.Context, videoID string) ([]catalog.Chapter, error) {
	var exists int
	err := s.conn.QueryRowContext(ctx, "SELECT 1 FROM videos WHERE video_id = ?", videoID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, videoID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", videoID, err)
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT chapter_title, start_time, end_time, path
		FROM chapters WHERE video_id = ? ORDER BY position`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	chapters := []catalog.Chapter{}
	for rows.Next() {
		var ch catalog.Chapter
		if err := rows.Scan(&ch.Title, &ch.Start, &ch.End, &ch.Path); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// Ensure SQLiteStore implements catalog.Store
var _ catalog.Store = (*SQLiteStore)(nil)
