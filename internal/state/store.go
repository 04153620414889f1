// Package state persists sync bookkeeping in SQLite: the change cache, the
// publish history and the run log.
package state

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_cache (
	notion_id TEXT PRIMARY KEY,
	last_edited_time TEXT NOT NULL,
	fingerprint TEXT NOT NULL DEFAULT '',
	synced_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS published (
	notion_id TEXT PRIMARY KEY,
	slug TEXT NOT NULL,
	category TEXT NOT NULL,
	file_path TEXT NOT NULL,
	published_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_published_category ON published(category);
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	mode TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	written INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	deleted INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Store is a SQLite backed state store. Use ":memory:" for an ephemeral store.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.StateError("failed to create state directory").WithCause(err).WithContext("path", path).Build()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.StateError("could not open state database").WithCause(err).WithContext("path", path).Build()
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.StateError("failed to initialize state schema").WithCause(err).WithContext("path", path).Build()
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func queryError(op string, err error) error {
	return errors.StateError("state query failed").WithCause(err).WithContext("op", op).Build()
}

// GetCache returns the cache entry of a page; ok is false when there is none.
func (s *Store) GetCache(ctx context.Context, notionID string) (CacheEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := CacheEntry{NotionID: notionID}
	var synced int64
	err := s.db.QueryRowContext(ctx,
		"SELECT last_edited_time, fingerprint, synced_at FROM sync_cache WHERE notion_id = ?", notionID,
	).Scan(&e.LastEditedTime, &e.Fingerprint, &synced)
	if stderrors.Is(err, sql.ErrNoRows) {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, queryError("get_cache", err)
	}
	e.SyncedAt = time.Unix(synced, 0).UTC()
	return e, true, nil
}

// PutCache inserts or replaces a cache entry. A zero SyncedAt is set to now.
func (s *Store) PutCache(ctx context.Context, e CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.SyncedAt.IsZero() {
		e.SyncedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_cache (notion_id, last_edited_time, fingerprint, synced_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(notion_id) DO UPDATE SET last_edited_time = excluded.last_edited_time,
		 fingerprint = excluded.fingerprint, synced_at = excluded.synced_at`,
		e.NotionID, e.LastEditedTime, e.Fingerprint, e.SyncedAt.Unix(),
	)
	if err != nil {
		return queryError("put_cache", err)
	}
	return nil
}

// DeleteCache removes a cache entry.
func (s *Store) DeleteCache(ctx context.Context, notionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sync_cache WHERE notion_id = ?", notionID); err != nil {
		return queryError("delete_cache", err)
	}
	return nil
}

// GetPublished returns the publish record of a page; ok is false when there is none.
func (s *Store) GetPublished(ctx context.Context, notionID string) (PublishRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := PublishRecord{NotionID: notionID}
	var at int64
	err := s.db.QueryRowContext(ctx,
		"SELECT slug, category, file_path, published_at FROM published WHERE notion_id = ?", notionID,
	).Scan(&r.Slug, &r.Category, &r.FilePath, &at)
	if stderrors.Is(err, sql.ErrNoRows) {
		return PublishRecord{}, false, nil
	}
	if err != nil {
		return PublishRecord{}, false, queryError("get_published", err)
	}
	r.PublishedAt = time.Unix(at, 0).UTC()
	return r, true, nil
}

// PutPublished inserts or replaces a publish record. A zero PublishedAt is set to now.
func (s *Store) PutPublished(ctx context.Context, r PublishRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.PublishedAt.IsZero() {
		r.PublishedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO published (notion_id, slug, category, file_path, published_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(notion_id) DO UPDATE SET slug = excluded.slug, category = excluded.category,
		 file_path = excluded.file_path, published_at = excluded.published_at`,
		r.NotionID, r.Slug, r.Category, r.FilePath, r.PublishedAt.Unix(),
	)
	if err != nil {
		return queryError("put_published", err)
	}
	return nil
}

// DeletePublished removes a publish record.
func (s *Store) DeletePublished(ctx context.Context, notionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM published WHERE notion_id = ?", notionID); err != nil {
		return queryError("delete_published", err)
	}
	return nil
}

// ListPublished returns every publish record ordered by category and slug.
func (s *Store) ListPublished(ctx context.Context) ([]PublishRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT notion_id, slug, category, file_path, published_at FROM published ORDER BY category, slug")
	if err != nil {
		return nil, queryError("list_published", err)
	}
	defer func() { _ = rows.Close() }()

	var out []PublishRecord
	for rows.Next() {
		var r PublishRecord
		var at int64
		if err := rows.Scan(&r.NotionID, &r.Slug, &r.Category, &r.FilePath, &at); err != nil {
			return nil, queryError("scan_published", err)
		}
		r.PublishedAt = time.Unix(at, 0).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate_published", err)
	}
	return out, nil
}

// SlugsInCategory returns the recorded slugs of one category, excluding the given page.
func (s *Store) SlugsInCategory(ctx context.Context, category, excludeNotionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT slug FROM published WHERE category = ? AND notion_id != ? ORDER BY slug", category, excludeNotionID)
	if err != nil {
		return nil, queryError("slugs_in_category", err)
	}
	defer func() { _ = rows.Close() }()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, queryError("scan_slug", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate_slugs", err)
	}
	return slugs, nil
}

// RecordRun stores the summary of a finished run.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, mode, started_at, finished_at, written, skipped, deleted, failed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Mode, r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli(), r.Written, r.Skipped, r.Deleted, r.Failed, r.Error,
	)
	if err != nil {
		return queryError("record_run", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, started_at, finished_at, written, skipped, deleted, failed, error
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, queryError("recent_runs", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Mode, &started, &finished, &r.Written, &r.Skipped, &r.Deleted, &r.Failed, &r.Error); err != nil {
			return nil, queryError("scan_run", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate_runs", err)
	}
	return out, nil
}
