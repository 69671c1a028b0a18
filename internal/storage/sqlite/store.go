package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xtding233/sticker-gacha/internal/storage"
	"github.com/xtding233/sticker-gacha/internal/storage/sqlite/migrations"
)

// Store provides SQLite-backed session persistence.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.SessionStore = (*Store)(nil)

// Open opens (creating if needed) a session SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// SaveSession upserts one session record.
func (s *Store) SaveSession(ctx context.Context, rec storage.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	state, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", rec.ID, err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (id, state, balance, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	state = excluded.state,
	balance = excluded.balance,
	updated_at = excluded.updated_at`,
		rec.ID, string(state), rec.Balance, rec.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

// LoadSession returns the stored record or storage.ErrNotFound.
func (s *Store) LoadSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	if s == nil || s.sqlDB == nil {
		return storage.SessionRecord{}, fmt.Errorf("storage is not configured")
	}
	var (
		state     string
		balance   int
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT state, balance, updated_at FROM sessions WHERE id = ?", id,
	).Scan(&state, &balance, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.SessionRecord{}, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return storage.SessionRecord{}, fmt.Errorf("load session %s: %w", id, err)
	}

	var rec storage.SessionRecord
	if err := json.Unmarshal([]byte(state), &rec); err != nil {
		return storage.SessionRecord{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	rec.ID = id
	rec.Balance = balance
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return rec, nil
}

// DeleteExpired removes sessions not updated since before.
func (s *Store) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", before.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
