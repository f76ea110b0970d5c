// Package storage persists user records in SQLite. Each user's full record
// is stored as a single JSON document so a save or pull replaces the whole
// thing atomically, matching how records move over the wire.
package storage

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

	"lootledger/internal/core"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the SQLite database at dbPath and
// applies migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// CreateUser inserts a new user. Returns ErrUsernameTaken when the username
// already exists.
func (r *Repository) CreateUser(ctx context.Context, username, pinHash string, rec *core.UserRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (username, pin_hash, record, last_updated) VALUES (?, ?, ?, ?)`,
		username, pinHash, string(doc), rec.LastUpdated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser loads a user's PIN hash and record. Returns ErrNotFound when the
// username does not exist.
func (r *Repository) GetUser(ctx context.Context, username string) (string, *core.UserRecord, error) {
	var pinHash, doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT pin_hash, record FROM users WHERE username = ?`, username,
	).Scan(&pinHash, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("query user: %w", err)
	}

	var rec core.UserRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return "", nil, fmt.Errorf("unmarshal record for %s: %w", username, err)
	}
	if rec.Records == nil {
		rec.Records = make(map[core.Day]*core.Snapshot)
	}
	return pinHash, &rec, nil
}

// SaveRecord replaces the stored record document for an existing user.
func (r *Repository) SaveRecord(ctx context.Context, username string, rec *core.UserRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET record = ?, last_updated = ? WHERE username = ?`,
		string(doc), rec.LastUpdated.UTC().Format(time.RFC3339Nano), username,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UserCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ?`, username,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query username: %w", err)
	}
	return true, nil
}

func (r *Repository) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list usernames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// BackupRecord keeps the latest pre-overwrite copy of a user's record, one
// per user. A pull replaces the previous backup.
func (r *Repository) BackupRecord(ctx context.Context, username string, rec *core.UserRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO record_backups (username, record, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET record = excluded.record, created_at = excluded.created_at`,
		username, string(doc), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert backup: %w", err)
	}
	return nil
}

// LatestBackup returns the stored backup for a user, or ErrNotFound when no
// backup exists.
func (r *Repository) LatestBackup(ctx context.Context, username string) (*core.UserRecord, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT record FROM record_backups WHERE username = ?`, username,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query backup: %w", err)
	}

	var rec core.UserRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal backup for %s: %w", username, err)
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
