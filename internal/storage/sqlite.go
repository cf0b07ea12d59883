package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nikdata/oura-hrv/internal"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS oura_tokens (
    id            TEXT PRIMARY KEY,
    client_id     TEXT NOT NULL DEFAULT '',
    client_secret TEXT NOT NULL DEFAULT '',
    access_token  TEXT NOT NULL DEFAULT '',
    refresh_token TEXT NOT NULL DEFAULT '',
    updated_at    DATETIME NOT NULL
);`

// SQLiteStorage is the single-file database backend for hosts without postgres.
type SQLiteStorage struct {
	db     *sql.DB
	now    func() time.Time
	logger internal.Logger
}

func NewSQLiteStorage(path string, logger internal.Logger) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStorage{db: db, now: time.Now, logger: logger}, nil
}

func (s *SQLiteStorage) Load(ctx context.Context) (*internal.Credentials, error) {
	row := s.db.QueryRowContext(ctx, `SELECT client_id, client_secret, access_token, refresh_token, updated_at FROM oura_tokens WHERE id = ?`, credentialsRowID)
	var c internal.Credentials
	err := row.Scan(&c.ClientID, &c.ClientSecret, &c.AccessToken, &c.RefreshToken, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoCredentials
	} else if err != nil {
		s.logger.Errorf("failed to load tokens: %v", err)
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, creds *internal.Credentials) error {
	updated := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO oura_tokens (id, client_id, client_secret, access_token, refresh_token, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			client_secret = excluded.client_secret,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at`,
		credentialsRowID, creds.ClientID, creds.ClientSecret, creds.AccessToken, creds.RefreshToken, updated)
	if err != nil {
		s.logger.Errorf("failed to save tokens: %v", err)
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	creds.UpdatedAt = updated
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}

var _ TokenStore = (*SQLiteStorage)(nil)
