package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikdata/oura-hrv/internal"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS oura_tokens (
	id            TEXT PRIMARY KEY,
	client_id     TEXT NOT NULL DEFAULT '',
	client_secret TEXT NOT NULL DEFAULT '',
	access_token  TEXT NOT NULL DEFAULT '',
	refresh_token TEXT NOT NULL DEFAULT '',
	updated_at    TIMESTAMPTZ NOT NULL
)`

// credentialsRowID is the single row the pipeline reads and writes.
const credentialsRowID = "default"

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		logger.Errorf("failed to create oura_tokens table: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Load(ctx context.Context) (*internal.Credentials, error) {
	row := p.pool.QueryRow(ctx, `SELECT client_id, client_secret, access_token, refresh_token, updated_at FROM oura_tokens WHERE id = $1`, credentialsRowID)
	var c internal.Credentials
	if err := row.Scan(&c.ClientID, &c.ClientSecret, &c.AccessToken, &c.RefreshToken, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCredentials
		}
		p.logger.Errorf("failed to load tokens: %v", err)
		return nil, err
	}
	return &c, nil
}

func (p *PostgresStorage) Save(ctx context.Context, creds *internal.Credentials) error {
	row := p.pool.QueryRow(ctx, `INSERT INTO oura_tokens (id, client_id, client_secret, access_token, refresh_token, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`,
		credentialsRowID, creds.ClientID, creds.ClientSecret, creds.AccessToken, creds.RefreshToken)
	if err := row.Scan(&creds.UpdatedAt); err != nil {
		p.logger.Errorf("failed to save tokens: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

var _ TokenStore = (*PostgresStorage)(nil)
