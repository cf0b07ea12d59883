package storage

import (
	"context"
	"fmt"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/config"
)

// NewTokenStore opens the backend selected by TOKEN_BACKEND.
func NewTokenStore(ctx context.Context, cfg *config.Config, logger internal.Logger) (TokenStore, error) {
	switch cfg.TokenBackend {
	case "file":
		return NewFileStorage(cfg.TokenFile, logger), nil
	case "postgres":
		return NewPostgresStorage(ctx, cfg.PostgresDSN, logger)
	case "sqlite":
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("storage: unknown token backend %q", cfg.TokenBackend)
	}
}

// SeedCredentials returns the credentials supplied through the environment.
func SeedCredentials(cfg *config.Config) internal.Credentials {
	return internal.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
	}
}
