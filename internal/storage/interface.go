package storage

import (
	"context"
	"errors"

	"github.com/nikdata/oura-hrv/internal"
)

// ErrNoCredentials is returned by Load when the store has never been written.
var ErrNoCredentials = errors.New("storage: no credentials stored")

// TokenStore persists the OAuth client credentials and the rotating token pair.
type TokenStore interface {
	Load(ctx context.Context) (*internal.Credentials, error)
	Save(ctx context.Context, creds *internal.Credentials) error
	Close() error
}

// LoadCredentials merges stored credentials over the environment seed.
// Stored tokens win: once a refresh has rotated them, the seed is stale.
// Client id and secret come from the seed when set there.
func LoadCredentials(ctx context.Context, store TokenStore, seed internal.Credentials) (*internal.Credentials, error) {
	stored, err := store.Load(ctx)
	if errors.Is(err, ErrNoCredentials) {
		c := seed
		return &c, nil
	}
	if err != nil {
		return nil, err
	}

	merged := *stored
	if seed.ClientID != "" {
		merged.ClientID = seed.ClientID
	}
	if seed.ClientSecret != "" {
		merged.ClientSecret = seed.ClientSecret
	}
	if merged.AccessToken == "" {
		merged.AccessToken = seed.AccessToken
	}
	if merged.RefreshToken == "" {
		merged.RefreshToken = seed.RefreshToken
	}
	return &merged, nil
}
