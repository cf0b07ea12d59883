package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	creds *internal.Credentials
}

func (m *memStore) Load(ctx context.Context) (*internal.Credentials, error) {
	if m.creds == nil {
		return nil, ErrNoCredentials
	}
	c := *m.creds
	return &c, nil
}

func (m *memStore) Save(ctx context.Context, creds *internal.Credentials) error {
	c := *creds
	m.creds = &c
	return nil
}

func (m *memStore) Close() error { return nil }

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	s := NewFileStorage(path, internal.NewNopLogger())
	s.now = func() time.Time { return time.Date(2025, 9, 20, 6, 0, 0, 0, time.UTC) }

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)

	creds := &internal.Credentials{ClientID: "id", ClientSecret: "secret", AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, s.Save(context.Background(), creds))
	assert.Equal(t, s.now(), creds.UpdatedAt)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, *creds, *loaded)
}

func TestFileStorage_EmptyFileMeansNoCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := NewFileStorage(path, internal.NewNopLogger()).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestAtomicWriteFileJSON_NoTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, AtomicWriteFileJSON(path, map[string]int{"a": 1}, 0o644))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadCredentials_SeedOnly(t *testing.T) {
	seed := internal.Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "seed-r"}

	got, err := LoadCredentials(context.Background(), &memStore{}, seed)
	require.NoError(t, err)
	assert.Equal(t, seed, *got)
}

func TestLoadCredentials_StoredTokensWin(t *testing.T) {
	store := &memStore{creds: &internal.Credentials{
		ClientID:     "old-id",
		ClientSecret: "old-secret",
		AccessToken:  "stored-a",
		RefreshToken: "stored-r",
	}}
	seed := internal.Credentials{ClientID: "id", ClientSecret: "secret", AccessToken: "seed-a", RefreshToken: "seed-r"}

	got, err := LoadCredentials(context.Background(), store, seed)
	require.NoError(t, err)
	assert.Equal(t, "id", got.ClientID)
	assert.Equal(t, "secret", got.ClientSecret)
	assert.Equal(t, "stored-a", got.AccessToken)
	assert.Equal(t, "stored-r", got.RefreshToken)
}

func TestLoadCredentials_StoredBlanksFallBackToSeed(t *testing.T) {
	store := &memStore{creds: &internal.Credentials{ClientID: "stored-id", RefreshToken: "stored-r"}}
	seed := internal.Credentials{ClientSecret: "secret", AccessToken: "seed-a"}

	got, err := LoadCredentials(context.Background(), store, seed)
	require.NoError(t, err)
	assert.Equal(t, "stored-id", got.ClientID)
	assert.Equal(t, "secret", got.ClientSecret)
	assert.Equal(t, "seed-a", got.AccessToken)
	assert.Equal(t, "stored-r", got.RefreshToken)
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tokens.db"), internal.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)

	creds := &internal.Credentials{ClientID: "id", ClientSecret: "secret", AccessToken: "a", RefreshToken: "r1"}
	require.NoError(t, s.Save(context.Background(), creds))
	creds.RefreshToken = "r2"
	require.NoError(t, s.Save(context.Background(), creds))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r2", loaded.RefreshToken)
	assert.Equal(t, "a", loaded.AccessToken)
}
