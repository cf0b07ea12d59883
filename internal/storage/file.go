package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nikdata/oura-hrv/internal"
)

// FileStorage keeps the credentials in a single JSON document.
type FileStorage struct {
	path   string
	mu     sync.Mutex
	now    func() time.Time
	logger internal.Logger
}

func NewFileStorage(path string, logger internal.Logger) *FileStorage {
	return &FileStorage{path: path, now: time.Now, logger: logger}
}

func (s *FileStorage) Load(ctx context.Context) (*internal.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		s.logger.Errorf("storage: failed to open token file %s: %v", s.path, err)
		return nil, err
	}
	defer file.Close()

	var creds internal.Credentials
	if err := json.NewDecoder(file).Decode(&creds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoCredentials
		}
		s.logger.Errorf("storage: failed to decode token file %s: %v", s.path, err)
		return nil, err
	}
	return &creds, nil
}

func (s *FileStorage) Save(ctx context.Context, creds *internal.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *creds
	c.UpdatedAt = s.now().UTC()
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	if err := AtomicWriteFileJSON(s.path, c, 0o600); err != nil {
		s.logger.Errorf("storage: error saving tokens: %v", err)
		return err
	}
	creds.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *FileStorage) Close() error { return nil }

// AtomicWriteFileJSON writes data as two-space indented JSON through a temp
// file and a rename, so readers never see a partial document. No trailing
// newline is written.
func AtomicWriteFileJSON(filePath string, data interface{}, perm os.FileMode) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tempFile := filePath + ".tmp"
	f, err := os.OpenFile(tempFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

var _ TokenStore = (*FileStorage)(nil)
