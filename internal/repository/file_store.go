package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/nikolayk812/orderpipe/internal/port"
)

const fileStoreName = "kv.json"

// FileStore is a KeyValueStore persisted as one JSON object in a directory,
// so values survive between processes.
type FileStore struct {
	mu         sync.Mutex
	path       string
	quotaBytes int
}

var _ port.KeyValueStore = (*FileStore)(nil)

// NewFileStore creates dir when missing; quotaBytes <= 0 disables the quota.
func NewFileStore(dir string, quotaBytes int) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("dir is empty")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", mapFileError(err))
	}

	return &FileStore{
		path:       filepath.Join(dir, fileStoreName),
		quotaBytes: quotaBytes,
	}, nil
}

// DefaultFileStoreDir is the per-user cache directory for orderpipe.
func DefaultFileStoreDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("os.UserCacheDir: %w", err)
	}
	return filepath.Join(dir, "orderpipe"), nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, fmt.Errorf("s.load: %w", err)
	}

	value, ok := values[key]
	return value, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return fmt.Errorf("s.load: %w", err)
	}

	if s.quotaBytes > 0 && usedWithout(values, key)+len(value) > s.quotaBytes {
		return port.ErrQuotaExceeded
	}

	values[key] = value

	if err := s.save(values); err != nil {
		return fmt.Errorf("s.save: %w", err)
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return fmt.Errorf("s.load: %w", err)
	}

	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)

	if err := s.save(values); err != nil {
		return fmt.Errorf("s.save: %w", err)
	}
	return nil
}

// load reads a missing or unparseable file as an empty store.
func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", mapFileError(err))
	}

	if err := json.Unmarshal(raw, &values); err != nil {
		return make(map[string]string), nil
	}

	return values, nil
}

// save writes a temp file and renames it over the store file.
func (s *FileStore) save(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), fileStoreName+".*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", mapFileError(err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Write: %w", mapFileError(err))
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", mapFileError(err))
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("os.Rename: %w", mapFileError(err))
	}

	return nil
}

// mapFileError marks a full disk as port.ErrQuotaExceeded and any other
// filesystem failure as port.ErrStorageUnavailable.
func mapFileError(err error) error {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return errors.Join(port.ErrQuotaExceeded, err)
	}
	return errors.Join(port.ErrStorageUnavailable, err)
}

func usedWithout(values map[string]string, key string) int {
	used := 0
	for k, v := range values {
		if k != key {
			used += len(v)
		}
	}
	return used
}
