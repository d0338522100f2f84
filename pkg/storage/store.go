// Package storage provides the file blob store backing logos and exports.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists generated files under relative keys. Use this interface
// for dependency injection to enable mocking in tests.
type Store interface {
	// Put writes data under key, creating parent directories as needed.
	Put(key string, data []byte) error
	// Get reads the file stored under key.
	Get(key string) ([]byte, error)
	// Exists reports whether key is present.
	Exists(key string) bool
	// Delete removes the file under key. Missing keys are not an error.
	Delete(key string) error
}

// DiskStore stores files under a root directory on local disk.
type DiskStore struct {
	root string
}

// NewDiskStore creates a disk-backed store rooted at dir.
func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{root: abs}, nil
}

// resolve maps a key to an absolute path and rejects traversal outside root.
func (s *DiskStore) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("empty storage key")
	}
	path := filepath.Join(s.root, clean)
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("storage key %q escapes root", key)
	}
	return path, nil
}

func (s *DiskStore) Put(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *DiskStore) Get(key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *DiskStore) Exists(key string) bool {
	path, err := s.resolve(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *DiskStore) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Ensure DiskStore implements Store at compile time.
var _ Store = (*DiskStore)(nil)
