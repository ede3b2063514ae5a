package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/minibeans/internal/model"
	"github.com/mcoot/minibeans/internal/storage"
)

// Storage keeps each key in its own file under a profile directory,
// e.g. ~/.minibeans/default/player_id
type Storage struct {
	dir string
}

// New creates a file storage rooted at dir. The directory is created lazily
// on the first Save.
func New(dir string) *Storage {
	return &Storage{dir: dir}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Dir returns the profile directory
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) path(key storage.Key) string {
	return filepath.Join(s.dir, string(key))
}

func (s *Storage) Load(ctx context.Context, key storage.Key) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", model.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Save(ctx context.Context, key storage.Key, value string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	// Write then rename so a crash never leaves a truncated value behind
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context, key storage.Key) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear %s: %w", key, err)
	}
	return nil
}
