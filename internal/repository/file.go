package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks -source=file.go Storage

// DefaultFileName is the name of the repository list file inside the data directory
const DefaultFileName = "repository_list.json"

const lockRetryDelay = 50 * time.Millisecond

// Storage persists the whole repository list
type Storage interface {
	// Load reads the list. found is false when nothing has been stored yet.
	Load(ctx context.Context) (repos []Repository, found bool, err error)
	// Save replaces the stored list with repos
	Save(ctx context.Context, repos []Repository) error
}

// FileStorage stores the list as an indented JSON array. Writes go to a
// temporary file renamed into place under an exclusive lock on a sibling
// .lock file; reads take the shared lock.
type FileStorage struct {
	path string
	lock *flock.Flock
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a FileStorage for the file at path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the location of the repository list file
func (f *FileStorage) Path() string {
	return f.path
}

// Load implements Storage.Load. An empty file is an empty list.
func (f *FileStorage) Load(ctx context.Context) ([]Repository, bool, error) {
	if _, err := os.Stat(f.path); errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}

	if err := lockFile(ctx, f.lock.TryRLockContext, f.path); err != nil {
		return nil, false, err
	}
	defer func() { _ = f.lock.Unlock() }()

	// #nosec G304 -- path comes from server configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read repository file %s: %w", f.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []Repository{}, true, nil
	}

	var repos []Repository
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal repository file %s: %w", f.path, err)
	}
	if repos == nil {
		repos = []Repository{}
	}
	return repos, true, nil
}

// Save implements Storage.Save
func (f *FileStorage) Save(ctx context.Context, repos []Repository) error {
	if repos == nil {
		repos = []Repository{}
	}

	data, err := json.MarshalIndent(repos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repository list: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := lockFile(ctx, f.lock.TryLockContext, f.path); err != nil {
		return err
	}
	defer func() { _ = f.lock.Unlock() }()

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary repository file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename repository file: %w", err)
	}

	return nil
}

func lockFile(ctx context.Context, try func(context.Context, time.Duration) (bool, error), path string) error {
	locked, err := try(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock repository file %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock repository file %s", path)
	}
	return nil
}
