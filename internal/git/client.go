// Package git reads files out of remote git repositories cloned into memory.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// ErrNilRepository is returned when an operation is given no cloned repository
var ErrNilRepository = errors.New("repository is nil")

// CloneConfig selects what to clone. At most one of Branch, Tag and Commit is set.
type CloneConfig struct {
	URL    string
	Branch string
	Tag    string
	Commit string
}

// RepositoryInfo is a clone held in memory
type RepositoryInfo struct {
	Repository *git.Repository
	// Branch is the checked out branch, empty for a detached HEAD
	Branch    string
	RemoteURL string

	storerFilesystem billy.Filesystem
	objectCache      cache.Object
}

// Client clones repositories and reads files from them
type Client interface {
	Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error)
	GetFileContent(repoInfo *RepositoryInfo, path string) ([]byte, error)
	Cleanup(ctx context.Context, repoInfo *RepositoryInfo) error
}

type defaultClient struct{}

// NewDefaultClient creates a Client backed by go-git and in-memory filesystems
func NewDefaultClient() Client {
	return &defaultClient{}
}

// Clone clones config.URL. Branch and tag clones are shallow; commit clones
// fetch full history so the commit can be checked out.
func (*defaultClient) Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error) {
	opts := &git.CloneOptions{URL: config.URL}
	if config.Commit == "" {
		opts.Depth = 1
		switch {
		case config.Branch != "":
			opts.ReferenceName = plumbing.NewBranchReferenceName(config.Branch)
			opts.SingleBranch = true
		case config.Tag != "":
			opts.ReferenceName = plumbing.NewTagReferenceName(config.Tag)
			opts.SingleBranch = true
		}
	}

	// go-git wants separate filesystems for the object store and the worktree
	storerFs := memfs.New()
	objectCache := cache.NewObjectLRUDefault()
	storer := filesystem.NewStorage(storerFs, objectCache)

	repo, err := git.CloneContext(ctx, storer, memfs.New(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	info := &RepositoryInfo{
		Repository:       repo,
		RemoteURL:        config.URL,
		storerFilesystem: storerFs,
		objectCache:      objectCache,
	}

	if config.Commit != "" {
		wt, err := repo.Worktree()
		if err != nil {
			return nil, fmt.Errorf("failed to get worktree: %w", err)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(config.Commit)}); err != nil {
			return nil, fmt.Errorf("failed to checkout commit %s: %w", config.Commit, err)
		}
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}

	return info, nil
}

// GetFileContent reads path from the HEAD commit
func (*defaultClient) GetFileContent(repoInfo *RepositoryInfo, path string) ([]byte, error) {
	if repoInfo == nil || repoInfo.Repository == nil {
		return nil, ErrNilRepository
	}

	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	commit, err := repoInfo.Repository.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", path, err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	return []byte(content), nil
}

// Cleanup drops the in-memory clone so its memory can be reclaimed
func (*defaultClient) Cleanup(ctx context.Context, repoInfo *RepositoryInfo) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return ErrNilRepository
	}

	if repoInfo.objectCache != nil {
		repoInfo.objectCache.Clear()
	}
	if wt, err := repoInfo.Repository.Worktree(); err == nil && wt.Filesystem != nil {
		_ = util.RemoveAll(wt.Filesystem, "/")
	}
	if repoInfo.storerFilesystem != nil {
		_ = util.RemoveAll(repoInfo.storerFilesystem, "/")
	}

	repoInfo.objectCache = nil
	repoInfo.storerFilesystem = nil
	repoInfo.Repository = nil

	slog.DebugContext(ctx, "Released in-memory clone", "url", repoInfo.RemoteURL)
	return nil
}
