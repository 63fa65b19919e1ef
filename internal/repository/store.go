package repository

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Store is the in-memory repository list backed by a Storage.
// The list is loaded on first access. Every committing mutation works on a
// copy, writes it once, and replaces the live list only if the write succeeded.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	seed    func() []Repository
	repos   []Repository
	loaded  bool
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithSeed sets the list used when storage holds nothing yet.
// A nil seed starts from an empty list.
func WithSeed(seed func() []Repository) StoreOption {
	return func(s *Store) {
		s.seed = seed
	}
}

// NewStore creates a Store over storage, seeded with DefaultRepositories
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{
		storage: storage,
		seed:    DefaultRepositories,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a copy of every repository in insertion order
func (s *Store) List(ctx context.Context) ([]Repository, error) {
	var out []Repository
	err := s.read(ctx, func(repos []Repository) {
		out = cloneAll(repos)
	})
	return out, err
}

// Enabled returns a copy of the enabled repositories in insertion order
func (s *Store) Enabled(ctx context.Context) ([]Repository, error) {
	var out []Repository
	err := s.read(ctx, func(repos []Repository) {
		out = make([]Repository, 0, len(repos))
		for _, r := range repos {
			if r.IsEnabled() {
				out = append(out, r.Clone())
			}
		}
	})
	return out, err
}

// Contains reports whether a repository with url exists
func (s *Store) Contains(ctx context.Context, url string) (bool, error) {
	var found bool
	err := s.read(ctx, func(repos []Repository) {
		found = indexOf(repos, url) >= 0
	})
	return found, err
}

// Add appends repo and persists. It returns ErrDuplicateRepository if the URL is taken.
func (s *Store) Add(ctx context.Context, repo Repository) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.Add(repo)
	})
}

// AddAll appends every repository whose URL is not present yet and persists
// once. Nothing is written when no repository was added.
func (s *Store) AddAll(ctx context.Context, repos []Repository) (int, error) {
	added := 0
	err := s.apply(ctx, false, func(tx *Tx) error {
		for _, r := range repos {
			if tx.Add(r) == nil {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Delete removes the repository with url and persists.
// It returns ErrRepositoryNotFound without writing if there is none.
func (s *Store) Delete(ctx context.Context, url string) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.Delete(url)
	})
}

// SetEnabled sets the enabled flag of the repository with url and persists
func (s *Store) SetEnabled(ctx context.Context, url string, enabled bool) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.SetEnabled(url, enabled)
	})
}

// Update runs fn against a copy of the list and persists the result exactly
// once. If fn returns an error nothing is written and the list is unchanged.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.apply(ctx, true, fn)
}

func (s *Store) apply(ctx context.Context, always bool, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}

	tx := &Tx{repos: cloneAll(s.repos)}
	if err := fn(tx); err != nil {
		return err
	}
	if !always && !tx.changed {
		return nil
	}

	if err := s.storage.Save(ctx, tx.repos); err != nil {
		return fmt.Errorf("failed to persist repository list: %w", err)
	}
	s.repos = tx.repos
	return nil
}

func (s *Store) read(ctx context.Context, fn func([]Repository)) error {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		fn(s.repos)
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return err
	}
	fn(s.repos)
	return nil
}

// load must be called with the write lock held
func (s *Store) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	repos, found, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load repository list: %w", err)
	}
	if !found {
		repos = []Repository{}
		if s.seed != nil {
			repos = s.seed()
		}
		slog.InfoContext(ctx, "No repository list found, starting from defaults", "repositories", len(repos))
	}

	s.repos = repos
	s.loaded = true
	return nil
}

// Tx is a mutable copy of the repository list handed to Update callbacks
type Tx struct {
	repos   []Repository
	changed bool
}

// Repositories returns the current contents of the transaction
func (tx *Tx) Repositories() []Repository {
	return slices.Clone(tx.repos)
}

// Find returns the repository with url, or nil. The pointer stays valid
// until the next Add or Delete on tx.
func (tx *Tx) Find(url string) *Repository {
	if i := indexOf(tx.repos, url); i >= 0 {
		return &tx.repos[i]
	}
	return nil
}

// Add appends repo unless its URL is already present
func (tx *Tx) Add(repo Repository) error {
	if indexOf(tx.repos, repo.URL) >= 0 {
		return fmt.Errorf("%s is %w", repo.URL, ErrDuplicateRepository)
	}
	tx.repos = append(tx.repos, repo.Clone())
	tx.changed = true
	return nil
}

// Delete removes the repository with url
func (tx *Tx) Delete(url string) error {
	i := indexOf(tx.repos, url)
	if i < 0 {
		return fmt.Errorf("%w with URL '%s'", ErrRepositoryNotFound, url)
	}
	tx.repos = slices.Delete(tx.repos, i, i+1)
	tx.changed = true
	return nil
}

// SetEnabled changes only the enabled flag of the repository with url
func (tx *Tx) SetEnabled(url string, enabled bool) error {
	r := tx.Find(url)
	if r == nil {
		return fmt.Errorf("%w with URL '%s'", ErrRepositoryNotFound, url)
	}
	r.SetEnabled(enabled)
	tx.changed = true
	return nil
}

func indexOf(repos []Repository, url string) int {
	return slices.IndexFunc(repos, func(r Repository) bool {
		return r.URL == url
	})
}
