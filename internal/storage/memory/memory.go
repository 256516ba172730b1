package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.JournalRepository.
type Repository struct {
	entries map[string]model.JournalEntry
	mu      sync.RWMutex
	logger  log.Logger
}

var _ storage.JournalRepository = &Repository{}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		entries: make(map[string]model.JournalEntry),
		logger:  cfg.Logger,
	}, nil
}

// CreateEntry stores a finished operation.
func (r *Repository) CreateEntry(ctx context.Context, e model.JournalEntry) error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required: %w", model.ErrNotValid)
	}
	if e.Kind == "" {
		return fmt.Errorf("entry kind is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[e.ID]; ok {
		return fmt.Errorf("journal entry with id %s: %w", e.ID, model.ErrAlreadyExists)
	}

	r.entries[e.ID] = e
	r.logger.Debugf("Created journal entry in repository: %s", e.ID)

	return nil
}

// GetEntry retrieves a journal entry by ID.
func (r *Repository) GetEntry(ctx context.Context, id string) (*model.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("journal entry %s: %w", id, model.ErrNotFound)
	}

	return &e, nil
}

// ListEntries returns the journal entries, newest first.
func (r *Repository) ListEntries(ctx context.Context, opts storage.ListOptions) ([]model.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []model.JournalEntry
	for _, e := range r.entries {
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].FinishedAt.Equal(entries[j].FinishedAt) {
			return entries[i].FinishedAt.After(entries[j].FinishedAt)
		}
		return entries[i].ID > entries[j].ID
	})

	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	return entries, nil
}
