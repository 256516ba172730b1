package history

import (
	"context"
	"fmt"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.JournalRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "history.Service"})

	return nil
}

// Service lists the journal of finished operations.
type Service struct {
	repo   storage.JournalRepository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the history request parameters.
type Request struct {
	// ID gets a single entry, ignoring the other filters.
	ID string
	// Kind is an optional filter to only show operations of this kind.
	Kind model.OperationKind
	// Limit is the max number of entries, all when 0.
	Limit int
}

// Run lists the finished operations, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.JournalEntry, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	if req.ID != "" {
		e, err := s.repo.GetEntry(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("could not get journal entry: %w", err)
		}
		return []model.JournalEntry{*e}, nil
	}

	switch req.Kind {
	case "", model.OperationKindChat, model.OperationKindAutopilot, model.OperationKindShopAction:
	default:
		return nil, fmt.Errorf("unknown operation kind %q: %w", req.Kind, model.ErrNotValid)
	}

	s.logger.Debugf("listing journal with kind %q and limit %d", req.Kind, req.Limit)

	entries, err := s.repo.ListEntries(ctx, storage.ListOptions{Kind: req.Kind, Limit: req.Limit})
	if err != nil {
		return nil, fmt.Errorf("could not list journal: %w", err)
	}

	s.logger.Debugf("found %d journal entries", len(entries))
	return entries, nil
}
