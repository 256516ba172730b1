package storage

import (
	"context"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// ListOptions filters listed journal entries.
type ListOptions struct {
	// Kind only lists entries of the kind, all kinds when empty.
	Kind model.OperationKind
	// Limit is the max number of entries listed, no limit when 0.
	Limit int
}

// JournalRepository is the interface for the finished operations journal
// persistence. Entries are listed newest first.
type JournalRepository interface {
	CreateEntry(ctx context.Context, e model.JournalEntry) error
	GetEntry(ctx context.Context, id string) (*model.JournalEntry, error)
	ListEntries(ctx context.Context, opts ListOptions) ([]model.JournalEntry, error)
}
