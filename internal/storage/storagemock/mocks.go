// Package storagemock has the testify mocks of the storage package.
package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage"
)

// MockJournalRepository is a mock of storage.JournalRepository.
type MockJournalRepository struct {
	mock.Mock
}

var _ storage.JournalRepository = &MockJournalRepository{}

func (m *MockJournalRepository) CreateEntry(ctx context.Context, e model.JournalEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockJournalRepository) GetEntry(ctx context.Context, id string) (*model.JournalEntry, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*model.JournalEntry)
	return e, args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, opts storage.ListOptions) ([]model.JournalEntry, error) {
	args := m.Called(ctx, opts)
	entries, _ := args.Get(0).([]model.JournalEntry)
	return entries, args.Error(1)
}
