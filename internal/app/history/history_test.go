package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/history"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config history.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: history.ServiceConfig{
				Repository: &storagemock.MockJournalRepository{},
				Logger:     log.Noop,
			},
		},
		"missing repository should fail": {
			config: history.ServiceConfig{Logger: log.Noop},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: history.ServiceConfig{Repository: &storagemock.MockJournalRepository{}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := history.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	finishedAt := time.Date(2026, 1, 30, 10, 0, 5, 0, time.UTC)
	chatEntry := model.JournalEntry{ID: "01A", Kind: model.OperationKindChat, TaskID: "t1", State: "succeeded", Outcome: model.OutcomeSucceeded, FinishedAt: finishedAt}
	actionEntry := model.JournalEntry{ID: "01B", Kind: model.OperationKindShopAction, TaskID: "t2", State: "failed", Outcome: model.OutcomeFailed, FinishedAt: finishedAt}

	tests := map[string]struct {
		mock       func(m *storagemock.MockJournalRepository)
		req        history.Request
		expEntries []model.JournalEntry
		expErr     bool
	}{
		"list all entries without filter": {
			mock: func(m *storagemock.MockJournalRepository) {
				m.On("ListEntries", mock.Anything, storage.ListOptions{}).Once().Return([]model.JournalEntry{actionEntry, chatEntry}, nil)
			},
			req:        history.Request{},
			expEntries: []model.JournalEntry{actionEntry, chatEntry},
		},
		"list entries filtered by kind with a limit": {
			mock: func(m *storagemock.MockJournalRepository) {
				m.On("ListEntries", mock.Anything, storage.ListOptions{Kind: model.OperationKindChat, Limit: 5}).Once().Return([]model.JournalEntry{chatEntry}, nil)
			},
			req:        history.Request{Kind: model.OperationKindChat, Limit: 5},
			expEntries: []model.JournalEntry{chatEntry},
		},
		"get a single entry by id": {
			mock: func(m *storagemock.MockJournalRepository) {
				e := chatEntry
				m.On("GetEntry", mock.Anything, "01A").Once().Return(&e, nil)
			},
			req:        history.Request{ID: "01A", Kind: model.OperationKindShopAction},
			expEntries: []model.JournalEntry{chatEntry},
		},
		"a missing entry should fail": {
			mock: func(m *storagemock.MockJournalRepository) {
				m.On("GetEntry", mock.Anything, "01Z").Once().Return(nil, fmt.Errorf("journal entry 01Z: %w", model.ErrNotFound))
			},
			req:    history.Request{ID: "01Z"},
			expErr: true,
		},
		"an unknown kind should fail": {
			mock:   func(m *storagemock.MockJournalRepository) {},
			req:    history.Request{Kind: "email"},
			expErr: true,
		},
		"a negative limit should fail": {
			mock:   func(m *storagemock.MockJournalRepository) {},
			req:    history.Request{Limit: -1},
			expErr: true,
		},
		"repository error should propagate": {
			mock: func(m *storagemock.MockJournalRepository) {
				m.On("ListEntries", mock.Anything, mock.Anything).Once().Return(nil, fmt.Errorf("database error"))
			},
			req:    history.Request{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			mRepo := &storagemock.MockJournalRepository{}
			test.mock(mRepo)

			svc, err := history.NewService(history.ServiceConfig{Repository: mRepo, Logger: log.Noop})
			require.NoError(err)

			entries, err := svc.Run(context.TODO(), test.req)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expEntries, entries)
			}
			mRepo.AssertExpectations(t)
		})
	}
}
