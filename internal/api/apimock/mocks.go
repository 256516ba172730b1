// Package apimock has the testify mocks of the api package.
package apimock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// MockClient is a mock of api.Client.
type MockClient struct {
	mock.Mock
}

var _ api.Client = &MockClient{}

func rawResponse(args mock.Arguments, i int) model.RawResponse {
	if fn, ok := args.Get(i).(func() model.RawResponse); ok {
		return fn()
	}
	r, _ := args.Get(i).(model.RawResponse)
	return r
}

func (m *MockClient) SendChatMessage(ctx context.Context, req api.ChatMessageRequest) (model.OperationHandle, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.OperationHandle), args.Error(1)
}

func (m *MockClient) ChatStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error) {
	args := m.Called(ctx, h)
	return rawResponse(args, 0), args.Error(1)
}

func (m *MockClient) CreateProposal(ctx context.Context, req api.ProposalRequest) (model.RawResponse, error) {
	args := m.Called(ctx, req)
	return rawResponse(args, 0), args.Error(1)
}

func (m *MockClient) SendProposalFeedback(ctx context.Context, req api.FeedbackRequest) (model.RawResponse, error) {
	args := m.Called(ctx, req)
	return rawResponse(args, 0), args.Error(1)
}

func (m *MockClient) AutopilotStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error) {
	args := m.Called(ctx, h)
	return rawResponse(args, 0), args.Error(1)
}

func (m *MockClient) ExecuteShopAction(ctx context.Context, action string) (model.RawResponse, error) {
	args := m.Called(ctx, action)
	return rawResponse(args, 0), args.Error(1)
}

func (m *MockClient) ShopActionStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error) {
	args := m.Called(ctx, h)
	return rawResponse(args, 0), args.Error(1)
}
