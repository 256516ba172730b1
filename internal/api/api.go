// Package api is the client of the thinkr backend REST API.
//
// Status responses are returned raw, their shape is not stable and the lifecycle
// interpreters own their meaning.
package api

import (
	"context"
	"fmt"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// FeedbackAction is the review action sent for an autopilot proposal.
type FeedbackAction string

const (
	FeedbackActionApprove FeedbackAction = "approve"
	FeedbackActionRefine  FeedbackAction = "refine"
	FeedbackActionReject  FeedbackAction = "reject"
)

// Validate validates the action.
func (a FeedbackAction) Validate() error {
	switch a {
	case FeedbackActionApprove, FeedbackActionRefine, FeedbackActionReject:
		return nil
	}
	return fmt.Errorf("unknown feedback action %q: %w", a, model.ErrNotValid)
}

// ChatMessageRequest is a chat message sent to the assistant.
type ChatMessageRequest struct {
	Message  string
	ThreadID string
}

// ProposalRequest is a request for a new autopilot proposal.
type ProposalRequest struct {
	Request string
}

// FeedbackRequest is the review of an autopilot proposal.
type FeedbackRequest struct {
	Handle   model.OperationHandle
	Action   FeedbackAction
	Feedback string
}

// Client is the thinkr backend API client.
type Client interface {
	// SendChatMessage sends a chat message and returns the handle of its processing.
	SendChatMessage(ctx context.Context, req ChatMessageRequest) (model.OperationHandle, error)
	// ChatStatus returns the raw status of a chat message.
	ChatStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error)
	// CreateProposal requests a new autopilot proposal.
	CreateProposal(ctx context.Context, req ProposalRequest) (model.RawResponse, error)
	// SendProposalFeedback approves, refines or rejects a proposal.
	SendProposalFeedback(ctx context.Context, req FeedbackRequest) (model.RawResponse, error)
	// AutopilotStatus returns the raw status of a proposal by task id, or proposal id
	// when there is no task id.
	AutopilotStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error)
	// ExecuteShopAction starts a shop action.
	ExecuteShopAction(ctx context.Context, action string) (model.RawResponse, error)
	// ShopActionStatus returns the raw status of a shop action.
	ShopActionStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error)
}

// StatusError is a non successful HTTP response whose body could not be interpreted.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// Unwrap makes status errors transport errors.
func (e *StatusError) Unwrap() error { return model.ErrTransport }
