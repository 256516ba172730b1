package autopilot

import (
	"context"
	"fmt"
	"time"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/lifecycle"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/task"
)

const msgProposalRejected = "Proposal rejected"

// ServiceConfig is the configuration for the autopilot service.
type ServiceConfig struct {
	Client  api.Client
	Tracker *task.Tracker
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("client is required")
	}

	if c.Tracker == nil {
		return fmt.Errorf("tracker is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "autopilot.Service"})

	return nil
}

// Service manages autopilot proposals: requesting them, following them until they
// are ready for review and reviewing them.
type Service struct {
	client  api.Client
	tracker *task.Tracker
	machine *lifecycle.Proposal
	logger  log.Logger
}

// NewService creates a new autopilot service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client:  cfg.Client,
		tracker: cfg.Tracker,
		machine: lifecycle.NewProposal(),
		logger:  cfg.Logger,
	}, nil
}

// CreateRequest represents the proposal creation parameters.
type CreateRequest struct {
	Request  string
	OnUpdate func(model.NormalizedStatus)
}

// Create requests a new proposal and waits until it is ready for review or it
// finishes. The response may already have the proposal, in that case nothing is polled.
func (s *Service) Create(ctx context.Context, req CreateRequest) (model.NormalizedStatus, error) {
	startedAt := time.Now().UTC()
	raw, err := s.client.CreateProposal(ctx, api.ProposalRequest{Request: req.Request})
	if err != nil {
		return model.NormalizedStatus{}, fmt.Errorf("could not create proposal: %w", err)
	}

	s.tracker.Cancel()
	s.machine.Reset()

	st := lifecycle.InterpretProposal(raw)
	return s.follow(ctx, st.Handle, st, startedAt, req.OnUpdate)
}

// FeedbackRequest represents the proposal review parameters.
type FeedbackRequest struct {
	// Handle identifies the reviewed proposal, defaults to the proposal under review.
	Handle   model.OperationHandle
	Action   api.FeedbackAction
	Feedback string
	OnUpdate func(model.NormalizedStatus)
}

// Feedback reviews a proposal. Approving or refining waits for the next proposal or
// the final result. Rejecting discards the proposal.
func (s *Service) Feedback(ctx context.Context, req FeedbackRequest) (model.NormalizedStatus, error) {
	if err := req.Action.Validate(); err != nil {
		return model.NormalizedStatus{}, err
	}

	h, proposal, err := s.reviewed(req.Handle)
	if err != nil {
		return model.NormalizedStatus{}, err
	}

	switch req.Action {
	case api.FeedbackActionApprove:
		err = s.machine.Approve()
	case api.FeedbackActionRefine:
		err = s.machine.Refine()
	case api.FeedbackActionReject:
		err = s.machine.Reject()
	}
	if err != nil {
		return model.NormalizedStatus{}, fmt.Errorf("could not %s proposal: %w", req.Action, err)
	}

	startedAt := time.Now().UTC()
	raw, err := s.client.SendProposalFeedback(ctx, api.FeedbackRequest{Handle: h, Action: req.Action, Feedback: req.Feedback})
	if err != nil {
		// The proposal is still waiting for a review.
		s.machine.Reset()
		if rerr := s.machine.Resume(h, proposal); rerr != nil {
			s.logger.Warningf("Could not restore proposal review: %s", rerr)
		}
		return model.NormalizedStatus{}, fmt.Errorf("could not send proposal feedback: %w", err)
	}

	st := lifecycle.InterpretProposal(raw)
	if req.Action == api.FeedbackActionReject {
		return s.rejected(ctx, h, st, startedAt), nil
	}

	return s.follow(ctx, h.Merge(st.Handle), st, startedAt, req.OnUpdate)
}

// StatusRequest represents the proposal status parameters.
type StatusRequest struct {
	Handle   model.OperationHandle
	OnUpdate func(model.NormalizedStatus)
}

// Status follows an existing proposal task until it is ready for review or it finishes.
func (s *Service) Status(ctx context.Context, req StatusRequest) (model.NormalizedStatus, error) {
	if err := req.Handle.Validate(); err != nil {
		return model.NormalizedStatus{}, err
	}

	s.tracker.Cancel()
	s.machine.Reset()
	if err := s.machine.Begin(req.Handle); err != nil {
		return model.NormalizedStatus{}, fmt.Errorf("could not begin proposal: %w", err)
	}

	return s.track(ctx, req.Handle, req.OnUpdate), nil
}

// Cancel stops following the current proposal.
func (s *Service) Cancel() {
	s.tracker.Cancel()
	s.machine.Reset()
}

// State returns the state of the current proposal.
func (s *Service) State() lifecycle.ProposalState { return s.machine.State() }

// Proposal returns the proposal under review, nil if none.
func (s *Service) Proposal() map[string]any { return s.machine.Proposal() }

// reviewed returns the handle and proposal to review, resuming the review of the
// requested proposal when it is not the one already under review.
func (s *Service) reviewed(h model.OperationHandle) (model.OperationHandle, map[string]any, error) {
	if s.machine.State() == lifecycle.ProposalStateAwaitingReview {
		current := s.machine.Handle()
		if h.IsZero() || h == current {
			return current, s.machine.Proposal(), nil
		}
	}

	if err := h.Validate(); err != nil {
		return model.OperationHandle{}, nil, fmt.Errorf("no proposal under review: %w", err)
	}

	s.tracker.Cancel()
	s.machine.Reset()
	if err := s.machine.Resume(h, nil); err != nil {
		return model.OperationHandle{}, nil, err
	}

	return h, nil, nil
}

// follow continues from a start response: finished responses are journaled as they
// are, pending ones are polled.
func (s *Service) follow(ctx context.Context, h model.OperationHandle, st model.NormalizedStatus, startedAt time.Time, onUpdate func(model.NormalizedStatus)) (model.NormalizedStatus, error) {
	if st.IsTerminal() {
		if !h.IsZero() {
			s.apply(h, st)
		}
		if onUpdate != nil {
			onUpdate(st)
		}
		return s.tracker.Finish(ctx, h, st, startedAt).Status, nil
	}

	if err := h.Validate(); err != nil {
		s.machine.Reset()
		return model.NormalizedStatus{}, fmt.Errorf("missing task id in pending response: %w", err)
	}

	if state := s.machine.State(); state != lifecycle.ProposalStateProcessing && state != lifecycle.ProposalStateRefining {
		if err := s.machine.Begin(h); err != nil {
			return model.NormalizedStatus{}, fmt.Errorf("could not begin proposal: %w", err)
		}
	}

	return s.track(ctx, h, onUpdate), nil
}

func (s *Service) track(ctx context.Context, h model.OperationHandle, onUpdate func(model.NormalizedStatus)) model.NormalizedStatus {
	fetch := func(ctx context.Context) (model.RawResponse, error) { return s.client.AutopilotStatus(ctx, h) }
	res := s.tracker.Track(ctx, h, lifecycle.Check(fetch, lifecycle.InterpretProposal), func(st model.NormalizedStatus) {
		if err := s.machine.Apply(st); err != nil {
			s.logger.Warningf("Could not apply proposal status: %s", err)
		}
		if onUpdate != nil {
			onUpdate(st)
		}
	})

	// A newer proposal may own the lifecycle already.
	if res.Status.FailureKind == model.FailureKindCancelled && s.machine.Handle().TaskID == h.TaskID {
		s.machine.Reset()
	}

	return res.Status
}

// apply applies a finished start response to the lifecycle.
func (s *Service) apply(h model.OperationHandle, st model.NormalizedStatus) {
	state := s.machine.State()
	if state != lifecycle.ProposalStateProcessing && state != lifecycle.ProposalStateRefining {
		if err := s.machine.Begin(h); err != nil {
			s.logger.Warningf("Could not begin proposal: %s", err)
			return
		}
	}
	if err := s.machine.Apply(st); err != nil {
		s.logger.Warningf("Could not apply proposal status: %s", err)
	}
}

// rejected returns the result of a rejection. Backend failures are returned as they
// are, anything else means the proposal was discarded.
func (s *Service) rejected(ctx context.Context, h model.OperationHandle, st model.NormalizedStatus, startedAt time.Time) model.NormalizedStatus {
	if st.Outcome == model.OutcomeFailed && st.State != string(lifecycle.ProposalStateRejected) {
		return s.tracker.Finish(ctx, h, st, startedAt).Status
	}

	rejected := model.NormalizedStatus{
		State:   string(lifecycle.ProposalStateRejected),
		Outcome: model.OutcomeSucceeded,
		Content: msgProposalRejected,
	}
	return s.tracker.Finish(ctx, h, rejected, startedAt).Status
}
