package lifecycle

import (
	"sync"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/normalize"
)

// ProposalState is the state of an autopilot proposal.
type ProposalState string

const (
	ProposalStateIdle           ProposalState = "idle"
	ProposalStateProcessing     ProposalState = "processing"
	ProposalStateRefining       ProposalState = "refining"
	ProposalStateAwaitingReview ProposalState = "awaiting_review"
	ProposalStateSucceeded      ProposalState = "succeeded"
	ProposalStateFailed         ProposalState = "failed"
	// ProposalStateRejected is only used as a normalized status state, a rejected
	// proposal lifecycle goes back to idle.
	ProposalStateRejected ProposalState = "rejected"
)

const msgProposalRejected = "Proposal rejected"

// InterpretProposal interprets an autopilot create, feedback or status response.
//
// A received proposal finishes the poll successfully in the awaiting review state,
// the next step belongs to the user.
func InterpretProposal(raw model.RawResponse) model.NormalizedStatus {
	d := normalize.Decode(raw, normalize.AutopilotShapes)

	switch d.Kind {
	case normalize.DecodedResult:
		return model.NormalizedStatus{
			State:    string(ProposalStateSucceeded),
			Outcome:  model.OutcomeSucceeded,
			Content:  d.Message,
			Payload:  d.Result,
			Advisory: d.Advisory,
			Handle:   d.Handle,
		}

	case normalize.DecodedProposal:
		return model.NormalizedStatus{
			State:   string(ProposalStateAwaitingReview),
			Outcome: model.OutcomeSucceeded,
			Content: d.Message,
			Payload: d.Proposal,
			Handle:  d.Handle,
		}

	case normalize.DecodedStillPending:
		state := ProposalStateProcessing
		if d.Status == normalize.StatusRefining {
			state = ProposalStateRefining
		}
		s := model.PendingStatus(string(state))
		s.Content = d.Message
		s.Handle = d.Handle
		return s

	case normalize.DecodedRejected:
		msg := d.Message
		if msg == "" {
			msg = msgProposalRejected
		}
		s := model.FailedStatus(string(ProposalStateRejected), model.FailureKindDomain, msg)
		s.Handle = d.Handle
		return s
	}

	kind := model.FailureKindDomain
	if d.Unrecognized {
		kind = model.FailureKindUnrecognizedStatus
	}
	s := model.FailedStatus(string(ProposalStateFailed), kind, d.Message)
	s.Handle = d.Handle
	return s
}

// Proposal is the lifecycle of an autopilot proposal:
//
//	idle -> processing -> awaiting_review -> processing|refining -> ... -> succeeded|failed
//
// Rejecting a proposal goes back to idle discarding the operation handle.
type Proposal struct {
	mu       sync.Mutex
	state    ProposalState
	handle   model.OperationHandle
	proposal map[string]any
	result   map[string]any
	last     model.NormalizedStatus
}

// NewProposal returns a new idle proposal lifecycle.
func NewProposal() *Proposal {
	return &Proposal{state: ProposalStateIdle}
}

// State returns the current state.
func (p *Proposal) State() ProposalState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Handle returns the handle of the current proposal.
func (p *Proposal) Handle() model.OperationHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// Proposal returns the proposal awaiting review, nil if none.
func (p *Proposal) Proposal() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.proposal
}

// Result returns the result of a succeeded proposal, nil if none.
func (p *Proposal) Result() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Last returns the last applied status.
func (p *Proposal) Last() model.NormalizedStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Begin starts processing a new proposal request.
func (p *Proposal) Begin(h model.OperationHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case ProposalStateIdle, ProposalStateSucceeded, ProposalStateFailed:
	default:
		return invalidTransition(string(p.state), "begin")
	}
	if err := h.Validate(); err != nil {
		return err
	}

	p.state = ProposalStateProcessing
	p.handle = h
	p.proposal = nil
	p.result = nil
	p.last = model.PendingStatus(string(ProposalStateProcessing))
	return nil
}

// Resume puts an already known proposal under review, e.g. one created by a
// previous process that only kept its id.
func (p *Proposal) Resume(h model.OperationHandle, proposal map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != ProposalStateIdle {
		return invalidTransition(string(p.state), "resume")
	}
	if err := h.Validate(); err != nil {
		return err
	}

	p.state = ProposalStateAwaitingReview
	p.handle = h
	p.proposal = proposal
	return nil
}

// Apply moves the lifecycle with a status of the proposal being processed.
func (p *Proposal) Apply(s model.NormalizedStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != ProposalStateProcessing && p.state != ProposalStateRefining {
		return invalidTransition(string(p.state), "apply status")
	}

	p.last = s
	switch {
	case s.Outcome == model.OutcomePending:
		p.handle = p.handle.Merge(s.Handle)
		if s.State == string(ProposalStateRefining) {
			p.state = ProposalStateRefining
		}
	case s.State == string(ProposalStateAwaitingReview):
		p.state = ProposalStateAwaitingReview
		p.handle = p.handle.Merge(s.Handle)
		p.proposal = s.Payload
	case s.Outcome == model.OutcomeSucceeded:
		p.state = ProposalStateSucceeded
		p.handle = model.OperationHandle{}
		p.proposal = nil
		p.result = s.Payload
	case s.State == string(ProposalStateRejected), s.FailureKind == model.FailureKindCancelled:
		p.reset()
	default:
		p.state = ProposalStateFailed
		p.handle = model.OperationHandle{}
	}

	return nil
}

// Approve sends the proposal under review back to processing.
func (p *Proposal) Approve() error {
	return p.review(ProposalStateProcessing, "approve")
}

// Refine sends the proposal under review back to processing in refining mode, a new
// proposal is expected.
func (p *Proposal) Refine() error {
	return p.review(ProposalStateRefining, "refine")
}

func (p *Proposal) review(to ProposalState, event string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != ProposalStateAwaitingReview {
		return invalidTransition(string(p.state), event)
	}
	p.state = to
	p.last = model.PendingStatus(string(to))
	return nil
}

// Reject discards the proposal under review and its operation handle.
func (p *Proposal) Reject() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != ProposalStateAwaitingReview {
		return invalidTransition(string(p.state), "reject")
	}
	p.reset()
	return nil
}

// Reset goes back to idle from any state.
func (p *Proposal) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Proposal) reset() {
	p.state = ProposalStateIdle
	p.handle = model.OperationHandle{}
	p.proposal = nil
	p.result = nil
}
