package lifecycle

import (
	"sync"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/normalize"
)

// ShopActionState is the state of a shop action.
type ShopActionState string

const (
	ShopActionStateIdle      ShopActionState = "idle"
	ShopActionStatePending   ShopActionState = "pending"
	ShopActionStateApproved  ShopActionState = "approved"
	ShopActionStateSucceeded ShopActionState = "succeeded"
	ShopActionStateFailed    ShopActionState = "failed"
)

const msgShopActionRejected = "Action rejected"

// InterpretShopAction interprets a shop action execute or status response. A
// completed status wins over an error sent alongside it, the error is kept as an
// advisory of the success.
func InterpretShopAction(raw model.RawResponse) model.NormalizedStatus {
	d := normalize.Decode(raw, normalize.ShopActionShapes)

	switch d.Kind {
	case normalize.DecodedResult:
		return model.NormalizedStatus{
			State:    string(ShopActionStateSucceeded),
			Outcome:  model.OutcomeSucceeded,
			Content:  d.Message,
			Payload:  d.Result,
			Advisory: d.Advisory,
			Handle:   d.Handle,
		}

	case normalize.DecodedStillPending:
		state := ShopActionStatePending
		if d.Status == normalize.StatusApproved {
			state = ShopActionStateApproved
		}
		s := model.PendingStatus(string(state))
		s.Content = d.Message
		s.Handle = d.Handle
		return s

	case normalize.DecodedRejected:
		msg := d.Message
		if msg == "" {
			msg = msgShopActionRejected
		}
		s := model.FailedStatus(string(ShopActionStateFailed), model.FailureKindDomain, msg)
		s.Handle = d.Handle
		return s
	}

	kind := model.FailureKindDomain
	if d.Unrecognized {
		kind = model.FailureKindUnrecognizedStatus
	}
	s := model.FailedStatus(string(ShopActionStateFailed), kind, d.Message)
	s.Handle = d.Handle
	return s
}

// ShopAction is the lifecycle of a shop action: idle -> pending|approved -> succeeded|failed.
type ShopAction struct {
	mu     sync.Mutex
	state  ShopActionState
	handle model.OperationHandle
	last   model.NormalizedStatus
}

// NewShopAction returns a new idle shop action lifecycle.
func NewShopAction() *ShopAction {
	return &ShopAction{state: ShopActionStateIdle}
}

// State returns the current state.
func (a *ShopAction) State() ShopActionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Handle returns the handle of the action being processed.
func (a *ShopAction) Handle() model.OperationHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handle
}

// Last returns the last applied status.
func (a *ShopAction) Last() model.NormalizedStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Begin starts processing a started action.
func (a *ShopAction) Begin(h model.OperationHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == ShopActionStatePending || a.state == ShopActionStateApproved {
		return invalidTransition(string(a.state), "begin")
	}
	if err := h.Validate(); err != nil {
		return err
	}

	a.state = ShopActionStatePending
	a.handle = h
	a.last = model.PendingStatus(string(ShopActionStatePending))
	return nil
}

// Apply moves the lifecycle with a status of the action being processed.
func (a *ShopAction) Apply(s model.NormalizedStatus) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != ShopActionStatePending && a.state != ShopActionStateApproved {
		return invalidTransition(string(a.state), "apply status")
	}

	a.last = s
	switch {
	case s.Outcome == model.OutcomePending:
		a.handle = a.handle.Merge(s.Handle)
		if s.State == string(ShopActionStateApproved) {
			a.state = ShopActionStateApproved
		}
		return nil
	case s.Outcome == model.OutcomeSucceeded:
		a.state = ShopActionStateSucceeded
	case s.FailureKind == model.FailureKindCancelled:
		a.state = ShopActionStateIdle
	default:
		a.state = ShopActionStateFailed
	}

	a.handle = model.OperationHandle{}
	return nil
}

// Reset discards the current action.
func (a *ShopAction) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = ShopActionStateIdle
	a.handle = model.OperationHandle{}
	a.last = model.NormalizedStatus{}
}
