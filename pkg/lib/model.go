package lib

import (
	"errors"
	"time"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when an input or operation is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrTransport is returned when the backend could not be reached or answered
	// with a body that can't be understood.
	ErrTransport = errors.New("transport error")
)

// OperationKind identifies the kind of backend operation.
type OperationKind string

const (
	// OperationKindChat is a chat message sent to the assistant.
	OperationKindChat OperationKind = "chat"
	// OperationKindAutopilot is an autopilot proposal.
	OperationKindAutopilot OperationKind = "autopilot"
	// OperationKindShopAction is a shop action execution.
	OperationKindShopAction OperationKind = "shop_action"
)

// Outcome classifies a status.
type Outcome string

const (
	// OutcomePending means the operation is still running.
	OutcomePending Outcome = "pending"
	// OutcomeSucceeded means the operation finished and produced something usable.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means the operation finished with a failure.
	OutcomeFailed Outcome = "failed"
)

// FailureKind classifies failed statuses.
type FailureKind string

const (
	// FailureKindDomain is a failure reported by the backend.
	FailureKindDomain FailureKind = "domain"
	// FailureKindUnrecognizedStatus is a status label the SDK doesn't know.
	FailureKindUnrecognizedStatus FailureKind = "unrecognized_status"
	// FailureKindTimeout means the operation was still running after all the polling attempts.
	FailureKindTimeout FailureKind = "timeout"
	// FailureKindPollingExhausted means the status could not be checked after all the retries.
	FailureKindPollingExhausted FailureKind = "polling_exhausted"
	// FailureKindInvalid means the polling was misconfigured.
	FailureKindInvalid FailureKind = "invalid"
	// FailureKindCancelled means the operation was cancelled by the caller.
	FailureKindCancelled FailureKind = "cancelled"
)

// Handle identifies a backend operation.
type Handle struct {
	// TaskID is the backend task id.
	TaskID string
	// SecondaryID is the proposal or action id.
	SecondaryID string
}

// Status is the interpreted status of an operation.
type Status struct {
	// State is the lifecycle label (e.g. processing, awaiting_review, succeeded).
	State   string
	Outcome Outcome
	// Content is the human readable message or result.
	Content string
	// Payload is the structured object of the operation: the agent specification
	// on chats, the proposal or the result on proposals and actions.
	Payload map[string]any
	// Advisory is an informative message attached to a success.
	Advisory     string
	ErrorMessage string
	FailureKind  FailureKind
	Handle       Handle
}

// Succeeded returns true if the operation finished successfully.
func (s Status) Succeeded() bool { return s.Outcome == OutcomeSucceeded }

// UpdateFunc receives the statuses of a running operation.
type UpdateFunc func(Status)

// BackoffPolicy is the polling cadence of an operation kind: the delay after
// attempt n is min(InitialDelay * Multiplier^n, MaxDelay).
type BackoffPolicy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
}

// FeedbackAction is the review of an autopilot proposal.
type FeedbackAction string

const (
	FeedbackApprove FeedbackAction = "approve"
	FeedbackRefine  FeedbackAction = "refine"
	FeedbackReject  FeedbackAction = "reject"
)

// JournalEntry is a finished operation.
type JournalEntry struct {
	ID           string
	Kind         OperationKind
	Handle       Handle
	State        string
	Outcome      Outcome
	FailureKind  FailureKind
	Content      string
	ErrorMessage string
	// Attempts is the number of status checks made.
	Attempts   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// HistoryOpts filters the journal entries.
type HistoryOpts struct {
	// Kind only lists operations of this kind, all when empty.
	Kind OperationKind
	// Limit is the max number of entries, all when 0.
	Limit int
}

// --- Conversion helpers ---

func fromInternalStatus(s model.NormalizedStatus) Status {
	return Status{
		State:        s.State,
		Outcome:      Outcome(s.Outcome),
		Content:      s.Content,
		Payload:      s.Payload,
		Advisory:     s.Advisory,
		ErrorMessage: s.ErrorMessage,
		FailureKind:  FailureKind(s.FailureKind),
		Handle:       Handle{TaskID: s.Handle.TaskID, SecondaryID: s.Handle.SecondaryID},
	}
}

func toInternalHandle(h Handle) model.OperationHandle {
	return model.OperationHandle{TaskID: h.TaskID, SecondaryID: h.SecondaryID}
}

func toInternalPolicies(ps map[OperationKind]BackoffPolicy) map[model.OperationKind]model.BackoffPolicy {
	if len(ps) == 0 {
		return nil
	}

	res := make(map[model.OperationKind]model.BackoffPolicy, len(ps))
	for k, p := range ps {
		res[model.OperationKind(k)] = model.BackoffPolicy{
			InitialDelay: p.InitialDelay,
			MaxDelay:     p.MaxDelay,
			Multiplier:   p.Multiplier,
			MaxAttempts:  p.MaxAttempts,
		}
	}
	return res
}

func toInternalFeedbackAction(a FeedbackAction) api.FeedbackAction {
	return api.FeedbackAction(a)
}

func fromInternalJournalEntry(e model.JournalEntry) JournalEntry {
	return JournalEntry{
		ID:           e.ID,
		Kind:         OperationKind(e.Kind),
		Handle:       Handle{TaskID: e.TaskID, SecondaryID: e.SecondaryID},
		State:        e.State,
		Outcome:      Outcome(e.Outcome),
		FailureKind:  FailureKind(e.FailureKind),
		Content:      e.Content,
		ErrorMessage: e.ErrorMessage,
		Attempts:     e.Attempts,
		StartedAt:    e.StartedAt,
		FinishedAt:   e.FinishedAt,
	}
}

func fromInternalJournal(es []model.JournalEntry) []JournalEntry {
	result := make([]JournalEntry, len(es))
	for i, e := range es {
		result[i] = fromInternalJournalEntry(e)
	}
	return result
}

func toInternalUpdate(fn UpdateFunc) func(model.NormalizedStatus) {
	if fn == nil {
		return nil
	}
	return func(s model.NormalizedStatus) { fn(fromInternalStatus(s)) }
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrTransport):
		return joinErrors(err, ErrTransport)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
