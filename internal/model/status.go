package model

// Outcome is the terminal classification of a normalized status.
type Outcome string

const (
	// OutcomePending means polling must continue.
	OutcomePending Outcome = "pending"
	// OutcomeSucceeded means polling ended and the operation produced something usable.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means polling ended with a failure.
	OutcomeFailed Outcome = "failed"
)

// FailureKind classifies failed statuses.
type FailureKind string

const (
	FailureKindNone               FailureKind = ""
	FailureKindDomain             FailureKind = "domain"
	FailureKindUnrecognizedStatus FailureKind = "unrecognized_status"
	FailureKindTimeout            FailureKind = "timeout"
	FailureKindPollingExhausted   FailureKind = "polling_exhausted"
	FailureKindTransport          FailureKind = "transport"
	FailureKindInvalid            FailureKind = "invalid"
	FailureKindCancelled          FailureKind = "cancelled"
)

// User facing messages of the failures the poller generates itself.
const (
	MsgResponseTimeout = "Response timeout - please try again"
	MsgCancelled       = "Operation cancelled"
)

// RawResponse is a decoded backend JSON object whose shape is not stable.
type RawResponse map[string]any

// NormalizedStatus is the canonical result of interpreting one raw backend response.
type NormalizedStatus struct {
	// State is the domain lifecycle label (e.g. processing, awaiting_review).
	State string
	// Outcome is exactly one of pending, succeeded or failed.
	Outcome Outcome
	// Content is the human readable message or result.
	Content string
	// Payload is the structured domain object (agent specification, proposal, result).
	Payload map[string]any
	// Advisory is an informative message attached to a success (e.g. action already processed).
	Advisory string
	// ErrorMessage is set on failures.
	ErrorMessage string
	// FailureKind classifies failures.
	FailureKind FailureKind
	// Handle carries the operation ids learned from the response, if any.
	Handle OperationHandle
}

// IsTerminal returns true if the status stops polling.
func (s NormalizedStatus) IsTerminal() bool { return s.Outcome != OutcomePending }

// PendingStatus returns a still pending status.
func PendingStatus(state string) NormalizedStatus {
	return NormalizedStatus{State: state, Outcome: OutcomePending}
}

// FailedStatus returns a failed status.
func FailedStatus(state string, kind FailureKind, msg string) NormalizedStatus {
	return NormalizedStatus{
		State:        state,
		Outcome:      OutcomeFailed,
		ErrorMessage: msg,
		FailureKind:  kind,
	}
}
