package normalize

import (
	"fmt"
	"strings"
)

// Status is a canonical backend status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRefining  Status = "refining"
	StatusProposed  Status = "proposed"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// statusSynonyms maps the status strings the backend has used over time to their
// canonical status. Keys are upper cased.
var statusSynonyms = map[string]Status{
	"PENDING":     StatusPending,
	"QUEUED":      StatusPending,
	"STARTED":     StatusPending,
	"PROCESSING":  StatusPending,
	"IN_PROGRESS": StatusPending,
	"RUNNING":     StatusPending,
	"RETRY":       StatusPending,

	"APPROVED":  StatusApproved,
	"EXECUTING": StatusApproved,

	"REFINING":          StatusRefining,
	"FEEDBACK_RECEIVED": StatusRefining,

	"PROPOSED":          StatusProposed,
	"PROPOSAL_READY":    StatusProposed,
	"AWAITING_APPROVAL": StatusProposed,
	"AWAITING_REVIEW":   StatusProposed,

	"COMPLETED": StatusCompleted,
	"COMPLETE":  StatusCompleted,
	"SUCCESS":   StatusCompleted,
	"DONE":      StatusCompleted,
	"EXECUTED":  StatusCompleted,

	"REJECTED":               StatusRejected,
	"REJECTED_WITH_FEEDBACK": StatusRejected,

	"FAILED":  StatusFailed,
	"FAILURE": StatusFailed,
	"ERROR":   StatusFailed,
}

// CanonicalStatus maps a raw backend status through the synonyms table.
func CanonicalStatus(raw string) (Status, bool) {
	s, ok := statusSynonyms[strings.ToUpper(strings.TrimSpace(raw))]
	return s, ok
}

// UnexpectedStatusMessage is the failure message for statuses outside the synonyms table.
func UnexpectedStatusMessage(raw any) string {
	return fmt.Sprintf("Unexpected status: %v", raw)
}
