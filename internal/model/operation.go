package model

import (
	"fmt"
	"math"
	"time"
)

// OperationKind is the kind of long-running backend operation.
type OperationKind string

const (
	// OperationKindChat is a chat message sent to the assistant.
	OperationKindChat OperationKind = "chat"
	// OperationKindAutopilot is an autopilot proposal lifecycle.
	OperationKindAutopilot OperationKind = "autopilot"
	// OperationKindShopAction is a shop action execution.
	OperationKindShopAction OperationKind = "shop_action"
)

// OperationHandle identifies one in-flight long-running backend operation.
type OperationHandle struct {
	// TaskID is the primary polling key.
	TaskID string
	// SecondaryID is the proposal or action id, used as fallback polling key or
	// correlated identifier.
	SecondaryID string
}

// IsZero returns true when the handle doesn't identify any operation.
func (h OperationHandle) IsZero() bool { return h.TaskID == "" && h.SecondaryID == "" }

// Validate validates the handle can be used for polling.
func (h OperationHandle) Validate() error {
	if h.IsZero() {
		return fmt.Errorf("task id or secondary id is required: %w", ErrNotValid)
	}
	return nil
}

// Merge returns a handle with the ids of h replaced by the non empty ids of other.
func (h OperationHandle) Merge(other OperationHandle) OperationHandle {
	if other.TaskID != "" {
		h.TaskID = other.TaskID
	}
	if other.SecondaryID != "" {
		h.SecondaryID = other.SecondaryID
	}
	return h
}

// PollAttempt is one request/response cycle of a poll.
type PollAttempt struct {
	// Number is the scheduled attempt number, starting at 0. Retries share the
	// number of the attempt they retry.
	Number int
	// IsRetry is true when the attempt was triggered by a transient or task id
	// validation error instead of the schedule.
	IsRetry bool
	// Delay is the delay observed before this attempt.
	Delay time.Duration
}

// BackoffPolicy is the scheduling cadence of status checks.
type BackoffPolicy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
}

// MaxPollingAttempts is the attempt ceiling used by all the operation kinds by default.
const MaxPollingAttempts = 30

var (
	// DefaultChatPolicy polls every second.
	DefaultChatPolicy = BackoffPolicy{
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
		Multiplier:   1,
		MaxAttempts:  MaxPollingAttempts,
	}
	// DefaultAutopilotPolicy starts at 2s and grows up to 10s.
	DefaultAutopilotPolicy = BackoffPolicy{
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   1.5,
		MaxAttempts:  MaxPollingAttempts,
	}
	// DefaultShopActionPolicy polls every 2 seconds.
	DefaultShopActionPolicy = BackoffPolicy{
		InitialDelay: 2 * time.Second,
		MaxDelay:     2 * time.Second,
		Multiplier:   1,
		MaxAttempts:  MaxPollingAttempts,
	}
)

// DefaultPolicy returns the default polling policy of an operation kind.
func DefaultPolicy(kind OperationKind) BackoffPolicy {
	switch kind {
	case OperationKindAutopilot:
		return DefaultAutopilotPolicy
	case OperationKindShopAction:
		return DefaultShopActionPolicy
	default:
		return DefaultChatPolicy
	}
}

// Validate validates the policy.
func (p BackoffPolicy) Validate() error {
	if p.InitialDelay <= 0 {
		return fmt.Errorf("initial delay must be greater than 0: %w", ErrNotValid)
	}
	if p.MaxDelay < p.InitialDelay {
		return fmt.Errorf("max delay can't be lower than initial delay: %w", ErrNotValid)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("multiplier must be 1 or greater: %w", ErrNotValid)
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be greater than 0: %w", ErrNotValid)
	}
	return nil
}

// Delay returns the delay scheduled after attempt n: min(initial * multiplier^n, max).
func (p BackoffPolicy) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(n))
	if d >= float64(p.MaxDelay) || math.IsInf(d, 0) {
		return p.MaxDelay
	}
	return time.Duration(d)
}
