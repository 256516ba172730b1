package model

import "time"

// JournalEntry is the record of a finished operation. Live operation handles are
// never stored, only what they ended with.
type JournalEntry struct {
	ID           string
	Kind         OperationKind
	TaskID       string
	SecondaryID  string
	State        string
	Outcome      Outcome
	FailureKind  FailureKind
	Content      string
	ErrorMessage string
	Attempts     int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the operation took.
func (e JournalEntry) Duration() time.Duration { return e.FinishedAt.Sub(e.StartedAt) }
