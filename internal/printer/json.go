package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// JSONPrinter prints operation information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// resultOutput represents the final status of an operation.
type resultOutput struct {
	Kind         string         `json:"kind"`
	State        string         `json:"state,omitempty"`
	Outcome      string         `json:"outcome"`
	TaskID       string         `json:"task_id,omitempty"`
	SecondaryID  string         `json:"secondary_id,omitempty"`
	Content      string         `json:"content,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	Advisory     string         `json:"advisory,omitempty"`
	ErrorMessage string         `json:"error,omitempty"`
	FailureKind  string         `json:"failure_kind,omitempty"`
}

// journalItem represents a finished operation of the journal.
type journalItem struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	TaskID       string    `json:"task_id,omitempty"`
	SecondaryID  string    `json:"secondary_id,omitempty"`
	State        string    `json:"state,omitempty"`
	Outcome      string    `json:"outcome"`
	FailureKind  string    `json:"failure_kind,omitempty"`
	Content      string    `json:"content,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
	Attempts     int       `json:"attempts"`
	DurationMS   int64     `json:"duration_ms"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintUpdate doesn't print anything, JSON output only has the final result.
func (j *JSONPrinter) PrintUpdate(model.NormalizedStatus) error { return nil }

// PrintResult prints the final status of an operation in JSON format.
func (j *JSONPrinter) PrintResult(kind model.OperationKind, status model.NormalizedStatus) error {
	return j.encode(resultOutput{
		Kind:         string(kind),
		State:        status.State,
		Outcome:      string(status.Outcome),
		TaskID:       status.Handle.TaskID,
		SecondaryID:  status.Handle.SecondaryID,
		Content:      status.Content,
		Payload:      status.Payload,
		Advisory:     status.Advisory,
		ErrorMessage: status.ErrorMessage,
		FailureKind:  string(status.FailureKind),
	})
}

// PrintJournal prints finished operations in JSON format.
func (j *JSONPrinter) PrintJournal(entries []model.JournalEntry) error {
	items := make([]journalItem, len(entries))
	for i, e := range entries {
		items[i] = journalItem{
			ID:           e.ID,
			Kind:         string(e.Kind),
			TaskID:       e.TaskID,
			SecondaryID:  e.SecondaryID,
			State:        e.State,
			Outcome:      string(e.Outcome),
			FailureKind:  string(e.FailureKind),
			Content:      e.Content,
			ErrorMessage: e.ErrorMessage,
			Attempts:     e.Attempts,
			DurationMS:   e.Duration().Milliseconds(),
			StartedAt:    e.StartedAt.UTC(),
			FinishedAt:   e.FinishedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
