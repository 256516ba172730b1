package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

const maxTableContentLen = 60

// TablePrinter prints operation information in a human readable format.
type TablePrinter struct {
	writer io.Writer

	mu        sync.Mutex
	lastState string
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintUpdate prints the state of a running operation when it changes.
func (t *TablePrinter) PrintUpdate(status model.NormalizedStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status.State == "" || status.State == t.lastState {
		return nil
	}
	t.lastState = status.State

	_, err := fmt.Fprintf(t.writer, "%s...\n", status.State)
	return err
}

// PrintResult prints the final status of an operation.
func (t *TablePrinter) PrintResult(kind model.OperationKind, status model.NormalizedStatus) error {
	t.mu.Lock()
	t.lastState = ""
	t.mu.Unlock()

	fmt.Fprintf(t.writer, "Kind:       %s\n", kind)
	if status.State != "" {
		fmt.Fprintf(t.writer, "State:      %s\n", status.State)
	}
	fmt.Fprintf(t.writer, "Outcome:    %s\n", status.Outcome)
	if status.Handle.TaskID != "" {
		fmt.Fprintf(t.writer, "Task ID:    %s\n", status.Handle.TaskID)
	}
	if status.Handle.SecondaryID != "" {
		fmt.Fprintf(t.writer, "%-11s %s\n", secondaryIDLabel(kind)+":", status.Handle.SecondaryID)
	}
	if status.ErrorMessage != "" {
		fmt.Fprintf(t.writer, "Error:      %s\n", status.ErrorMessage)
	}
	if status.Advisory != "" {
		fmt.Fprintf(t.writer, "Advisory:   %s\n", status.Advisory)
	}

	if status.Content != "" {
		fmt.Fprintf(t.writer, "\n%s\n", status.Content)
	}

	if len(status.Payload) > 0 {
		data, err := json.MarshalIndent(status.Payload, "", "  ")
		if err != nil {
			return fmt.Errorf("could not marshal payload: %w", err)
		}
		fmt.Fprintf(t.writer, "\n%s:\n%s\n", payloadLabel(kind, status.State), data)
	}

	return nil
}

// PrintJournal prints finished operations in a table format.
func (t *TablePrinter) PrintJournal(entries []model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "ID\tKIND\tSTATE\tOUTCOME\tATTEMPTS\tDURATION\tFINISHED\tDETAIL")

	// Print rows.
	for _, e := range entries {
		detail := e.Content
		if e.ErrorMessage != "" {
			detail = e.ErrorMessage
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.ID,
			e.Kind,
			e.State,
			e.Outcome,
			e.Attempts,
			FormatDuration(e.Duration()),
			TimeAgo(e.FinishedAt),
			truncate(detail, maxTableContentLen),
		)
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func secondaryIDLabel(kind model.OperationKind) string {
	switch kind {
	case model.OperationKindAutopilot:
		return "Proposal ID"
	case model.OperationKindShopAction:
		return "Action ID"
	default:
		return "ID"
	}
}

func payloadLabel(kind model.OperationKind, state string) string {
	switch {
	case kind == model.OperationKindChat:
		return "Agent specification"
	case kind == model.OperationKindAutopilot && state == "awaiting_review":
		return "Proposal"
	default:
		return "Result"
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
