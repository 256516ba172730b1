package printer

import "github.com/SailingSF/thinkr-web-app-sub000/internal/model"

// Printer knows how to print operation information in different formats.
type Printer interface {
	// PrintUpdate prints an intermediate status of a running operation.
	PrintUpdate(status model.NormalizedStatus) error
	// PrintResult prints the final status of an operation.
	PrintResult(kind model.OperationKind, status model.NormalizedStatus) error
	// PrintJournal prints finished operations.
	PrintJournal(entries []model.JournalEntry) error
	PrintMessage(msg string) error
}
