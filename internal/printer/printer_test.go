package printer_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/printer"
)

func journalFixture() []model.JournalEntry {
	startedAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	return []model.JournalEntry{
		{
			ID:          "01HZZZZZZZZZZZZZZZZZZZZZZ1",
			Kind:        model.OperationKindShopAction,
			TaskID:      "t2",
			SecondaryID: "a1",
			State:       "succeeded",
			Outcome:     model.OutcomeSucceeded,
			Content:     "Updated 3 products",
			Attempts:    4,
			StartedAt:   startedAt,
			FinishedAt:  startedAt.Add(6500 * time.Millisecond),
		},
		{
			ID:           "01HZZZZZZZZZZZZZZZZZZZZZZ0",
			Kind:         model.OperationKindChat,
			TaskID:       "t1",
			Outcome:      model.OutcomeFailed,
			FailureKind:  model.FailureKindTimeout,
			ErrorMessage: model.MsgResponseTimeout,
			Attempts:     30,
			StartedAt:    startedAt,
			FinishedAt:   startedAt.Add(30 * time.Second),
		},
	}
}

func TestTablePrinterPrintUpdate(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	require.NoError(t, p.PrintUpdate(model.PendingStatus("processing")))
	require.NoError(t, p.PrintUpdate(model.PendingStatus("processing")))
	require.NoError(t, p.PrintUpdate(model.PendingStatus("")))
	require.NoError(t, p.PrintUpdate(model.PendingStatus("approved")))

	assert.Equal(t, "processing...\napproved...\n", buf.String())
}

func TestTablePrinterPrintResult(t *testing.T) {
	tests := map[string]struct {
		kind       model.OperationKind
		status     model.NormalizedStatus
		expContain []string
		expMissing []string
	}{
		"A chat success should print the content and agent specification.": {
			kind: model.OperationKindChat,
			status: model.NormalizedStatus{
				State:   "succeeded",
				Outcome: model.OutcomeSucceeded,
				Content: "Hi there",
				Payload: map[string]any{"name": "agent"},
				Handle:  model.OperationHandle{TaskID: "t1"},
			},
			expContain: []string{"State:      succeeded", "Task ID:    t1", "Hi there", "Agent specification:", `"name": "agent"`},
			expMissing: []string{"Error:", "Advisory:"},
		},

		"A proposal awaiting review should print the proposal.": {
			kind: model.OperationKindAutopilot,
			status: model.NormalizedStatus{
				State:   "awaiting_review",
				Outcome: model.OutcomeSucceeded,
				Payload: map[string]any{"id": "p1"},
				Handle:  model.OperationHandle{SecondaryID: "p1"},
			},
			expContain: []string{"Proposal ID: p1", "Proposal:"},
		},

		"A shop action success with advisory should print the advisory.": {
			kind: model.OperationKindShopAction,
			status: model.NormalizedStatus{
				State:    "succeeded",
				Outcome:  model.OutcomeSucceeded,
				Advisory: "already processed",
				Handle:   model.OperationHandle{SecondaryID: "a1"},
			},
			expContain: []string{"Action ID:  a1", "Advisory:   already processed"},
			expMissing: []string{"Result:"},
		},

		"A failure should print the error.": {
			kind:       model.OperationKindChat,
			status:     model.FailedStatus("", model.FailureKindTimeout, model.MsgResponseTimeout),
			expContain: []string{"Outcome:    failed", "Error:      " + model.MsgResponseTimeout},
			expMissing: []string{"State:"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			p := printer.NewTablePrinter(&buf)

			err := p.PrintResult(test.kind, test.status)
			require.NoError(t, err)

			out := buf.String()
			for _, exp := range test.expContain {
				assert.Contains(t, out, exp)
			}
			for _, exp := range test.expMissing {
				assert.NotContains(t, out, exp)
			}
		})
	}
}

func TestTablePrinterPrintJournal(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintJournal(journalFixture())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "KIND")
	assert.Contains(t, lines[1], "shop_action")
	assert.Contains(t, lines[1], "6.5s")
	assert.Contains(t, lines[1], "Updated 3 products")
	assert.Contains(t, lines[2], "chat")
	assert.Contains(t, lines[2], model.MsgResponseTimeout)
}

func TestTablePrinterPrintJournalEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	require.NoError(t, p.PrintJournal(nil))
	assert.Empty(t, buf.String())
}

func TestTablePrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(buf.String()))
}

func TestJSONPrinterPrintResult(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	require.NoError(t, p.PrintUpdate(model.PendingStatus("approved")))
	err := p.PrintResult(model.OperationKindShopAction, model.NormalizedStatus{
		State:    "succeeded",
		Outcome:  model.OutcomeSucceeded,
		Payload:  map[string]any{"id": "x"},
		Advisory: "already processed",
		Handle:   model.OperationHandle{TaskID: "t1", SecondaryID: "a1"},
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]any{
		"kind":         "shop_action",
		"state":        "succeeded",
		"outcome":      "succeeded",
		"task_id":      "t1",
		"secondary_id": "a1",
		"payload":      map[string]any{"id": "x"},
		"advisory":     "already processed",
	}, got)
}

func TestJSONPrinterPrintJournal(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintJournal(journalFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"kind": "shop_action"`)
	assert.Contains(t, out, `"duration_ms": 6500`)
	assert.Contains(t, out, `"failure_kind": "timeout"`)
	assert.Contains(t, out, `"finished_at": "2026-01-30T10:00:30Z"`)
}
