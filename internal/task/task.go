// Package task tracks polled backend tasks from their start until they finish,
// keeping a journal of the finished ones.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/metrics"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/poller"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage"
)

// TrackerConfig is the configuration of the task tracker.
type TrackerConfig struct {
	// Kind is the kind of the tracked operations.
	Kind model.OperationKind
	// Policy is the polling policy, defaults to the kind default policy.
	Policy model.BackoffPolicy
	// Journal stores the finished operations, optional.
	Journal storage.JournalRepository
	// RetryBudget and RetryDelay configure the transient error retries of the poller.
	RetryBudget int
	RetryDelay  time.Duration
	// Sleeper is used by the poller to wait between attempts.
	Sleeper poller.Sleeper
	// MetricsRecorder records the poll and finished operation metrics.
	MetricsRecorder metrics.Recorder
	// Logger for logging.
	Logger log.Logger
}

func (c *TrackerConfig) defaults() error {
	if c.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if c.Policy == (model.BackoffPolicy{}) {
		c.Policy = model.DefaultPolicy(c.Kind)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Tracker", "kind": c.Kind})
	return nil
}

// Result is the result of a tracked task.
type Result struct {
	// Status is the final status, its handle has all the ids known of the operation.
	Status model.NormalizedStatus
	// Attempts is the number of status checks made, retries included.
	Attempts int
	// JournalID is the id of the journal entry, empty when not journaled.
	JournalID string
}

// Tracker tracks the tasks of a single surface, starting a new one cancels the
// running one.
type Tracker struct {
	kind    model.OperationKind
	policy  model.BackoffPolicy
	journal storage.JournalRepository
	poller  *poller.Poller
	slot    poller.Slot
	metrics metrics.Recorder
	logger  log.Logger
}

// NewTracker returns a new task tracker.
func NewTracker(cfg TrackerConfig) (*Tracker, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p, err := poller.New(poller.Config{
		Kind:            cfg.Kind,
		RetryBudget:     cfg.RetryBudget,
		RetryDelay:      cfg.RetryDelay,
		Sleeper:         cfg.Sleeper,
		MetricsRecorder: cfg.MetricsRecorder,
		Logger:          cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create poller: %w", err)
	}

	return &Tracker{
		kind:    cfg.Kind,
		policy:  cfg.Policy,
		journal: cfg.Journal,
		poller:  p,
		metrics: cfg.MetricsRecorder,
		logger:  cfg.Logger,
	}, nil
}

// Track polls the task identified by h with check until it finishes, and journals
// the final status. onUpdate receives the poll updates.
func (t *Tracker) Track(ctx context.Context, h model.OperationHandle, check poller.CheckFunc, onUpdate poller.UpdateFunc) Result {
	startedAt := time.Now().UTC()
	t.logger.Debugf("Tracking task %q (%q)", h.TaskID, h.SecondaryID)

	ph := t.slot.Start(ctx, t.poller, check, t.policy, onUpdate)
	final := ph.Wait()
	final.Handle = h.Merge(final.Handle)

	return t.finish(ctx, final, len(ph.Attempts()), startedAt)
}

// Finish journals a task that finished without being polled, e.g. when the start
// response already had the result.
func (t *Tracker) Finish(ctx context.Context, h model.OperationHandle, status model.NormalizedStatus, startedAt time.Time) Result {
	status.Handle = h.Merge(status.Handle)
	// Polled tasks are measured by the poller.
	t.metrics.ObserveOperationFinished(ctx, t.kind, status.Outcome, status.FailureKind, time.Since(startedAt))
	return t.finish(ctx, status, 0, startedAt)
}

// Cancel cancels the running task poll, if any.
func (t *Tracker) Cancel() { t.slot.Cancel() }

func (t *Tracker) finish(ctx context.Context, status model.NormalizedStatus, attempts int, startedAt time.Time) Result {
	res := Result{Status: status, Attempts: attempts}

	switch status.Outcome {
	case model.OutcomeFailed:
		t.logger.Warningf("Task %q failed (%s): %s", status.Handle.TaskID, status.FailureKind, status.ErrorMessage)
	default:
		t.logger.Infof("Task %q finished: %s", status.Handle.TaskID, status.State)
	}

	if t.journal == nil {
		return res
	}

	entry := model.JournalEntry{
		ID:           ulid.Make().String(),
		Kind:         t.kind,
		TaskID:       status.Handle.TaskID,
		SecondaryID:  status.Handle.SecondaryID,
		State:        status.State,
		Outcome:      status.Outcome,
		FailureKind:  status.FailureKind,
		Content:      status.Content,
		ErrorMessage: status.ErrorMessage,
		Attempts:     attempts,
		StartedAt:    startedAt,
		FinishedAt:   time.Now().UTC(),
	}

	// Cancelled tasks are journaled too, the journal write must outlive the cancellation.
	if err := t.journal.CreateEntry(context.WithoutCancel(ctx), entry); err != nil {
		t.logger.Warningf("Could not journal task %q: %s", status.Handle.TaskID, err)
		return res
	}

	res.JournalID = entry.ID
	return res
}
