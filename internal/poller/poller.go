package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/metrics"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

const (
	// DefaultRetryBudget is the number of retries after a transient check error.
	DefaultRetryBudget = 3
	// DefaultRetryDelay is the fixed delay between transient retries.
	DefaultRetryDelay = time.Second
)

// CheckFunc checks the status of an operation once. It must be safe to call
// repeatedly, and must only return an error on transport, parse or task id
// validation failures, never for still pending statuses.
type CheckFunc func(ctx context.Context) (model.NormalizedStatus, error)

// UpdateFunc receives the status updates of a poll.
type UpdateFunc func(status model.NormalizedStatus)

// Sleeper waits between attempts.
type Sleeper interface {
	// Sleep waits d, returning early with the context error if ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc is a helper to use functions as Sleepers.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// TimerSleeper sleeps using a timer that is always stopped on return.
var TimerSleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})

// Config is the configuration of the poller.
type Config struct {
	// Kind is the operation kind polled, used for logs and metrics.
	Kind model.OperationKind
	// RetryBudget is the number of retries of a failed check before giving up.
	RetryBudget int
	// RetryDelay is the fixed delay between check retries.
	RetryDelay time.Duration
	// Sleeper is used to wait between attempts.
	Sleeper Sleeper
	// MetricsRecorder records poll metrics.
	MetricsRecorder metrics.Recorder
	// Logger for logging.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if c.RetryBudget < 0 {
		return fmt.Errorf("retry budget can't be negative")
	}
	if c.RetryBudget == 0 {
		c.RetryBudget = DefaultRetryBudget
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay can't be negative")
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Sleeper == nil {
		c.Sleeper = TimerSleeper
	}
	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "poller.Poller", "kind": c.Kind})
	return nil
}

// Poller drives status checks of long running operations until they reach a
// terminal status, are cancelled, or the attempt ceiling is reached.
type Poller struct {
	kind        model.OperationKind
	retryBudget int
	retryDelay  time.Duration
	sleeper     Sleeper
	metrics     metrics.Recorder
	logger      log.Logger
}

// New returns a new poller.
func New(cfg Config) (*Poller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Poller{
		kind:        cfg.Kind,
		retryBudget: cfg.RetryBudget,
		retryDelay:  cfg.RetryDelay,
		sleeper:     cfg.Sleeper,
		metrics:     cfg.MetricsRecorder,
		logger:      cfg.Logger,
	}, nil
}

// Handle is a running poll.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	live   atomic.Bool

	mu       sync.Mutex
	result   model.NormalizedStatus
	attempts []model.PollAttempt
}

// Cancel stops the poll. Future attempts are not scheduled, pending timers are
// stopped, the in flight check context is cancelled and no more updates are
// delivered. It is safe to call it multiple times or after the poll finished.
func (h *Handle) Cancel() {
	h.live.Store(false)
	h.cancel()
}

// Done is closed when the poll has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the poll finishes and returns its final status. A cancelled
// poll finishes with a cancelled failure.
func (h *Handle) Wait() model.NormalizedStatus {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

// Attempts returns the attempts made so far.
func (h *Handle) Attempts() []model.PollAttempt {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.PollAttempt(nil), h.attempts...)
}

func (h *Handle) recordAttempt(a model.PollAttempt) {
	h.mu.Lock()
	h.attempts = append(h.attempts, a)
	h.mu.Unlock()
}

func (h *Handle) finish(s model.NormalizedStatus) {
	h.mu.Lock()
	h.result = s
	h.mu.Unlock()
}

// Start starts polling with check following policy, onUpdate receives at most one
// status per attempt, the last one being terminal. Failures are delivered as
// failed statuses, Start never fails.
func (p *Poller) Start(ctx context.Context, check CheckFunc, policy model.BackoffPolicy, onUpdate UpdateFunc) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	h.live.Store(true)

	if onUpdate == nil {
		onUpdate = func(model.NormalizedStatus) {}
	}

	go func() {
		defer close(h.done)
		defer cancel()

		start := time.Now()
		final := p.run(ctx, h, check, policy, onUpdate)
		h.finish(final)
		p.metrics.ObserveOperationFinished(ctx, p.kind, final.Outcome, final.FailureKind, time.Since(start))
	}()

	return h
}

func (p *Poller) run(ctx context.Context, h *Handle, check CheckFunc, policy model.BackoffPolicy, onUpdate UpdateFunc) model.NormalizedStatus {
	// Liveness is checked before every update.
	emit := func(s model.NormalizedStatus) {
		if h.live.Load() {
			onUpdate(s)
		}
	}

	if err := policy.Validate(); err != nil {
		final := model.FailedStatus("", model.FailureKindInvalid, fmt.Sprintf("invalid polling policy: %s", err))
		emit(final)
		return final
	}

	cadence := newCadence(policy)
	delay := time.Duration(0)
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay = cadence.NextBackOff()
			if err := p.sleeper.Sleep(ctx, delay); err != nil {
				return cancelledStatus()
			}
		}

		status, err := p.checkWithRetries(ctx, h, attempt, delay, check)
		if ctx.Err() != nil {
			return cancelledStatus()
		}
		if err != nil {
			p.logger.Warningf("Polling exhausted on attempt %d: %s", attempt, err)
			final := model.FailedStatus(status.State, model.FailureKindPollingExhausted, fmt.Sprintf("Polling failed after %d retries: %s", p.retryBudget, err))
			emit(final)
			return final
		}

		if status.IsTerminal() {
			p.logger.Debugf("Terminal status %q (%s) on attempt %d", status.State, status.Outcome, attempt)
			emit(status)
			return status
		}

		// The last pending attempt is reported as the timeout.
		if attempt == policy.MaxAttempts-1 {
			break
		}
		emit(status)
	}

	p.logger.Warningf("Attempt ceiling of %d reached", policy.MaxAttempts)
	final := model.FailedStatus("", model.FailureKindTimeout, model.MsgResponseTimeout)
	emit(final)
	return final
}

// checkWithRetries runs one scheduled attempt, retrying transient and task id
// validation errors with the retry budget.
func (p *Poller) checkWithRetries(ctx context.Context, h *Handle, attempt int, delay time.Duration, check CheckFunc) (model.NormalizedStatus, error) {
	budget := newRetryBudget(p.retryBudget, p.retryDelay)
	isRetry := false
	for {
		h.recordAttempt(model.PollAttempt{Number: attempt, IsRetry: isRetry, Delay: delay})
		p.metrics.ObservePollAttempt(ctx, p.kind, isRetry)

		status, err := check(ctx)
		if err == nil {
			return status, nil
		}
		if ctx.Err() != nil {
			return model.NormalizedStatus{}, ctx.Err()
		}

		if errors.Is(err, model.ErrTaskIDValidation) {
			p.logger.Debugf("Task id not ready on attempt %d: %s", attempt, err)
		} else {
			p.logger.Warningf("Status check failed on attempt %d: %s", attempt, err)
		}

		next := budget.NextBackOff()
		if next == backoff.Stop {
			return model.NormalizedStatus{}, err
		}
		if err := p.sleeper.Sleep(ctx, next); err != nil {
			return model.NormalizedStatus{}, err
		}
		isRetry = true
		delay = next
	}
}

func cancelledStatus() model.NormalizedStatus {
	return model.FailedStatus("", model.FailureKindCancelled, model.MsgCancelled)
}

// Slot holds the running poll of a single surface (e.g. a chat window). Starting a
// new poll on the slot cancels the previous one.
type Slot struct {
	mu      sync.Mutex
	current *Handle
}

// Start cancels the running poll of the slot, if any, and starts a new one.
func (s *Slot) Start(ctx context.Context, p *Poller, check CheckFunc, policy model.BackoffPolicy, onUpdate UpdateFunc) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Cancel()
	}
	s.current = p.Start(ctx, check, policy, onUpdate)
	return s.current
}

// Cancel cancels the running poll of the slot, if any.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Cancel()
		s.current = nil
	}
}

// Current returns the last started poll, nil if none.
func (s *Slot) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
