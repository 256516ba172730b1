package metrics

import (
	"context"
	"time"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// Recorder knows how to record polling metrics.
type Recorder interface {
	// ObservePollAttempt records one status check attempt.
	ObservePollAttempt(ctx context.Context, kind model.OperationKind, retry bool)
	// ObserveOperationFinished records a finished operation.
	ObserveOperationFinished(ctx context.Context, kind model.OperationKind, outcome model.Outcome, failureKind model.FailureKind, duration time.Duration)
}

// Noop is a recorder that doesn't record anything.
var Noop = noop(0)

type noop int

func (noop) ObservePollAttempt(context.Context, model.OperationKind, bool) {}
func (noop) ObserveOperationFinished(context.Context, model.OperationKind, model.Outcome, model.FailureKind, time.Duration) {
}
