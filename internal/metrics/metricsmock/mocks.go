// Package metricsmock has the testify mocks of the metrics package.
package metricsmock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/metrics"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// MockRecorder is a mock of metrics.Recorder.
type MockRecorder struct {
	mock.Mock
}

var _ metrics.Recorder = &MockRecorder{}

func (m *MockRecorder) ObservePollAttempt(ctx context.Context, kind model.OperationKind, retry bool) {
	m.Called(ctx, kind, retry)
}

func (m *MockRecorder) ObserveOperationFinished(ctx context.Context, kind model.OperationKind, outcome model.Outcome, failureKind model.FailureKind, duration time.Duration) {
	m.Called(ctx, kind, outcome, failureKind, duration)
}
