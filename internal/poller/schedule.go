package poller

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// newCadence returns the scheduling cadence of a policy. The nth call to NextBackOff
// returns policy.Delay(n).
func newCadence(policy model.BackoffPolicy) backoff.BackOff {
	// BackOff implementations are stateful, always use a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = policy.InitialDelay
	bo.MaxInterval = policy.MaxDelay
	bo.Multiplier = policy.Multiplier
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0 // The attempt ceiling bounds the poll, not the elapsed time.
	bo.Reset()
	return bo
}

// newRetryBudget returns the transient retry schedule: a fixed delay for a fixed
// number of retries, independent of the cadence.
func newRetryBudget(retries int, delay time.Duration) backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(retries))
}
