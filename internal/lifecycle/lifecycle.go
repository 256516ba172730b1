// Package lifecycle has the status state machines of the long running backend
// operations: chat messages, autopilot proposals and shop actions.
//
// Every machine knows how to interpret the raw status responses of its operation
// into normalized statuses, and how to move its state with them. The poller decides
// when to stop using the normalized status outcome; the machine decides what the
// state of the operation is.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/poller"
)

// FetchFunc fetches one raw status response of an operation.
type FetchFunc func(ctx context.Context) (model.RawResponse, error)

// InterpretFunc interprets a raw status response.
type InterpretFunc func(raw model.RawResponse) model.NormalizedStatus

// Check returns a poller check that fetches and interprets status responses. Task
// id validation failures are returned as errors so the poller retries them.
func Check(fetch FetchFunc, interpret InterpretFunc) poller.CheckFunc {
	return func(ctx context.Context) (model.NormalizedStatus, error) {
		raw, err := fetch(ctx)
		if err != nil {
			return model.NormalizedStatus{}, err
		}

		status := interpret(raw)
		if status.Outcome == model.OutcomeFailed && model.IsTaskIDValidationMessage(status.ErrorMessage) {
			return model.NormalizedStatus{}, fmt.Errorf("%s: %w", status.ErrorMessage, model.ErrTaskIDValidation)
		}

		return status, nil
	}
}

func invalidTransition(from, event string) error {
	return fmt.Errorf("can't %s from %s state: %w", event, from, model.ErrNotValid)
}

func errorField(raw model.RawResponse) string {
	switch e := raw["error"].(type) {
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	if d, ok := raw["detail"].(string); ok {
		return d
	}
	return ""
}
