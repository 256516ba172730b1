package shopaction

import (
	"context"
	"fmt"
	"time"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/lifecycle"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/task"
)

// ServiceConfig is the configuration for the shop action service.
type ServiceConfig struct {
	Client  api.Client
	Tracker *task.Tracker
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("client is required")
	}

	if c.Tracker == nil {
		return fmt.Errorf("tracker is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "shopaction.Service"})

	return nil
}

// Service executes shop actions and waits for them.
type Service struct {
	client  api.Client
	tracker *task.Tracker
	machine *lifecycle.ShopAction
	logger  log.Logger
}

// NewService creates a new shop action service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client:  cfg.Client,
		tracker: cfg.Tracker,
		machine: lifecycle.NewShopAction(),
		logger:  cfg.Logger,
	}, nil
}

// Request represents the shop action execution parameters.
type Request struct {
	Action   string
	OnUpdate func(model.NormalizedStatus)
}

// Execute starts a shop action and waits until it finishes.
func (s *Service) Execute(ctx context.Context, req Request) (model.NormalizedStatus, error) {
	if req.Action == "" {
		return model.NormalizedStatus{}, fmt.Errorf("action is required: %w", model.ErrNotValid)
	}

	startedAt := time.Now().UTC()
	raw, err := s.client.ExecuteShopAction(ctx, req.Action)
	if err != nil {
		return model.NormalizedStatus{}, fmt.Errorf("could not execute shop action: %w", err)
	}

	s.tracker.Cancel()
	s.machine.Reset()

	st := lifecycle.InterpretShopAction(raw)
	h := st.Handle

	if st.IsTerminal() {
		if !h.IsZero() {
			s.apply(h, st)
		}
		if req.OnUpdate != nil {
			req.OnUpdate(st)
		}
		return s.tracker.Finish(ctx, h, st, startedAt).Status, nil
	}

	if err := s.machine.Begin(h); err != nil {
		return model.NormalizedStatus{}, fmt.Errorf("missing action id in pending response: %w", err)
	}
	if err := s.machine.Apply(st); err != nil {
		s.logger.Warningf("Could not apply shop action status: %s", err)
	}
	if req.OnUpdate != nil {
		req.OnUpdate(st)
	}
	s.logger.Debugf("Shop action %q started with task %q", h.SecondaryID, h.TaskID)

	fetch := func(ctx context.Context) (model.RawResponse, error) { return s.client.ShopActionStatus(ctx, h) }
	res := s.tracker.Track(ctx, h, lifecycle.Check(fetch, lifecycle.InterpretShopAction), func(st model.NormalizedStatus) {
		if err := s.machine.Apply(st); err != nil {
			s.logger.Warningf("Could not apply shop action status: %s", err)
		}
		if req.OnUpdate != nil {
			req.OnUpdate(st)
		}
	})

	if res.Status.FailureKind == model.FailureKindCancelled && s.machine.Handle().SecondaryID == h.SecondaryID {
		s.machine.Reset()
	}

	return res.Status, nil
}

// Cancel stops waiting for the current action.
func (s *Service) Cancel() {
	s.tracker.Cancel()
	s.machine.Reset()
}

// State returns the state of the current action.
func (s *Service) State() lifecycle.ShopActionState { return s.machine.State() }

// apply applies a finished start response to the lifecycle.
func (s *Service) apply(h model.OperationHandle, st model.NormalizedStatus) {
	if err := s.machine.Begin(h); err != nil {
		s.logger.Warningf("Could not begin shop action: %s", err)
		return
	}
	if err := s.machine.Apply(st); err != nil {
		s.logger.Warningf("Could not apply shop action status: %s", err)
	}
}
