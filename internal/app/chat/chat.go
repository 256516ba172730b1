package chat

import (
	"context"
	"fmt"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/lifecycle"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/task"
)

// ServiceConfig is the configuration for the chat service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "chat.Service"})

	return nil
}

// Service sends chat messages to the assistant and waits for their responses.
type Service struct {
	client  api.Client
	tracker *task.Tracker
	machine *lifecycle.Chat
	logger  log.Logger
}

// NewService creates a new chat service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client:  cfg.Client,
		tracker: cfg.Tracker,
		machine: lifecycle.NewChat(),
		logger:  cfg.Logger,
	}, nil
}

// Request represents the chat message request parameters.
type Request struct {
	Message  string
	ThreadID string
	// OnUpdate receives the status updates while the response is processed.
	OnUpdate func(model.NormalizedStatus)
}

// Send sends a message and waits for the assistant response. Sending a new message
// cancels the wait of the previous one. Response failures are returned as failed
// statuses, errors are only returned when the message could not be sent.
func (s *Service) Send(ctx context.Context, req Request) (model.NormalizedStatus, error) {
	h, err := s.client.SendChatMessage(ctx, api.ChatMessageRequest{Message: req.Message, ThreadID: req.ThreadID})
	if err != nil {
		return model.NormalizedStatus{}, fmt.Errorf("could not send chat message: %w", err)
	}

	s.tracker.Cancel()
	s.machine.Reset()
	if err := s.machine.Begin(h); err != nil {
		return model.NormalizedStatus{}, fmt.Errorf("could not begin chat message: %w", err)
	}
	s.logger.Debugf("Chat message sent with task %q", h.TaskID)

	fetch := func(ctx context.Context) (model.RawResponse, error) { return s.client.ChatStatus(ctx, h) }
	res := s.tracker.Track(ctx, h, lifecycle.Check(fetch, lifecycle.InterpretChat), func(st model.NormalizedStatus) {
		if err := s.machine.Apply(st); err != nil {
			s.logger.Warningf("Could not apply chat status: %s", err)
		}
		if req.OnUpdate != nil {
			req.OnUpdate(st)
		}
	})

	// A newer message may own the lifecycle already.
	if res.Status.FailureKind == model.FailureKindCancelled && s.machine.Handle() == h {
		s.machine.Reset()
	}

	return res.Status, nil
}

// Cancel stops waiting for the current message response.
func (s *Service) Cancel() {
	s.tracker.Cancel()
	s.machine.Reset()
}

// State returns the state of the current message.
func (s *Service) State() lifecycle.ChatState { return s.machine.State() }
