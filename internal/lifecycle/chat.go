package lifecycle

import (
	"sync"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/normalize"
)

// ChatState is the state of a chat message.
type ChatState string

const (
	ChatStateIdle       ChatState = "idle"
	ChatStateProcessing ChatState = "processing"
	ChatStateSucceeded  ChatState = "succeeded"
	ChatStateFailed     ChatState = "failed"
)

const msgChatFailed = "Failed to get a response"

// InterpretChat interprets a chat status response. Successful statuses carry the
// message as content and the agent specification, if any, as payload.
func InterpretChat(raw model.RawResponse) model.NormalizedStatus {
	rawStatus := raw["status"]
	statusStr, _ := rawStatus.(string)
	status, ok := normalize.CanonicalStatus(statusStr)
	if !ok {
		return model.FailedStatus(string(ChatStateFailed), model.FailureKindUnrecognizedStatus, normalize.UnexpectedStatusMessage(rawStatus))
	}

	switch status {
	case normalize.StatusPending:
		return model.PendingStatus(string(ChatStateProcessing))

	case normalize.StatusCompleted:
		msg := normalize.Chat(raw)
		return model.NormalizedStatus{
			State:   string(ChatStateSucceeded),
			Outcome: model.OutcomeSucceeded,
			Content: msg.Content,
			Payload: msg.AgentSpecification,
		}

	case normalize.StatusFailed:
		errMsg := errorField(raw)
		if errMsg == "" {
			errMsg = msgChatFailed
		}
		return model.FailedStatus(string(ChatStateFailed), model.FailureKindDomain, errMsg)
	}

	return model.FailedStatus(string(ChatStateFailed), model.FailureKindUnrecognizedStatus, normalize.UnexpectedStatusMessage(rawStatus))
}

// Chat is the lifecycle of a chat message: idle -> processing -> succeeded|failed.
type Chat struct {
	mu     sync.Mutex
	state  ChatState
	handle model.OperationHandle
	last   model.NormalizedStatus
}

// NewChat returns a new idle chat lifecycle.
func NewChat() *Chat {
	return &Chat{state: ChatStateIdle}
}

// State returns the current state.
func (c *Chat) State() ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Handle returns the handle of the message being processed.
func (c *Chat) Handle() model.OperationHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Last returns the last applied status.
func (c *Chat) Last() model.NormalizedStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Begin starts processing a sent message.
func (c *Chat) Begin(h model.OperationHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == ChatStateProcessing {
		return invalidTransition(string(c.state), "begin")
	}
	if err := h.Validate(); err != nil {
		return err
	}

	c.state = ChatStateProcessing
	c.handle = h
	c.last = model.PendingStatus(string(ChatStateProcessing))
	return nil
}

// Apply moves the lifecycle with a status of the message being processed.
func (c *Chat) Apply(s model.NormalizedStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != ChatStateProcessing {
		return invalidTransition(string(c.state), "apply status")
	}

	c.last = s
	switch {
	case s.Outcome == model.OutcomePending:
		c.handle = c.handle.Merge(s.Handle)
		return nil
	case s.Outcome == model.OutcomeSucceeded:
		c.state = ChatStateSucceeded
	case s.FailureKind == model.FailureKindCancelled:
		c.state = ChatStateIdle
	default:
		c.state = ChatStateFailed
	}

	c.handle = model.OperationHandle{}
	return nil
}

// Reset discards the current message.
func (c *Chat) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ChatStateIdle
	c.handle = model.OperationHandle{}
	c.last = model.NormalizedStatus{}
}
