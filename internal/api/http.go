package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/credentials"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

const (
	pathChatMessage      = "/chat/message/"
	pathChatStatus       = "/chat/status/"
	pathAutopilotCreate  = "/autopilot/create/"
	pathAutopilotFeed    = "/autopilot/feedback/"
	pathAutopilotStatus  = "/autopilot/status/"
	pathExecuteShopAct   = "/execute-shop-action/"
	pathShopActionStatus = "/check-shop-action-status/"

	// DefaultTimeout is the default timeout of a single request.
	DefaultTimeout = 30 * time.Second
)

// HTTPClientConfig is the configuration of the HTTP API client.
type HTTPClientConfig struct {
	// BaseURL is the backend API base URL, e.g. https://example.com/api.
	BaseURL string
	// HTTPClient is the HTTP client used for the requests.
	HTTPClient *http.Client
	// Credentials provides the API token attached to every request.
	Credentials credentials.Provider
	// Logger for logging.
	Logger log.Logger
}

func (c *HTTPClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https")
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.Credentials == nil {
		c.Credentials = credentials.None
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "api.HTTPClient"})
	return nil
}

// HTTPClient implements Client using the backend REST API.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	credentials credentials.Provider
	logger      log.Logger
}

// NewHTTPClient returns a new HTTP API client.
func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &HTTPClient{
		baseURL:     cfg.BaseURL,
		httpClient:  cfg.HTTPClient,
		credentials: cfg.Credentials,
		logger:      cfg.Logger,
	}, nil
}

var _ Client = &HTTPClient{}

type chatMessageJSON struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

type proposalJSON struct {
	Request string `json:"request"`
}

type feedbackJSON struct {
	TaskID     string `json:"task_id,omitempty"`
	ProposalID string `json:"proposal_id,omitempty"`
	Action     string `json:"action"`
	Feedback   string `json:"feedback,omitempty"`
}

func (c *HTTPClient) SendChatMessage(ctx context.Context, req ChatMessageRequest) (model.OperationHandle, error) {
	if strings.TrimSpace(req.Message) == "" {
		return model.OperationHandle{}, fmt.Errorf("message is required: %w", model.ErrNotValid)
	}

	raw, err := c.do(ctx, http.MethodPost, pathChatMessage, nil, chatMessageJSON{Message: req.Message, ThreadID: req.ThreadID})
	if err != nil {
		return model.OperationHandle{}, err
	}

	taskID, _ := raw["task_id"].(string)
	if taskID == "" {
		if msg := responseError(raw); msg != "" {
			return model.OperationHandle{}, fmt.Errorf("could not send chat message: %s", msg)
		}
		return model.OperationHandle{}, fmt.Errorf("missing task id in chat message response: %w", model.ErrNotValid)
	}

	return model.OperationHandle{TaskID: taskID}, nil
}

func (c *HTTPClient) ChatStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error) {
	if h.TaskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}
	return c.do(ctx, http.MethodGet, pathChatStatus, url.Values{"task_id": {h.TaskID}}, nil)
}

func (c *HTTPClient) CreateProposal(ctx context.Context, req ProposalRequest) (model.RawResponse, error) {
	if strings.TrimSpace(req.Request) == "" {
		return nil, fmt.Errorf("request is required: %w", model.ErrNotValid)
	}
	return c.do(ctx, http.MethodPost, pathAutopilotCreate, nil, proposalJSON{Request: req.Request})
}

func (c *HTTPClient) SendProposalFeedback(ctx context.Context, req FeedbackRequest) (model.RawResponse, error) {
	if err := req.Action.Validate(); err != nil {
		return nil, err
	}
	if err := req.Handle.Validate(); err != nil {
		return nil, err
	}

	body := feedbackJSON{
		TaskID:     req.Handle.TaskID,
		ProposalID: req.Handle.SecondaryID,
		Action:     string(req.Action),
		Feedback:   req.Feedback,
	}
	return c.do(ctx, http.MethodPost, pathAutopilotFeed, nil, body)
}

func (c *HTTPClient) AutopilotStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error) {
	q := url.Values{}
	switch {
	case h.TaskID != "":
		q.Set("task_id", h.TaskID)
	case h.SecondaryID != "":
		q.Set("proposal_id", h.SecondaryID)
	default:
		return nil, fmt.Errorf("task id or proposal id is required: %w", model.ErrNotValid)
	}
	return c.do(ctx, http.MethodGet, pathAutopilotStatus, q, nil)
}

func (c *HTTPClient) ExecuteShopAction(ctx context.Context, action string) (model.RawResponse, error) {
	if strings.TrimSpace(action) == "" {
		return nil, fmt.Errorf("action is required: %w", model.ErrNotValid)
	}
	return c.do(ctx, http.MethodGet, pathExecuteShopAct, url.Values{"action": {action}}, nil)
}

func (c *HTTPClient) ShopActionStatus(ctx context.Context, h model.OperationHandle) (model.RawResponse, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	if h.SecondaryID != "" {
		q.Set("action_id", h.SecondaryID)
	}
	if h.TaskID != "" {
		q.Set("task_id", h.TaskID)
	}
	return c.do(ctx, http.MethodGet, pathShopActionStatus, q, nil)
}

// do executes a request and classifies the response:
//   - Unparseable bodies are transport errors.
//   - Task id validation errors are returned as ErrTaskIDValidation.
//   - Parseable bodies are returned raw, non successful ones marked with an error status
//     unless they have their own. Non successful bodies without status nor error are
//     transport errors.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any) (model.RawResponse, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.credentials.Token(); ok {
		req.Header.Set("Authorization", "Token "+token)
	}

	c.logger.Debugf("%s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w: %w", err, model.ErrTransport)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w: %w", err, model.ErrTransport)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	var raw model.RawResponse
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if msg := responseError(raw); model.IsTaskIDValidationMessage(msg) {
		return nil, fmt.Errorf("%s: %w", msg, model.ErrTaskIDValidation)
	}

	if !ok {
		_, hasStatus := raw["status"]
		if responseError(raw) == "" && !hasStatus {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
		}
		if !hasStatus {
			raw["status"] = "error"
		}
		c.logger.Debugf("%s %s failed with HTTP %d: %v", method, path, resp.StatusCode, raw["status"])
	}

	return raw, nil
}

func responseError(raw model.RawResponse) string {
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
