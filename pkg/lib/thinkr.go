package lib

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/autopilot"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/chat"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/history"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/shopaction"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/conventions"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/credentials"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage/sqlite"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/task"
)

// Config configures the SDK client.
//
// Only APIURL is required. An otherwise empty Config{} uses ~/.thinkr/thinkr.db
// for the journal and the default polling policies.
type Config struct {
	// APIURL is the backend API base URL, e.g. https://example.com/api.
	APIURL string

	// Token is the backend API token.
	Token string

	// TokenFile is a file with the backend API token, read on every request so
	// rotated tokens are picked up. Used when Token is empty.
	TokenFile string

	// TokenProvider returns the backend API token, false if there is none. When set,
	// Token and TokenFile are ignored.
	TokenProvider func() (string, bool)

	// HTTPClient is the client used for the backend requests.
	// Default: a client with a 30s timeout.
	HTTPClient *http.Client

	// DataDir is the base directory for thinkr data.
	// Default: ~/.thinkr.
	DataDir string

	// DBPath is the SQLite journal database path.
	// Default: <DataDir>/thinkr.db.
	DBPath string

	// NoJournal disables the journal of finished operations.
	NoJournal bool

	// Policies override the polling policies per operation kind.
	Policies map[OperationKind]BackoffPolicy

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

func (c Config) credentials() credentials.Provider {
	if c.TokenProvider != nil {
		return credentials.ProviderFunc(c.TokenProvider)
	}
	return credentials.Chain{
		credentials.Static(c.Token),
		credentials.File(c.TokenFile),
	}
}

// Client is the main SDK entry point for running backend operations programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	chat       *chat.Service
	autopilot  *autopilot.Service
	shopAction *shopaction.Service
	journal    storage.JournalRepository
	logger     log.Logger
	closeFn    func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the journal database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{APIURL: "https://example.com/api"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, mapError(fmt.Errorf("invalid config: %w: %w", err, model.ErrNotValid))
	}

	apiClient, err := api.NewHTTPClient(api.HTTPClientConfig{
		BaseURL:     cfg.APIURL,
		HTTPClient:  cfg.HTTPClient,
		Credentials: cfg.credentials(),
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create api client: %w: %w", err, model.ErrNotValid))
	}

	c := &Client{
		logger:  cfg.Logger,
		closeFn: func() error { return nil },
	}

	if !cfg.NoJournal {
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: cfg.DBPath,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create journal repository: %w", err)
		}
		c.journal = repo
		c.closeFn = repo.Close
	}

	policies := model.ClientConfig{Policies: toInternalPolicies(cfg.Policies)}
	newTracker := func(kind model.OperationKind) (*task.Tracker, error) {
		return task.NewTracker(task.TrackerConfig{
			Kind:    kind,
			Policy:  policies.Policy(kind),
			Journal: c.journal,
			Logger:  cfg.Logger,
		})
	}

	chatTracker, err := newTracker(model.OperationKindChat)
	if err != nil {
		_ = c.Close()
		return nil, mapError(err)
	}
	c.chat, err = chat.NewService(chat.ServiceConfig{Client: apiClient, Tracker: chatTracker, Logger: cfg.Logger})
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	autopilotTracker, err := newTracker(model.OperationKindAutopilot)
	if err != nil {
		_ = c.Close()
		return nil, mapError(err)
	}
	c.autopilot, err = autopilot.NewService(autopilot.ServiceConfig{Client: apiClient, Tracker: autopilotTracker, Logger: cfg.Logger})
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	shopActionTracker, err := newTracker(model.OperationKindShopAction)
	if err != nil {
		_ = c.Close()
		return nil, mapError(err)
	}
	c.shopAction, err = shopaction.NewService(shopaction.ServiceConfig{Client: apiClient, Tracker: shopActionTracker, Logger: cfg.Logger})
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// Close cancels the running operations and releases the resources held by the
// client. After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.chat != nil {
		c.chat.Cancel()
	}
	if c.autopilot != nil {
		c.autopilot.Cancel()
	}
	if c.shopAction != nil {
		c.shopAction.Cancel()
	}
	return c.closeFn()
}

// Chat sends a message to the assistant and waits for the response. The response
// content is in [Status].Content and the agent specification, if any, in
// [Status].Payload.
//
// Sending a message cancels the wait of the previous one.
func (c *Client) Chat(ctx context.Context, message string, onUpdate UpdateFunc) (Status, error) {
	return c.ChatInThread(ctx, message, "", onUpdate)
}

// ChatInThread is like [Client.Chat] continuing a conversation thread.
func (c *Client) ChatInThread(ctx context.Context, message, threadID string, onUpdate UpdateFunc) (Status, error) {
	s, err := c.chat.Send(ctx, chat.Request{
		Message:  message,
		ThreadID: threadID,
		OnUpdate: toInternalUpdate(onUpdate),
	})
	if err != nil {
		return Status{}, mapError(err)
	}
	return fromInternalStatus(s), nil
}

// CreateProposal requests an autopilot proposal and waits until it's ready for
// review (State "awaiting_review", proposal in Payload) or it finishes.
func (c *Client) CreateProposal(ctx context.Context, request string, onUpdate UpdateFunc) (Status, error) {
	s, err := c.autopilot.Create(ctx, autopilot.CreateRequest{
		Request:  request,
		OnUpdate: toInternalUpdate(onUpdate),
	})
	if err != nil {
		return Status{}, mapError(err)
	}
	return fromInternalStatus(s), nil
}

// SendProposalFeedback approves, refines or rejects the proposal identified by h.
// Approving waits for the result and refining for the next proposal. A rejected
// proposal is discarded and returns a "rejected" state.
func (c *Client) SendProposalFeedback(ctx context.Context, h Handle, action FeedbackAction, feedback string, onUpdate UpdateFunc) (Status, error) {
	s, err := c.autopilot.Feedback(ctx, autopilot.FeedbackRequest{
		Handle:   toInternalHandle(h),
		Action:   toInternalFeedbackAction(action),
		Feedback: feedback,
		OnUpdate: toInternalUpdate(onUpdate),
	})
	if err != nil {
		return Status{}, mapError(err)
	}
	return fromInternalStatus(s), nil
}

// ProposalStatus waits until an existing proposal is ready for review or finishes.
func (c *Client) ProposalStatus(ctx context.Context, h Handle, onUpdate UpdateFunc) (Status, error) {
	s, err := c.autopilot.Status(ctx, autopilot.StatusRequest{
		Handle:   toInternalHandle(h),
		OnUpdate: toInternalUpdate(onUpdate),
	})
	if err != nil {
		return Status{}, mapError(err)
	}
	return fromInternalStatus(s), nil
}

// ExecuteShopAction executes a shop action and waits until it finishes.
//
// A completed action whose response also has an error succeeds, with the error in
// [Status].Advisory.
func (c *Client) ExecuteShopAction(ctx context.Context, action string, onUpdate UpdateFunc) (Status, error) {
	s, err := c.shopAction.Execute(ctx, shopaction.Request{
		Action:   action,
		OnUpdate: toInternalUpdate(onUpdate),
	})
	if err != nil {
		return Status{}, mapError(err)
	}
	return fromInternalStatus(s), nil
}

// History returns the finished operations, newest first.
//
// Returns [ErrNotValid] if the journal is disabled.
func (c *Client) History(ctx context.Context, opts *HistoryOpts) ([]JournalEntry, error) {
	svc, err := c.history()
	if err != nil {
		return nil, err
	}

	req := history.Request{}
	if opts != nil {
		req.Kind = model.OperationKind(opts.Kind)
		req.Limit = opts.Limit
	}

	entries, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return fromInternalJournal(entries), nil
}

// GetHistoryEntry returns a finished operation by its journal ID.
//
// Returns [ErrNotFound] if the entry does not exist.
func (c *Client) GetHistoryEntry(ctx context.Context, id string) (*JournalEntry, error) {
	svc, err := c.history()
	if err != nil {
		return nil, err
	}

	entries, err := svc.Run(ctx, history.Request{ID: id})
	if err != nil {
		return nil, mapError(err)
	}

	e := fromInternalJournalEntry(entries[0])
	return &e, nil
}

func (c *Client) history() (*history.Service, error) {
	if c.journal == nil {
		return nil, mapError(fmt.Errorf("journal is disabled: %w", model.ErrNotValid))
	}

	svc, err := history.NewService(history.ServiceConfig{
		Repository: c.journal,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}
	return svc, nil
}
