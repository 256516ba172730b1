package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/credentials"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/lifecycle"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   map[string]any
}

// newTestClient returns a client backed by a test server that records the request
// and replies with the given status code and body.
func newTestClient(t *testing.T, creds credentials.Provider, statusCode int, respBody string) (*api.HTTPClient, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Auth = r.Header.Get("Authorization")
		rec.Query = map[string]string{}
		for k := range r.URL.Query() {
			rec.Query[k] = r.URL.Query().Get(k)
		}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}

		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)

	c, err := api.NewHTTPClient(api.HTTPClientConfig{
		BaseURL:     srv.URL + "/api/",
		Credentials: creds,
	})
	require.NoError(t, err)

	return c, rec
}

func TestNewHTTPClient(t *testing.T) {
	tests := map[string]struct {
		cfg    api.HTTPClientConfig
		expErr bool
	}{
		"A valid config should create the client.": {
			cfg: api.HTTPClientConfig{BaseURL: "https://example.com/api"},
		},

		"A missing base URL should fail.": {
			cfg:    api.HTTPClientConfig{},
			expErr: true,
		},

		"A base URL without HTTP scheme should fail.": {
			cfg:    api.HTTPClientConfig{BaseURL: "ftp://example.com"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := api.NewHTTPClient(test.cfg)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPClientRequests(t *testing.T) {
	tests := map[string]struct {
		call   func(c *api.HTTPClient) (any, error)
		expReq recordedRequest
		expRes any
	}{
		"Sending a chat message should post it and return the task handle.": {
			call: func(c *api.HTTPClient) (any, error) {
				return c.SendChatMessage(context.TODO(), api.ChatMessageRequest{Message: "hi"})
			},
			expReq: recordedRequest{Method: "POST", Path: "/api/chat/message/", Query: map[string]string{}, Body: map[string]any{"message": "hi"}},
			expRes: model.OperationHandle{TaskID: "t1"},
		},

		"Getting the chat status should query by task id.": {
			call: func(c *api.HTTPClient) (any, error) {
				return c.ChatStatus(context.TODO(), model.OperationHandle{TaskID: "t1"})
			},
			expReq: recordedRequest{Method: "GET", Path: "/api/chat/status/", Query: map[string]string{"task_id": "t1"}},
			expRes: model.RawResponse{"task_id": "t1"},
		},

		"Creating a proposal should post the request.": {
			call: func(c *api.HTTPClient) (any, error) {
				return c.CreateProposal(context.TODO(), api.ProposalRequest{Request: "grow sales"})
			},
			expReq: recordedRequest{Method: "POST", Path: "/api/autopilot/create/", Query: map[string]string{}, Body: map[string]any{"request": "grow sales"}},
			expRes: model.RawResponse{"task_id": "t1"},
		},

		"Sending feedback should post the action and ids.": {
			call: func(c *api.HTTPClient) (any, error) {
				return c.SendProposalFeedback(context.TODO(), api.FeedbackRequest{
					Handle:   model.OperationHandle{SecondaryID: "p1"},
					Action:   api.FeedbackActionRefine,
					Feedback: "cheaper",
				})
			},
			expReq: recordedRequest{Method: "POST", Path: "/api/autopilot/feedback/", Query: map[string]string{}, Body: map[string]any{"proposal_id": "p1", "action": "refine", "feedback": "cheaper"}},
			expRes: model.RawResponse{"task_id": "t1"},
		},

		"Getting the autopilot status should prefer the task id.": {
			call: func(c *api.HTTPClient) (any, error) {
				return c.AutopilotStatus(context.TODO(), model.OperationHandle{TaskID: "t1", SecondaryID: "p1"})
			},
			expReq: recordedRequest{Method: "GET", Path: "/api/autopilot/status/", Query: map[string]string{"task_id": "t1"}},
			expRes: model.RawResponse{"task_id": "t1"},
		},

		"Getting the autopilot status without task id should query by proposal id.": {
			call: func(c *api.HTTPClient) (any, error) {
				return c.AutopilotStatus(context.TODO(), model.OperationHandle{SecondaryID: "p1"})
			},
			expReq: recordedRequest{Method: "GET", Path: "/api/autopilot/status/", Query: map[string]string{"proposal_id": "p1"}},
			expRes: model.RawResponse{"task_id": "t1"},
		},

		"Executing a shop action should query by action.": {
			call: func(c *api.HTTPClient) (any, error) {
				return c.ExecuteShopAction(context.TODO(), "sync-products")
			},
			expReq: recordedRequest{Method: "GET", Path: "/api/execute-shop-action/", Query: map[string]string{"action": "sync-products"}},
			expRes: model.RawResponse{"task_id": "t1"},
		},

		"Getting a shop action status should query by action and task ids.": {
			call: func(c *api.HTTPClient) (any, error) {
				return c.ShopActionStatus(context.TODO(), model.OperationHandle{TaskID: "t1", SecondaryID: "a1"})
			},
			expReq: recordedRequest{Method: "GET", Path: "/api/check-shop-action-status/", Query: map[string]string{"action_id": "a1", "task_id": "t1"}},
			expRes: model.RawResponse{"task_id": "t1"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			c, rec := newTestClient(t, credentials.Static("secret"), http.StatusOK, `{"task_id":"t1"}`)
			gotRes, err := test.call(c)
			require.NoError(err)

			test.expReq.Auth = "Token secret"
			assert.Equal(test.expReq, *rec)
			assert.Equal(test.expRes, gotRes)
		})
	}
}

func TestHTTPClientAuthorization(t *testing.T) {
	t.Run("Without token no authorization header should be sent.", func(t *testing.T) {
		c, rec := newTestClient(t, credentials.None, http.StatusOK, `{"status":"pending"}`)
		_, err := c.ChatStatus(context.TODO(), model.OperationHandle{TaskID: "t1"})
		require.NoError(t, err)
		assert.Empty(t, rec.Auth)
	})
}

func TestHTTPClientResponseClassification(t *testing.T) {
	tests := map[string]struct {
		statusCode int
		body       string
		expRaw     model.RawResponse
		expErr     error
	}{
		"A successful body should be returned raw.": {
			statusCode: http.StatusOK,
			body:       `{"status":"completed","response":"hi"}`,
			expRaw:     model.RawResponse{"status": "completed", "response": "hi"},
		},

		"A successful unparseable body should be a transport error.": {
			statusCode: http.StatusOK,
			body:       `<html>`,
			expErr:     model.ErrTransport,
		},

		"A server error with unparseable body should be a transport error.": {
			statusCode: http.StatusBadGateway,
			body:       `Bad Gateway`,
			expErr:     model.ErrTransport,
		},

		"A server error with a parseable body without error should be a transport error.": {
			statusCode: http.StatusInternalServerError,
			body:       `{"foo":"bar"}`,
			expErr:     model.ErrTransport,
		},

		"A client error with a parseable error should be returned raw as an error status.": {
			statusCode: http.StatusBadRequest,
			body:       `{"error":"Shop not connected"}`,
			expRaw:     model.RawResponse{"status": "error", "error": "Shop not connected"},
		},

		"A client error with a parseable status should keep its status.": {
			statusCode: http.StatusConflict,
			body:       `{"status":"completed","error":"already processed"}`,
			expRaw:     model.RawResponse{"status": "completed", "error": "already processed"},
		},

		"A server error with a parseable failed status should be returned raw.": {
			statusCode: http.StatusInternalServerError,
			body:       `{"status":"failed","message":"shop offline"}`,
			expRaw:     model.RawResponse{"status": "failed", "message": "shop offline"},
		},

		"An invalid task id error should be a validation error.": {
			statusCode: http.StatusBadRequest,
			body:       `{"error":"Invalid task ID"}`,
			expErr:     model.ErrTaskIDValidation,
		},

		"A task id cache miss in a successful body should be a validation error.": {
			statusCode: http.StatusOK,
			body:       `{"status":"error","error":"No task ID found in cache"}`,
			expErr:     model.ErrTaskIDValidation,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			c, _ := newTestClient(t, credentials.None, test.statusCode, test.body)
			gotRaw, err := c.ChatStatus(context.TODO(), model.OperationHandle{TaskID: "t1"})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal(test.expRaw, gotRaw)
			}
		})
	}
}

func TestHTTPClientValidation(t *testing.T) {
	c, err := api.NewHTTPClient(api.HTTPClientConfig{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	tests := map[string]struct {
		call func() error
	}{
		"An empty chat message should fail.": {
			call: func() error {
				_, err := c.SendChatMessage(context.TODO(), api.ChatMessageRequest{Message: " "})
				return err
			},
		},

		"A chat status without task id should fail.": {
			call: func() error {
				_, err := c.ChatStatus(context.TODO(), model.OperationHandle{SecondaryID: "p1"})
				return err
			},
		},

		"Feedback with an unknown action should fail.": {
			call: func() error {
				_, err := c.SendProposalFeedback(context.TODO(), api.FeedbackRequest{Handle: model.OperationHandle{SecondaryID: "p1"}, Action: "maybe"})
				return err
			},
		},

		"A shop action status without ids should fail.": {
			call: func() error {
				_, err := c.ShopActionStatus(context.TODO(), model.OperationHandle{})
				return err
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, test.call(), model.ErrNotValid)
		})
	}
}

func TestHTTPClientSendChatMessageWithoutTaskID(t *testing.T) {
	c, _ := newTestClient(t, credentials.None, http.StatusOK, `{"error":"Rate limited"}`)
	_, err := c.SendChatMessage(context.TODO(), api.ChatMessageRequest{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limited")
}

func TestHTTPClientShopActionStatusFailedOnServerError(t *testing.T) {
	assert := assert.New(t)

	c, _ := newTestClient(t, credentials.None, http.StatusInternalServerError, `{"status":"failed","message":"shop offline"}`)
	raw, err := c.ShopActionStatus(context.TODO(), model.OperationHandle{TaskID: "t1", SecondaryID: "a1"})
	if assert.NoError(err) {
		st := lifecycle.InterpretShopAction(raw)
		assert.True(st.IsTerminal())
		assert.Equal(model.OutcomeFailed, st.Outcome)
		assert.Equal(model.FailureKindDomain, st.FailureKind)
		assert.Equal("shop offline", st.ErrorMessage)
	}
}
