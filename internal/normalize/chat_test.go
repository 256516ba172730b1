package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/normalize"
)

func TestChat(t *testing.T) {
	tests := map[string]struct {
		raw    model.RawResponse
		expMsg normalize.ChatMessage
	}{
		"A plain string response should be the content.": {
			raw:    model.RawResponse{"status": "completed", "response": "Hello there"},
			expMsg: normalize.ChatMessage{Content: "Hello there"},
		},
		"A nested response object should use its message and agent specification.": {
			raw: model.RawResponse{
				"status": "completed",
				"response": map[string]any{
					"message":             "Done",
					"agent_specification": map[string]any{"agent_type": "alert"},
				},
			},
			expMsg: normalize.ChatMessage{
				Content:            "Done",
				AgentSpecification: map[string]any{"agent_type": "alert"},
			},
		},
		"An embedded JSON message with trailing JSON should ignore the trailing data.": {
			raw: model.RawResponse{
				"status": "completed",
				"response": map[string]any{
					"message": `{"message":"hi","agent_specification":{"a":1}}{"noise":true}`,
				},
			},
			expMsg: normalize.ChatMessage{
				Content:            "hi",
				AgentSpecification: map[string]any{"a": float64(1)},
			},
		},
		"An embedded JSON string response should be parsed too.": {
			raw: model.RawResponse{
				"status":   "completed",
				"response": `  {"message":"from string"} extra`,
			},
			expMsg: normalize.ChatMessage{Content: "from string"},
		},
		"An embedded JSON message without agent specification should fall back to the response one.": {
			raw: model.RawResponse{
				"response": map[string]any{
					"message":             `{"message":"hi"}`,
					"agent_specification": map[string]any{"from": "response"},
				},
				"agent_specification": map[string]any{"from": "top"},
			},
			expMsg: normalize.ChatMessage{
				Content:            "hi",
				AgentSpecification: map[string]any{"from": "response"},
			},
		},
		"The top level agent specification should be the last fallback.": {
			raw: model.RawResponse{
				"response":            map[string]any{"message": `{"message":"hi"}`},
				"agent_specification": map[string]any{"from": "top"},
			},
			expMsg: normalize.ChatMessage{
				Content:            "hi",
				AgentSpecification: map[string]any{"from": "top"},
			},
		},
		"Unparseable content should be returned as is without payload.": {
			raw: model.RawResponse{
				"response": map[string]any{"message": `{not valid json`},
			},
			expMsg: normalize.ChatMessage{Content: `{not valid json`},
		},
		"Unparseable content should keep the sibling agent specification.": {
			raw: model.RawResponse{
				"response": map[string]any{
					"message":             `{not valid json`,
					"agent_specification": map[string]any{"a": 1},
				},
			},
			expMsg: normalize.ChatMessage{
				Content:            `{not valid json`,
				AgentSpecification: map[string]any{"a": 1},
			},
		},
		"Embedded JSON without a string message should be treated as plain text.": {
			raw: model.RawResponse{
				"response": map[string]any{"message": `{"message":3}`},
			},
			expMsg: normalize.ChatMessage{Content: `{"message":3}`},
		},
		"A missing response should return empty content.": {
			raw:    model.RawResponse{"status": "completed"},
			expMsg: normalize.ChatMessage{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expMsg, normalize.Chat(test.raw))
		})
	}
}
