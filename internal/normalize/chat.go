package normalize

import "github.com/SailingSF/thinkr-web-app-sub000/internal/model"

const agentSpecificationKey = "agent_specification"

// ChatMessage is the canonical content of a chat status response.
type ChatMessage struct {
	Content            string
	AgentSpecification map[string]any
}

// Chat extracts the canonical chat message of a status response. The response can
// be any of:
//
//   - {status, response: "text", error}
//   - {status, response: {message: "text", agent_specification: {...}}, error}
//   - the previous one where message is a JSON object encoded as a string, optionally
//     followed by trailing data.
//
// It never panics, content that can't be parsed is returned as plain text.
func Chat(raw model.RawResponse) ChatMessage {
	var message any
	var responseObj map[string]any
	switch r := raw["response"].(type) {
	case map[string]any:
		responseObj = r
		message = r["message"]
	default:
		message = r
	}

	// Sibling specs, in lookup order after the parsed message.
	fallbackSpec := firstObject(responseObj[agentSpecificationKey], raw[agentSpecificationKey])

	switch m := message.(type) {
	case string:
		parsed, ok := parseLeadingObject(m)
		if !ok {
			return ChatMessage{Content: m, AgentSpecification: fallbackSpec}
		}
		content, ok := parsed["message"].(string)
		if !ok {
			return ChatMessage{Content: m, AgentSpecification: fallbackSpec}
		}
		return ChatMessage{
			Content:            content,
			AgentSpecification: firstObject(parsed[agentSpecificationKey], fallbackSpec),
		}

	case map[string]any:
		content, _ := m["message"].(string)
		return ChatMessage{
			Content:            content,
			AgentSpecification: firstObject(m[agentSpecificationKey], fallbackSpec),
		}

	default:
		return ChatMessage{AgentSpecification: fallbackSpec}
	}
}

// firstObject returns the first value that is a non nil JSON object.
func firstObject(values ...any) map[string]any {
	for _, v := range values {
		if obj, ok := v.(map[string]any); ok && obj != nil {
			return obj
		}
	}
	return nil
}
