package normalize

import (
	"encoding/json"
	"strings"
)

// FirstJSONObject returns the first balanced `{...}` substring of s, starting at
// its first `{`. It counts brace depth so trailing data and concatenated objects
// (`{...}{...}`) are ignored. Unlike a plain depth counter, braces inside JSON
// string literals (escaped quotes included) don't change the depth, so
// `{"message":"use {name}"}` is extracted whole.
func FirstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// parseLeadingObject parses the first JSON object of s when s (trimmed) starts with one.
func parseLeadingObject(s string) (map[string]any, bool) {
	if !strings.HasPrefix(strings.TrimSpace(s), "{") {
		return nil, false
	}

	raw, ok := FirstJSONObject(s)
	if !ok {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, false
	}

	return obj, true
}
