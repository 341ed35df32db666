// internal/generation/normalize/parse.go
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse is the parse-and-validate step between a raw upstream body and the
// normalizer. Models routinely wrap their JSON in markdown code fences or
// surround it with prose, so the first balanced object is extracted before
// unmarshalling. A nil map is never returned alongside a nil error.
func Parse(body string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, fmt.Errorf("empty response body")
	}

	trimmed = stripCodeFence(trimmed)

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return raw, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
