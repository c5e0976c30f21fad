package stage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseStructured interprets a provider response that should contain a JSON
// object. Providers routinely wrap structured output in prose or fenced
// blocks, so a direct parse is attempted first and a fenced block second.
func parseStructured(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)

	var content map[string]any
	if err := json.Unmarshal([]byte(trimmed), &content); err == nil {
		return content, nil
	}

	if inner, ok := fencedBlock(trimmed); ok {
		if err := json.Unmarshal([]byte(inner), &content); err == nil {
			return content, nil
		}
	}

	return nil, fmt.Errorf("response contains no parsable JSON object")
}

// fencedBlock extracts the interior of the first ```json (preferred) or
// bare ``` fence.
func fencedBlock(text string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(text, marker)
		if start < 0 {
			continue
		}

		rest := text[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}

		return strings.TrimSpace(rest[:end]), true
	}
	return "", false
}
