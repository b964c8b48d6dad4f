package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when the output contains no {...} span
var ErrNoJSONObject = errors.New("no JSON object in model output")

// ParseLoose decodes the JSON object embedded in raw model output.
// It strips surrounding whitespace and markdown fences, then slices from
// the first '{' to the last '}' so prose around the payload is ignored.
// The result is an untyped tree; callers coerce it into a fixed shape.
func ParseLoose(raw string) (map[string]any, error) {
	payload := StripFences(raw)

	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w (payload snippet: %s)", ErrNoJSONObject, Snippet(raw))
	}
	payload = payload[start : end+1]

	var tree map[string]any
	if err := json.Unmarshal([]byte(payload), &tree); err != nil {
		return nil, fmt.Errorf("decode model output: %w (payload snippet: %s)", err, Snippet(payload))
	}
	if tree == nil {
		return nil, fmt.Errorf("%w (payload snippet: %s)", ErrNoJSONObject, Snippet(raw))
	}
	return tree, nil
}

// StripFences removes a surrounding ``` or ```json fence
func StripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed, "`")
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	body = strings.TrimRight(strings.TrimSpace(body), "`")
	return strings.TrimSpace(body)
}

// Snippet shortens output for error messages and logs
func Snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
