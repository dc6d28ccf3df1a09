package ai

import (
	"bytes"
	"encoding/json"
	"regexp"
)

var (
	fencedBlock = regexp.MustCompile("```(?:json)?\\n?([\\s\\S]*?)\\n?```")
	objectSpan  = regexp.MustCompile(`\{[\s\S]*\}`)
	arraySpan   = regexp.MustCompile(`\[[\s\S]*\]`)
)

// ExtractJSON recovers a JSON value from free model output. It tries a
// fenced code block, then the widest {...} span, then the widest [...]
// span, and returns the first candidate that parses. The shape of the
// value is not checked.
func ExtractJSON(text string) (json.RawMessage, bool) {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		if raw, ok := parseCandidate(m[1]); ok {
			return raw, true
		}
	}
	if m := objectSpan.FindString(text); m != "" {
		if raw, ok := parseCandidate(m); ok {
			return raw, true
		}
	}
	if m := arraySpan.FindString(text); m != "" {
		if raw, ok := parseCandidate(m); ok {
			return raw, true
		}
	}
	return nil, false
}

func parseCandidate(s string) (json.RawMessage, bool) {
	b := bytes.TrimSpace([]byte(s))
	if len(b) == 0 || !json.Valid(b) {
		return nil, false
	}
	return json.RawMessage(b), true
}

// unwrapList returns raw when it is an array, otherwise the array stored
// under key in an object. Models answer both ways.
func unwrapList(raw json.RawMessage, key string) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] == '[' {
		return trimmed, true
	}
	if trimmed[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	inner, ok := obj[key]
	if !ok {
		return nil, false
	}
	inner = bytes.TrimSpace(inner)
	if len(inner) == 0 || inner[0] != '[' {
		return nil, false
	}
	return inner, true
}

// extractList finds a list in model output. A bare array holding a single
// object also matches the object span, so the array span is tried when the
// first candidate carries no list.
func extractList(text, key string) (json.RawMessage, bool) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return nil, false
	}
	if list, ok := unwrapList(raw, key); ok {
		return list, true
	}
	if m := arraySpan.FindString(text); m != "" {
		if candidate, ok := parseCandidate(m); ok {
			return candidate, true
		}
	}
	return nil, false
}
