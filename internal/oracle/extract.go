package oracle

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON locates the JSON object embedded in an oracle reply. The model
// wraps its payload inconsistently, so extraction is attempted in order:
// a fenced code block, the first balanced top-level object span, and finally
// the whole content. A *FormatError is returned when nothing parses; callers
// decide fallback behavior, extraction never substitutes a default.
func ExtractJSON(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &FormatError{Content: content, Reason: "empty content"}
	}

	if m := fencedJSONPattern.FindStringSubmatch(content); m != nil {
		if candidate := []byte(m[1]); json.Valid(candidate) {
			return candidate, nil
		}
	}

	if span := firstObjectSpan(content); span != "" {
		if candidate := []byte(span); json.Valid(candidate) {
			return candidate, nil
		}
	}

	if candidate := []byte(strings.TrimSpace(content)); json.Valid(candidate) {
		return candidate, nil
	}

	return nil, &FormatError{Content: content, Reason: "no JSON object found"}
}

// Decode extracts and unmarshals the reply's JSON payload into v. Decoding
// failures after a successful extraction are also format violations.
func Decode(content string, v any) error {
	raw, err := ExtractJSON(content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &FormatError{Content: content, Reason: err.Error()}
	}
	return nil
}

// firstObjectSpan returns the first balanced {...} span in s, tracking
// string literals so braces inside values do not break the count.
func firstObjectSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
