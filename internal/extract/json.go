package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON indicates that no parseable JSON object could be found in the text
var ErrNoJSON = errors.New("no JSON object found in text")

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// JSONObject pulls a JSON object out of free-form oracle text.
// Best-effort extraction with progressively looser strategies:
//  1. the whole text is a JSON object
//  2. a fenced code block contains one
//  3. the first balanced {...} span parses
//
// Returns ErrNoJSON when all three fail.
func JSONObject(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}

	if span := firstBalancedObject(raw); span != "" && json.Valid([]byte(span)) {
		return json.RawMessage(span), nil
	}

	return nil, ErrNoJSON
}

// firstBalancedObject returns the first balanced {...} span in text,
// tracking string literals and escapes so braces inside strings don't count.
func firstBalancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return ""
}
