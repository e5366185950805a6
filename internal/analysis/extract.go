package analysis

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON means no parseable JSON object was found in the model output.
var ErrNoJSON = errors.New("no json object found in analysis text")

// maxScanBytes bounds the brace-matching fallback so a pathological
// response cannot make extraction scan megabytes of text.
const maxScanBytes = 4 << 20

var fenceRe = regexp.MustCompile("(?is)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls a JSON object out of free-form model output. It tries
// three stages in order: parse the whole text, parse the contents of a
// markdown code fence, then scan for the first balanced top-level object.
func ExtractJSON(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed, nil
	}

	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &parsed); err == nil {
			return parsed, nil
		}
	}

	if candidate := scanBalancedObject(trimmed); candidate != "" {
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, nil
		}
	}

	return nil, ErrNoJSON
}

// scanBalancedObject returns the first balanced {...} span in the text,
// tracking string literals and backslash escapes so braces inside strings
// do not affect nesting depth.
func scanBalancedObject(text string) string {
	if len(text) > maxScanBytes {
		text = text[:maxScanBytes]
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	var quote byte
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				inString = false
			}
			continue
		}
		switch ch {
		case '"', '\'':
			inString = true
			quote = ch
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
