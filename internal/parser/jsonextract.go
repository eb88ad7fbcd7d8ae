package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	backtickRe    = regexp.MustCompile("(?s)`([^`]+)`")
)

// ExtractJSON pulls the JSON object out of free-form LLM response text. The
// content may arrive fenced in ```json blocks, wrapped in single backticks,
// or embedded in explanatory prose with trailing commentary; models are asked
// for raw JSON but do not reliably comply. Fenced blocks are preferred, then
// backtick spans, then a brace-depth scan over the whole text. The returned
// bytes are verified to be a decodable JSON object.
func ExtractJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty content")
	}

	for _, m := range fencedBlockRe.FindAllStringSubmatch(content, -1) {
		if candidate := balancedObject(m[1]); candidate != "" {
			if raw, err := decodeObject(candidate); err == nil {
				return raw, nil
			}
		}
	}

	for _, m := range backtickRe.FindAllStringSubmatch(content, -1) {
		if candidate := balancedObject(m[1]); candidate != "" {
			if raw, err := decodeObject(candidate); err == nil {
				return raw, nil
			}
		}
	}

	candidate := balancedObject(content)
	if candidate == "" {
		return nil, fmt.Errorf("no balanced JSON object found in content")
	}
	raw, err := decodeObject(candidate)
	if err != nil {
		return nil, fmt.Errorf("candidate JSON does not parse: %w", err)
	}
	return raw, nil
}

// balancedObject returns the first brace-balanced {...} substring of s,
// walking brace depth rather than taking the naive first '{' / last '}' so
// nested braces in surrounding free text do not break extraction. String
// literals are skipped so braces inside values do not affect the depth.
func balancedObject(s string) string {
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

func decodeObject(candidate string) (json.RawMessage, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, err
	}
	return json.RawMessage(candidate), nil
}
