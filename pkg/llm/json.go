package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches a markdown code fence wrapping the whole response.
var (
	fenceOpenPattern  = regexp.MustCompile("^```(?:json)?\\s*\\n?")
	fenceClosePattern = regexp.MustCompile("\\n?```\\s*$")
)

// StripFences removes an optional markdown code fence wrapping from a raw
// model response.
func StripFences(response string) string {
	trimmed := strings.TrimSpace(response)
	trimmed = fenceOpenPattern.ReplaceAllString(trimmed, "")
	trimmed = fenceClosePattern.ReplaceAllString(trimmed, "")
	return strings.TrimSpace(trimmed)
}

// ExtractJSON extracts JSON content from a model response that may contain
// code fences or surrounding prose. It prefers the first balanced object
// or array found in the response.
func ExtractJSON(response string) (string, error) {
	cleaned := StripFences(response)

	if json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if jsonStr, ok := extractBalanced(cleaned, '{', '}'); ok && json.Valid([]byte(jsonStr)) {
			return jsonStr, nil
		}
	}
	if arrStart >= 0 {
		if jsonStr, ok := extractBalanced(cleaned, '[', ']'); ok && json.Valid([]byte(jsonStr)) {
			return jsonStr, nil
		}
	}

	return "", fmt.Errorf("no valid JSON found in response")
}

// extractBalanced finds the first balanced JSON structure starting with
// openChar, counting bracket depth and skipping string contents.
func extractBalanced(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseJSONResponse extracts JSON from a raw response and unmarshals it
// into the target type.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON: %w", err)
	}

	return result, nil
}

// jsonOnlyInstruction is appended to structured-generation prompts.
const jsonOnlyInstruction = "\n\nRespond with ONLY valid JSON, no markdown fences or extra text."

// GenerateJSON issues one structured-generation request and parses the
// response into T. A response that cannot be parsed is a fatal error for
// the call; there is no automatic retry.
func GenerateJSON[T any](ctx context.Context, client TextClient, prompt string) (T, error) {
	var result T

	response, err := client.Complete(ctx, prompt+jsonOnlyInstruction)
	if err != nil {
		return result, err
	}

	return ParseJSONResponse[T](response)
}
