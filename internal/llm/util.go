// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock extracts the JSON value from an LLM response. It removes
// markdown code fences, conversational preamble before the first JSON object
// or array, and trailing prose after it. Models do all of these even when
// instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := strings.TrimSpace(text[:idx])
			if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	// Locate the first JSON value and cut everything around it
	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")

	start, object := objIdx, true
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start, object = arrIdx, false
	}
	if start == -1 {
		return text
	}

	candidate := text[start:]
	if object {
		if obj := extractJSONObject(candidate); obj != "" {
			return obj
		}
	} else {
		if arr := extractJSONArray(candidate); arr != "" {
			return arr
		}
	}
	return text
}

// extractJSONObject returns the balanced JSON object at the start of s,
// or "" if s does not start with one. String contents and escapes are
// respected so braces inside values do not confuse the scan.
func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// extractJSONArray returns the balanced JSON array at the start of s.
func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, opener, closer byte) string {
	if len(s) == 0 || s[0] != opener {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case opener:
			if !inString {
				depth++
			}
		case closer:
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1]
				}
			}
		}
	}
	return ""
}
