// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of raw model output. Models do
// not always honor JSON-only instructions, so after a direct parse it
// tries fenced code blocks and finally the first brace-balanced object
// in the text. When nothing parses it returns a minimal failure record
// rather than nil, so downstream normalization always has an object.
func ExtractJSON(text string) map[string]any {
	if obj, ok := tryParse(text); ok {
		return obj
	}

	for _, candidate := range fencedBlocks(text) {
		if obj, ok := tryParse(candidate); ok {
			return obj
		}
	}

	if candidate := firstBalancedObject(text); candidate != "" {
		if obj, ok := tryParse(candidate); ok {
			return obj
		}
	}

	return map[string]any{
		"title": "Failed to parse",
		"tl_dr": "JSON parsing failed",
	}
}

// tryParse attempts to unmarshal s as a JSON object.
func tryParse(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// fencedBlocks returns the contents of ``` blocks in text, with an
// optional language tag stripped.
func fencedBlocks(text string) []string {
	var blocks []string
	parts := strings.Split(text, "```")
	// Odd-indexed parts are inside fences.
	for i := 1; i < len(parts); i += 2 {
		block := parts[i]
		if idx := strings.IndexByte(block, '\n'); idx >= 0 {
			lang := strings.TrimSpace(block[:idx])
			if lang == "json" || lang == "" {
				block = block[idx+1:]
			}
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// firstBalancedObject returns the first {...} span with balanced
// braces, honoring JSON string escaping.
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
				return text[start : i+1]
			}
		}
	}
	return ""
}
