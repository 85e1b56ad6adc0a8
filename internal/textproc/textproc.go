// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textproc provides text normalization and chunking shared by
// the ingest and summarize stages.
package textproc

import "strings"

// Normalize replaces NUL characters with spaces, collapses every run of
// whitespace (including newlines and tabs) to a single space, and trims
// leading and trailing whitespace. It is pure and total.
func Normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\x00", " ")
	return strings.Join(strings.Fields(raw), " ")
}

// Chunk splits text into chunks of at most roughly maxChars characters,
// accumulating whitespace-separated words greedily. When overlap is
// positive, the trailing overlap characters of a closed chunk seed the
// next chunk so context carries across chunk boundaries. Empty input
// yields no chunks. A word longer than maxChars still closes a chunk
// after it is appended, so the function always terminates.
func Chunk(text string, maxChars, overlap int) []string {
	words := strings.Fields(text)

	var chunks []string
	var cur []string
	curLen := 0

	for _, w := range words {
		cur = append(cur, w)
		curLen += len(w) + 1
		if curLen >= maxChars {
			chunk := strings.Join(cur, " ")
			chunks = append(chunks, chunk)
			if overlap > 0 {
				keep := chunk
				if len(chunk) > overlap {
					keep = chunk[len(chunk)-overlap:]
				}
				cur = []string{keep}
				curLen = len(keep)
			} else {
				cur = nil
				curLen = 0
			}
		}
	}

	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}
