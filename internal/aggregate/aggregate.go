// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate discovers JSON summary files by glob pattern and
// merges them into annotated records for rendering and reporting.
package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/reading-lab/pkg/types"
)

// nowFunc supplies the _processed_at timestamp. Tests override it for
// deterministic output.
var nowFunc = time.Now

// Merge loads every JSON summary file matching pattern and returns one
// annotated record per successfully parsed file, in filesystem match
// order. Per-file problems (missing, unreadable, empty, malformed, or
// non-object JSON) are reported as warnings on w and the file is
// skipped; Merge never aborts the batch for them. Zero matches is not
// an error: Merge reports a warning and returns an empty slice.
func Merge(pattern string, w io.Writer) []types.Record {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Fprintf(w, "warning: bad glob pattern %q: %v\n", pattern, err)
		return nil
	}

	if len(matches) == 0 {
		fmt.Fprintf(w, "warning: no files found matching pattern: %s\n", pattern)
		return nil
	}

	fmt.Fprintf(w, "found %d JSON files to process\n", len(matches))

	var records []types.Record
	for _, path := range matches {
		rec, ok := loadOne(path, w)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	fmt.Fprintf(w, "loaded %d valid JSON summaries\n", len(records))
	return records
}

// loadOne reads, validates, and annotates a single summary file.
func loadOne(path string, w io.Writer) (types.Record, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "warning: cannot read %s: %v\n", path, err)
		return types.Record{}, false
	}

	if strings.TrimSpace(string(content)) == "" {
		fmt.Fprintf(w, "warning: empty file: %s\n", path)
		return types.Record{}, false
	}

	var obj map[string]any
	if err := json.Unmarshal(content, &obj); err != nil {
		fmt.Fprintf(w, "warning: invalid JSON in %s: %v\n", path, err)
		return types.Record{}, false
	}
	// json.Unmarshal leaves obj nil for the literal "null".
	if obj == nil {
		fmt.Fprintf(w, "warning: invalid JSON structure in %s\n", path)
		return types.Record{}, false
	}

	summary, warnings := types.NormalizeSummary(obj)
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", path, warning)
	}

	return types.Record{
		Summary:     summary,
		File:        path,
		Filename:    filepath.Base(path),
		ProcessedAt: nowFunc().Format(time.RFC3339),
	}, true
}
