// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PdftotextExtractor extracts the embedded text layer of a PDF by
// shelling out to the poppler pdftotext and pdfinfo tools.
type PdftotextExtractor struct{}

// Extract runs pdftotext on the PDF and returns its text together with
// the page count reported by pdfinfo. A missing page count is not an
// error; it is reported as 0.
func (e *PdftotextExtractor) Extract(path string) (string, int, error) {
	cmd := exec.Command("pdftotext", "-enc", "UTF-8", path, "-")
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("pdftotext %s: %w: %s", path, err, strings.TrimSpace(errBuf.String()))
	}

	pages, err := pageCount(path)
	if err != nil {
		pages = 0
	}
	return out.String(), pages, nil
}

// pageCount parses the "Pages:" line of pdfinfo output.
func pageCount(path string) (int, error) {
	out, err := exec.Command("pdfinfo", path).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo %s: %w", path, err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parsing page count %q: %w", line, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no Pages line in pdfinfo output for %s", path)
}
