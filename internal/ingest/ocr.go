// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// OCRExtractor recognizes text in scanned PDFs by rasterizing pages
// with pdftoppm and running tesseract on each page image.
type OCRExtractor struct {
	// DPI is the rasterization resolution (default 300).
	DPI int

	// Lang is the tesseract language code (default "eng").
	Lang string
}

// Available reports whether the tesseract binary can be found.
func (e *OCRExtractor) Available() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// Extract rasterizes the PDF into a temporary directory and OCRs each
// page, returning the concatenated text and the number of pages.
func (e *OCRExtractor) Extract(path string) (string, int, error) {
	dpi := e.DPI
	if dpi <= 0 {
		dpi = 300
	}
	lang := e.Lang
	if lang == "" {
		lang = "eng"
	}

	tmpDir, err := os.MkdirTemp("", "reading-lab-ocr-*")
	if err != nil {
		return "", 0, fmt.Errorf("creating OCR temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-png", "-r", fmt.Sprint(dpi), path, prefix)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("pdftoppm %s: %w: %s", path, err, strings.TrimSpace(errBuf.String()))
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(images) == 0 {
		return "", 0, fmt.Errorf("no page images produced for %s", path)
	}
	sort.Strings(images)

	var pages []string
	for _, img := range images {
		text, err := e.ocrImage(img, lang)
		if err != nil {
			return "", 0, fmt.Errorf("OCR on %s: %w", filepath.Base(img), err)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), len(images), nil
}

// ocrImage runs tesseract on a single page image, reading the
// recognized text from stdout.
func (e *OCRExtractor) ocrImage(imagePath, lang string) (string, error) {
	cmd := exec.Command("tesseract", imagePath, "-", "-l", lang, "--oem", "3", "--psm", "6")
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(errBuf.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
