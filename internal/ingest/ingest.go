// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest extracts and normalizes text from source documents
// (PDF, Markdown, plain text) ahead of summarization. PDF extraction
// delegates to pdftotext, with an OCR fallback for scanned PDFs.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/reading-lab/internal/textproc"
	"github.com/pdiddy/reading-lab/pkg/types"
)

// defaultScanThreshold is the average extracted characters per page
// below which a PDF is treated as scanned.
const defaultScanThreshold = 100

// Extractor produces the text content of a document. Implementations
// wrap external tools (pdftotext, tesseract).
type Extractor interface {
	// Extract reads the document at path and returns its text and page count.
	Extract(path string) (text string, pages int, err error)
}

// Ingester extracts text from documents using a primary extractor and
// an optional OCR fallback for scanned PDFs.
type Ingester struct {
	// Text extracts the embedded text layer of a PDF.
	Text Extractor

	// OCR is used when the text layer looks empty. Nil disables the fallback.
	OCR Extractor

	cfg types.IngestConfig
}

// NewIngester wires the pdftotext and tesseract extractors according
// to cfg.
func NewIngester(cfg types.IngestConfig) *Ingester {
	ing := &Ingester{
		Text: &PdftotextExtractor{},
		cfg:  cfg,
	}
	if !cfg.DisableOCR {
		ing.OCR = &OCRExtractor{}
	}
	return ing
}

// BatchResult holds the outcome of a batch ingest run.
type BatchResult struct {
	Extracted int
	Failed    int
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Failed
}

// HasFailures reports whether any documents failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// metadata describes one extraction, written next to the text output.
type metadata struct {
	SourcePath       string `json:"source_path"`
	ExtractionMethod string `json:"extraction_method"`
	TextLength       int    `json:"text_length"`
	Pages            int    `json:"pages,omitempty"`
	ProcessedAt      string `json:"processed_at"`
}

// IngestGlob extracts every document matching pattern into the output
// directory, continuing after individual failures. Failed documents
// get a <stem>.error.log next to where their text would have gone.
func (ing *Ingester) IngestGlob(pattern string, w io.Writer) (BatchResult, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return BatchResult{}, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		fmt.Fprintf(w, "warning: no files found matching pattern: %s\n", pattern)
		return BatchResult{}, nil
	}

	if err := os.MkdirAll(ing.cfg.OutputDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating output directory: %w", err)
	}

	var result BatchResult
	for _, path := range matches {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := ing.IngestFile(path, w); err != nil {
			errPath := filepath.Join(ing.cfg.OutputDir, stem+".error.log")
			os.WriteFile(errPath, []byte(err.Error()), 0o644)
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}
		result.Extracted++
	}

	fmt.Fprintf(w, "\nIngest summary: %d extracted, %d failed (total: %d)\n",
		result.Extracted, result.Failed, result.Total())
	return result, nil
}

// IngestFile extracts one document and writes <stem>.txt and
// <stem>.meta.json to the output directory.
func (ing *Ingester) IngestFile(path string, w io.Writer) error {
	var (
		raw    string
		pages  int
		method string
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		raw, pages, method, err = ing.extractPDF(path, w)
	case ".md", ".txt":
		var data []byte
		data, err = os.ReadFile(path)
		raw, method = string(data), "text"
	default:
		return fmt.Errorf("unsupported file type: %s", path)
	}
	if err != nil {
		return err
	}

	cleaned := textproc.Normalize(raw)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	txtPath := filepath.Join(ing.cfg.OutputDir, stem+".txt")
	if err := os.WriteFile(txtPath, []byte(cleaned), 0o644); err != nil {
		return fmt.Errorf("writing extract: %w", err)
	}

	meta := metadata{
		SourcePath:       path,
		ExtractionMethod: method,
		TextLength:       len(cleaned),
		Pages:            pages,
		ProcessedAt:      time.Now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	metaPath := filepath.Join(ing.cfg.OutputDir, stem+".meta.json")
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	fmt.Fprintf(w, "extracted: %s (%d chars, %s)\n", stem, len(cleaned), method)
	return nil
}

// extractPDF runs the text-layer extractor and falls back to OCR when
// the result looks like a scanned document.
func (ing *Ingester) extractPDF(path string, w io.Writer) (text string, pages int, method string, err error) {
	text, pages, err = ing.Text.Extract(path)
	if err != nil {
		return "", 0, "", fmt.Errorf("extracting text layer: %w", err)
	}
	method = "text"

	if ing.OCR != nil && looksScanned(text, pages, ing.scanThreshold()) {
		fmt.Fprintf(w, "  sparse text layer, running OCR: %s\n", filepath.Base(path))
		ocrText, ocrPages, ocrErr := ing.OCR.Extract(path)
		if ocrErr != nil {
			// Keep the text-layer result; OCR is best effort.
			fmt.Fprintf(w, "  warning: OCR failed: %v\n", ocrErr)
			return text, pages, method, nil
		}
		if len(ocrText) > len(text) {
			return ocrText, ocrPages, "ocr", nil
		}
	}
	return text, pages, method, nil
}

func (ing *Ingester) scanThreshold() int {
	if ing.cfg.ScanThreshold > 0 {
		return ing.cfg.ScanThreshold
	}
	return defaultScanThreshold
}

// looksScanned reports whether the extracted text is sparse enough to
// suggest a scanned PDF: fewer than threshold characters per page on
// average.
func looksScanned(text string, pages, threshold int) bool {
	if pages <= 0 {
		pages = 1
	}
	return len(strings.TrimSpace(text))/pages < threshold
}
