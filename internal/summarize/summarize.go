// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns extracted paper text into structured JSON
// summaries through a map/reduce chain of AI API calls: each chunk is
// summarized independently, then the partial summaries are merged into
// one final record.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/reading-lab/internal/textproc"
	"github.com/pdiddy/reading-lab/pkg/types"
)

const (
	defaultMaxChunkChars = 6000
	defaultChunkOverlap  = 400
	defaultMaxRetries    = 3
)

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// Complete sends one prompt and returns the raw model output.
type AIBackend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Summarizer drives the map/reduce summarization chain.
type Summarizer struct {
	backend AIBackend
	cfg     types.SummarizeConfig
}

// New creates a Summarizer using backend and cfg.
func New(backend AIBackend, cfg types.SummarizeConfig) *Summarizer {
	return &Summarizer{backend: backend, cfg: cfg}
}

// BatchResult holds the outcome of a batch summarization run.
type BatchResult struct {
	Summarized int
	Failed     int
}

// Total returns the number of texts processed.
func (r BatchResult) Total() int {
	return r.Summarized + r.Failed
}

// HasFailures reports whether any texts failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// SummarizeGlob summarizes every text file matching pattern into the
// output directory, continuing after individual failures. Failed texts
// get a <stem>.error.log next to where their summary would have gone.
func (s *Summarizer) SummarizeGlob(ctx context.Context, pattern string, w io.Writer) (BatchResult, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return BatchResult{}, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		fmt.Fprintf(w, "warning: no files found matching pattern: %s\n", pattern)
		return BatchResult{}, nil
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating output directory: %w", err)
	}

	var result BatchResult
	for i, path := range matches {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		fmt.Fprintf(w, "[%d/%d] summarizing: %s\n", i+1, len(matches), stem)

		out, err := s.SummarizeText(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			errPath := filepath.Join(s.cfg.OutputDir, stem+".error.log")
			os.WriteFile(errPath, []byte(err.Error()), 0o644)
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "ok:      %s\n", filepath.Base(out))
		result.Summarized++
	}

	fmt.Fprintf(w, "\nSummarize summary: %d ok, %d failed (total: %d)\n",
		result.Summarized, result.Failed, result.Total())
	return result, nil
}

// SummarizeText summarizes a single text file and writes <stem>.json to
// the output directory, returning the output path. Chunk-level failures
// degrade to an empty partial; only a failed reduce step fails the file.
func (s *Summarizer) SummarizeText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text file: %s", path)
	}

	chunks := textproc.Chunk(text, s.maxChunkChars(), s.chunkOverlap())
	if len(chunks) == 0 {
		return "", fmt.Errorf("no chunks extracted from %s", path)
	}

	// Map phase: one partial summary per chunk.
	partials := make([]map[string]any, 0, len(chunks))
	for i, chunk := range chunks {
		prompt := fmt.Sprintf("%s\n\nCHUNK %d/%d:\n%s", mapPrompt, i+1, len(chunks), chunk)
		raw, err := s.callWithRetry(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			partials = append(partials, fallbackPartial(i+1))
			continue
		}
		partials = append(partials, ExtractJSON(raw))
	}

	// Reduce phase: merge partials into the final summary.
	merged, err := json.Marshal(map[string]any{"partials": partials})
	if err != nil {
		return "", fmt.Errorf("marshaling partials: %w", err)
	}
	raw, err := s.callWithRetry(ctx, fmt.Sprintf("%s\n\n%s", reducePrompt, merged))
	if err != nil {
		return "", fmt.Errorf("reduce step: %w", err)
	}

	summary, _ := types.NormalizeSummary(ExtractJSON(raw))
	if summary.SourcePath == "" {
		summary.SourcePath = path
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling summary: %w", err)
	}
	outPath := filepath.Join(s.cfg.OutputDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".json")
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	return outPath, nil
}

// backoffBase controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the AI backend with exponential backoff.
func (s *Summarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := s.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := s.backend.Complete(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// fallbackPartial stands in for a chunk whose summarization failed, so
// the reduce step still sees one entry per chunk.
func fallbackPartial(chunk int) map[string]any {
	return map[string]any{
		"title":         fmt.Sprintf("Chunk %d", chunk),
		"tl_dr":         "Failed to summarize",
		"contributions": []any{},
		"methods":       []any{},
		"results":       []any{},
		"limitations":   []any{},
		"tags":          []any{},
		"quotes":        []any{},
		"references":    []any{},
	}
}

func (s *Summarizer) maxChunkChars() int {
	if s.cfg.MaxChunkChars > 0 {
		return s.cfg.MaxChunkChars
	}
	return defaultMaxChunkChars
}

func (s *Summarizer) chunkOverlap() int {
	if s.cfg.ChunkOverlap > 0 {
		return s.cfg.ChunkOverlap
	}
	return defaultChunkOverlap
}
