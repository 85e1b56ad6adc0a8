package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reading-lab/internal/secrets"
	"github.com/pdiddy/reading-lab/internal/summarize"
	"github.com/pdiddy/reading-lab/pkg/types"
)

const defaultModel = "claude-sonnet-4-20250514"

var summarizeCmd = &cobra.Command{
	Use:   "summarize [glob]",
	Short: "Summarize extracted text into structured JSON",
	Long: `Summarize runs each extracted text file through an AI model and
writes one JSON summary per paper. Long texts are chunked, summarized
chunk by chunk, and merged into a single record.

The Anthropic API key comes from --api-key, the anthropic-api-key
secrets file, or the READING_LAB_API_KEY environment variable.`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("out-dir", "summaries/json", "output directory for JSON summaries")
	summarizeCmd.Flags().String("model", defaultModel, "AI model identifier")
	summarizeCmd.Flags().String("api-key", "", "Anthropic API key (overrides secrets)")
	summarizeCmd.Flags().Int("max-retries", 0, "retries per API call (default 3)")
	summarizeCmd.Flags().Int("chunk-chars", 0, "max characters per chunk (default 6000)")
	summarizeCmd.Flags().Int("chunk-overlap", 0, "character overlap between chunks (default 400)")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	pattern := "data/extracts/*.txt"
	if len(args) > 0 {
		pattern = args[0]
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	chunkChars, _ := cmd.Flags().GetInt("chunk-chars")
	chunkOverlap, _ := cmd.Flags().GetInt("chunk-overlap")

	apiKey = secrets.Resolve(apiKey, loadedSecrets, secrets.AnthropicAPIKey)
	if apiKey == "" {
		apiKey = os.Getenv("READING_LAB_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: use --api-key, the anthropic-api-key secrets file, or READING_LAB_API_KEY")
	}

	cfg := types.SummarizeConfig{
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     apiKey,
			MaxRetries: maxRetries,
		},
		OutputDir:     outDir,
		MaxChunkChars: chunkChars,
		ChunkOverlap:  chunkOverlap,
	}

	backend := &summarize.ClaudeBackend{
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 120 * time.Second},
	}

	s := summarize.New(backend, cfg)
	result, err := s.SummarizeGlob(context.Background(), pattern, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed summarization", result.Failed)
	}
	return nil
}
