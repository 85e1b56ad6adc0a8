package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reading-lab/internal/crawl"
	"github.com/pdiddy/reading-lab/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "reading-lab/0.1"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [identifiers...]",
	Short: "Download papers from URLs, DOIs, or arXiv IDs",
	Long: `Crawl resolves paper identifiers (arXiv IDs, DOIs, direct PDF URLs)
to PDF files, downloads them into the raw data directory, and records
metadata for each paper. Existing papers are skipped.

Identifiers come from the command line or from a file (one identifier
per line, # comments allowed) via --from-file.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	crawlCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	crawlCmd.Flags().String("data-dir", "data", "base directory for downloaded papers")
	crawlCmd.Flags().String("from-file", "", "read identifiers from a file, one per line")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	fromFile, _ := cmd.Flags().GetString("from-file")

	identifiers := args
	if fromFile != "" {
		fileIDs, err := crawl.ReadIdentifierFile(fromFile)
		if err != nil {
			return err
		}
		identifiers = append(identifiers, fileIDs...)
	}
	if len(identifiers) == 0 {
		return fmt.Errorf("provide one or more paper identifiers (arXiv IDs, DOIs, or URLs) or --from-file")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	dataDir, _ := cmd.Flags().GetString("data-dir")

	cfg := types.CrawlConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		OutputDir:     dataDir,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result := crawl.CrawlBatch(client, identifiers, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed to download", result.Failed)
	}
	return nil
}
