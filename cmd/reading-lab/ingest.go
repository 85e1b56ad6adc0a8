package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reading-lab/internal/ingest"
	"github.com/pdiddy/reading-lab/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [glob]",
	Short: "Extract text from downloaded papers",
	Long: `Ingest extracts plain text from PDF, Markdown, and text files into
the extracts directory. PDFs go through pdftotext; scanned PDFs with
little or no text layer fall back to OCR (pdftoppm + tesseract) unless
--no-ocr is set.

The default glob processes everything under data/raw/.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("out-dir", "data/extracts", "output directory for extracted text")
	ingestCmd.Flags().Bool("no-ocr", false, "disable OCR fallback for scanned PDFs")
	ingestCmd.Flags().Int("scan-threshold", 0, "average chars per page below which a PDF counts as scanned (default 100)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	pattern := "data/raw/*"
	if len(args) > 0 {
		pattern = args[0]
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	noOCR, _ := cmd.Flags().GetBool("no-ocr")
	scanThreshold, _ := cmd.Flags().GetInt("scan-threshold")

	ing := ingest.NewIngester(types.IngestConfig{
		OutputDir:     outDir,
		DisableOCR:    noOCR,
		ScanThreshold: scanThreshold,
	})

	result, err := ing.IngestGlob(pattern, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed text extraction", result.Failed)
	}
	return nil
}
