package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/reading-lab/internal/aggregate"
	"github.com/pdiddy/reading-lab/internal/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Report coverage and quality metrics for JSON summaries",
	Long: `Metrics computes coverage statistics (field completeness, tag
coverage, content diversity) over every JSON summary matching the glob.
With --source, it additionally reports per-summary quality against the
extracted source text, including a faithfulness proxy.`,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().String("json-glob", "summaries/json/*.json", "glob for JSON summary files")
	metricsCmd.Flags().String("source-dir", "", "directory of extracted .txt files for quality metrics")

	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	jsonGlob, _ := cmd.Flags().GetString("json-glob")
	sourceDir, _ := cmd.Flags().GetString("source-dir")

	records := aggregate.Merge(jsonGlob, os.Stderr)

	report := struct {
		Coverage metrics.CoverageMetrics           `yaml:"coverage"`
		Quality  map[string]metrics.QualityMetrics `yaml:"quality,omitempty"`
	}{
		Coverage: metrics.Coverage(records),
	}

	if sourceDir != "" {
		report.Quality = make(map[string]metrics.QualityMetrics, len(records))
		for i := range records {
			rec := &records[i]
			report.Quality[rec.Filename] = metrics.Quality(rec, sourceText(sourceDir, rec.Filename))
		}
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}
	fmt.Fprint(os.Stdout, string(out))
	return nil
}

// sourceText loads the extracted text matching a summary filename, or
// "" when it is missing. Quality degrades gracefully without a source.
func sourceText(sourceDir, summaryFilename string) string {
	stem := strings.TrimSuffix(summaryFilename, ".json")
	data, err := os.ReadFile(filepath.Join(sourceDir, stem+".txt"))
	if err != nil {
		return ""
	}
	return string(data)
}
