package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reading-lab/internal/aggregate"
	"github.com/pdiddy/reading-lab/internal/digest"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Render the weekly Markdown digest from JSON summaries",
	Long: `Digest merges every JSON summary matching the glob, groups papers by
primary tag, and renders a single Markdown digest with a table of
contents. Malformed summary files are skipped with a warning; an empty
match still produces a digest noting that no summaries are available.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().String("json-glob", "summaries/json/*.json", "glob for JSON summary files")
	digestCmd.Flags().String("out", "output/weekly_digest.md", "output path for the rendered digest")
	digestCmd.Flags().Bool("verbose", false, "print the digest to stdout as well")

	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	jsonGlob, _ := cmd.Flags().GetString("json-glob")
	outPath, _ := cmd.Flags().GetString("out")
	verbose, _ := cmd.Flags().GetBool("verbose")

	records := aggregate.Merge(jsonGlob, os.Stderr)
	markdown := digest.NewRenderer().Render(records)

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing digest: %w", err)
	}

	if verbose {
		fmt.Fprint(os.Stdout, markdown)
	}
	fmt.Fprintf(os.Stderr, "Wrote digest with %d paper(s) to %s\n", len(records), outPath)
	return nil
}
