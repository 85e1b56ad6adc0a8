package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reading-lab/internal/index"
	"github.com/pdiddy/reading-lab/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the summary index (build, query, export)",
	Long: `Index maintains a local SQLite archive of JSON summaries with FTS5
full-text search. Use subcommands to build the index from summary
files, query it, or export its contents.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Ingest JSON summaries into the index",
	Long: `Build reads every JSON summary matching the glob and upserts it into
the SQLite index. Files unchanged since the last build are skipped.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	jsonGlob, _ := cmd.Flags().GetString("json-glob")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Build(context.Background(), jsonGlob, os.Stdout)
	return err
}

// --- query subcommand ---

var indexQueryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Search the index with full-text search and filters",
	Long: `Query searches indexed summaries using FTS5 full-text search,
structured filters (tag, year), or a combination of both.`,
	RunE: runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	tag, _ := cmd.Flags().GetString("tag")
	year, _ := cmd.Flags().GetInt("year")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	query := strings.Join(args, " ")
	if query == "" && tag == "" && year == 0 {
		return fmt.Errorf("query or filter required: provide search terms, --tag, or --year")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Query(context.Background(), index.QueryOptions{
		Query:      query,
		Tag:        tag,
		Year:       year,
		MaxResults: limit,
	})
	if err != nil {
		return err
	}

	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []index.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-50s  %-6s  %-20s  %s\n",
		"Rank", "Title", "Year", "Tags", "TL;DR")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		tags := strings.Join(r.Tags, ",")
		if len(tags) > 20 {
			tags = tags[:17] + "..."
		}
		tldr := r.TLDR
		if len(tldr) > 40 {
			tldr = tldr[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-50s  %-6d  %-20s  %s\n",
			i+1, title, r.Year, tags, tldr)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index to YAML or JSON",
	RunE:  runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	indexDir, _ := cmd.Flags().GetString("index-dir")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", indexDir)
	case "json":
		if err := store.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", indexDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*index.Store, error) {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = "index"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return index.NewStore(types.IndexConfig{
		IndexDir:   indexDir,
		MaxResults: maxResults,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "index", "directory holding the SQLite index")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Build flags.
	indexBuildCmd.Flags().String("json-glob", "summaries/json/*.json", "glob for JSON summary files")

	// Query flags.
	indexQueryCmd.Flags().String("tag", "", "filter by primary tag")
	indexQueryCmd.Flags().Int("year", 0, "filter by publication year")
	indexQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	// Wire subcommands.
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
