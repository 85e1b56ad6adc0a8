// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists merged summary records in a SQLite database
// with a full-text search index, so past digests stay searchable after
// the flat JSON files rotate away.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/reading-lab/internal/aggregate"
	"github.com/pdiddy/reading-lab/pkg/types"
)

const dbFile = "summaries.db"

// Store manages the summary index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the summary index at indexDir/summaries.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, indexDir: cfg.IndexDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			filename TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			venue TEXT,
			year INTEGER,
			tl_dr TEXT,
			tags TEXT,
			primary_tag TEXT,
			content TEXT,
			source_path TEXT,
			processed_at TEXT,
			file_mod_time TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_primary_tag ON summaries(primary_tag)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_year ON summaries(year)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS summaries_fts USING fts5(
			filename UNINDEXED, title, tl_dr, content
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BuildSummary holds counts from an index build run.
type BuildSummary struct {
	Indexed int
	Updated int
	Skipped int
}

// Total returns the number of records processed.
func (b BuildSummary) Total() int {
	return b.Indexed + b.Updated + b.Skipped
}

// Build loads every summary file matching pattern and upserts it into
// the index. Unchanged files (by modification time) are skipped, so
// repeated builds over the same glob are cheap.
func (s *Store) Build(ctx context.Context, pattern string, w io.Writer) (BuildSummary, error) {
	records := aggregate.Merge(pattern, w)

	var summary BuildSummary
	for i := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		rec := &records[i]
		modTime := fileModTime(rec.File)

		var storedModTime string
		err := s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM summaries WHERE filename = ?`, rec.Filename,
		).Scan(&storedModTime)

		if err == nil && storedModTime != "" && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", rec.Filename)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		if err := s.upsert(ctx, rec, modTime); err != nil {
			return summary, fmt.Errorf("indexing %s: %w", rec.Filename, err)
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", rec.Filename)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", rec.Filename)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped)
	return summary, nil
}

// upsert replaces the row and FTS entry for one record inside a transaction.
func (s *Store) upsert(ctx context.Context, rec *types.Record, modTime string) error {
	authors, err := json.Marshal(rec.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors: %w", err)
	}
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	content := contentText(rec)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO summaries
			(filename, title, authors, venue, year, tl_dr, tags, primary_tag,
			 content, source_path, processed_at, file_mod_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Filename, rec.Title, string(authors), rec.Venue, rec.Year, rec.TLDR,
		string(tags), rec.PrimaryTag(), content, rec.SourcePath, rec.ProcessedAt, modTime,
	); err != nil {
		return fmt.Errorf("upserting summary: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM summaries_fts WHERE filename = ?`, rec.Filename); err != nil {
		return fmt.Errorf("clearing FTS entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO summaries_fts (filename, title, tl_dr, content) VALUES (?, ?, ?, ?)`,
		rec.Filename, rec.Title, rec.TLDR, content,
	); err != nil {
		return fmt.Errorf("inserting FTS entry: %w", err)
	}

	return tx.Commit()
}

// contentText flattens the list fields into one searchable string.
func contentText(rec *types.Record) string {
	var parts []string
	for _, list := range [][]string{rec.Contributions, rec.Methods, rec.Results, rec.Limitations} {
		parts = append(parts, list...)
	}
	return strings.Join(parts, "\n")
}

// fileModTime returns the RFC3339Nano modification time of path, or ""
// when the file cannot be observed.
func fileModTime(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format(time.RFC3339Nano)
}

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Tag filters by primary tag.
	Tag string

	// Year filters by publication year.
	Year int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Result is one indexed summary returned by Query.
type Result struct {
	Filename    string   `json:"filename" yaml:"filename"`
	Title       string   `json:"title" yaml:"title"`
	Authors     []string `json:"authors" yaml:"authors"`
	Venue       string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	Year        int      `json:"year,omitempty" yaml:"year,omitempty"`
	TLDR        string   `json:"tl_dr" yaml:"tl_dr"`
	Tags        []string `json:"tags" yaml:"tags"`
	SourcePath  string   `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	ProcessedAt string   `json:"processed_at" yaml:"processed_at"`
}

// Query searches the index with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries are sorted by title.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	if opts.Query != "" {
		qb.WriteString(
			`SELECT s.filename, s.title, s.authors, s.venue, s.year, s.tl_dr,
				s.tags, s.source_path, s.processed_at
			FROM summaries_fts
			JOIN summaries s ON s.filename = summaries_fts.filename
			WHERE summaries_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT s.filename, s.title, s.authors, s.venue, s.year, s.tl_dr,
				s.tags, s.source_path, s.processed_at
			FROM summaries s
			WHERE 1=1`)
	}

	if opts.Tag != "" {
		qb.WriteString(` AND s.primary_tag = ?`)
		args = append(args, opts.Tag)
	}
	if opts.Year != 0 {
		qb.WriteString(` AND s.year = ?`)
		args = append(args, opts.Year)
	}

	if opts.Query != "" {
		qb.WriteString(` ORDER BY summaries_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY s.title COLLATE NOCASE`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r           Result
			authorsJSON string
			tagsJSON    string
		)
		if err := rows.Scan(&r.Filename, &r.Title, &authorsJSON, &r.Venue, &r.Year,
			&r.TLDR, &tagsJSON, &r.SourcePath, &r.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		json.Unmarshal([]byte(authorsJSON), &r.Authors)
		json.Unmarshal([]byte(tagsJSON), &r.Tags)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ExportJSON writes the full index to indexDir/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	results, err := s.Query(ctx, QueryOptions{MaxResults: 100000})
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(s.indexDir, "export.json"), data, 0o644)
}

// ExportYAML writes the full index to indexDir/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	results, err := s.Query(ctx, QueryOptions{MaxResults: 100000})
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(s.indexDir, "export.yaml"), data, 0o644)
}
