// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest renders merged summary records into a weekly Markdown
// digest: a table of contents, per-paper sections grouped by primary
// tag, and footer statistics.
package digest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/reading-lab/pkg/types"
)

// Renderer produces Markdown digests. Now supplies the wall-clock time
// for the header date and the footer timestamp; it is the only impure
// input, so tests pin it for byte-identical output.
type Renderer struct {
	Now func() time.Time
}

// NewRenderer returns a Renderer using the system clock.
func NewRenderer() *Renderer {
	return &Renderer{Now: time.Now}
}

// group is one digest section: all records sharing a primary tag.
type group struct {
	tag     string
	records []types.Record
}

// Render produces the full Markdown digest for records. Groups are
// sorted by tag name and records within a group by case-insensitive
// title, so output is deterministic regardless of input order.
func (r *Renderer) Render(records []types.Record) string {
	title := fmt.Sprintf("# Weekly Digest — %s\n", r.Now().Format("2006-01-02"))

	if len(records) == 0 {
		return title + "\n> No summaries available for this week.\n"
	}

	groups := groupByPrimaryTag(records)

	lines := []string{title}

	totalPapers := len(records)
	totalGroups := len(groups)
	lines = append(lines,
		fmt.Sprintf("**Summary**: %d papers across %d categories\n", totalPapers, totalGroups),
		"---\n",
	)

	// Table of contents.
	lines = append(lines, "## 📋 Table of Contents", "")
	for _, g := range groups {
		lines = append(lines, fmt.Sprintf("- [%s](#%s) (%d papers)", g.tag, SanitizeAnchor(g.tag), len(g.records)))
	}
	lines = append(lines, "")

	// Content sections.
	for _, g := range groups {
		lines = append(lines, fmt.Sprintf("## %s {#%s}", g.tag, SanitizeAnchor(g.tag)), "")
		for _, rec := range g.records {
			lines = append(lines, renderPaper(rec)...)
		}
	}

	// Footer.
	lines = append(lines,
		"---",
		fmt.Sprintf("*Generated on %s*", r.Now().Format("2006-01-02 15:04:05")),
		fmt.Sprintf("*Total: %d papers in %d categories*", totalPapers, totalGroups),
	)

	return strings.Join(lines, "\n")
}

// groupByPrimaryTag buckets records by their primary tag and returns
// the groups sorted by tag name, each with its records sorted by
// case-insensitive title.
func groupByPrimaryTag(records []types.Record) []group {
	byTag := make(map[string][]types.Record)
	for _, rec := range records {
		tag := rec.PrimaryTag()
		byTag[tag] = append(byTag[tag], rec)
	}

	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	groups := make([]group, 0, len(tags))
	for _, tag := range tags {
		recs := byTag[tag]
		sort.SliceStable(recs, func(i, j int) bool {
			return strings.ToLower(recs[i].Title) < strings.ToLower(recs[j].Title)
		})
		groups = append(groups, group{tag: tag, records: recs})
	}
	return groups
}

// renderPaper emits the Markdown lines for one record.
func renderPaper(rec types.Record) []string {
	var lines []string

	lines = append(lines, paperHeading(rec), "")

	tldr := rec.TLDR
	if tldr == "" {
		tldr = types.DefaultTLDR
	}
	lines = append(lines, fmt.Sprintf("**TL;DR**: %s", tldr), "")

	if text := FormatListItems(rec.Contributions, 3); text != "" {
		lines = append(lines, fmt.Sprintf("**Contributions**: %s", text))
	}
	if text := FormatListItems(rec.Methods, 3); text != "" {
		lines = append(lines, fmt.Sprintf("**Methods**: %s", text))
	}
	if text := FormatListItems(rec.Results, 3); text != "" {
		lines = append(lines, fmt.Sprintf("**Results**: %s", text))
	}
	if text := FormatListItems(rec.Limitations, 2); text != "" {
		lines = append(lines, fmt.Sprintf("**Limitations**: %s", text))
	}

	if quoteLines := renderQuotes(rec.Quotes); len(quoteLines) > 0 {
		lines = append(lines, "**Key Quotes**:")
		lines = append(lines, quoteLines...)
	}

	if len(rec.Tags) > 0 {
		ticked := make([]string, len(rec.Tags))
		for i, tag := range rec.Tags {
			ticked[i] = "`" + tag + "`"
		}
		lines = append(lines, fmt.Sprintf("**Tags**: %s", strings.Join(ticked, ", ")))
	}

	source := rec.SourcePath
	if source == "" {
		source = rec.File
	}
	if source != "" {
		if strings.HasPrefix(source, "/") {
			source = filepath.Base(source)
		}
		lines = append(lines, "", fmt.Sprintf("**Source**: `%s`", source), "")
	}

	lines = append(lines, "---\n")
	return lines
}

// paperHeading builds the level-3 heading for a record: title, then
// authors (up to 3, "et al." beyond), year, and venue when present.
func paperHeading(rec types.Record) string {
	title := rec.Title
	if title == "" {
		title = types.DefaultTitle
	}

	heading := "### " + title
	if len(rec.Authors) > 0 {
		shown := rec.Authors
		etAl := ""
		if len(shown) > 3 {
			shown = shown[:3]
			etAl = " et al."
		}
		heading += fmt.Sprintf(" *by %s%s*", strings.Join(shown, ", "), etAl)
	}
	if rec.Year != 0 {
		heading += fmt.Sprintf(" (%d)", rec.Year)
	}
	if rec.Venue != "" {
		heading += fmt.Sprintf(" — %s", rec.Venue)
	}
	return heading
}

// renderQuotes emits at most the first two quotes as bullet lines,
// skipping quotes with no text.
func renderQuotes(quotes []types.Quote) []string {
	if len(quotes) > 2 {
		quotes = quotes[:2]
	}
	var lines []string
	for _, q := range quotes {
		if q.Text == "" {
			continue
		}
		if q.Span != nil && *q.Span != "" {
			lines = append(lines, fmt.Sprintf("- \"%s\" (%s)", q.Text, *q.Span))
		} else {
			lines = append(lines, fmt.Sprintf("- \"%s\"", q.Text))
		}
	}
	return lines
}

// FormatListItems joins up to maxItems entries with "; ". When more
// entries exist, a "... and N more" entry is appended before joining.
// An empty list formats to the empty string.
func FormatListItems(items []string, maxItems int) string {
	if len(items) == 0 {
		return ""
	}
	display := items
	if len(items) > maxItems {
		display = append([]string{}, items[:maxItems]...)
		display = append(display, fmt.Sprintf("... and %d more", len(items)-maxItems))
	}
	return strings.Join(display, "; ")
}

var (
	anchorStripPattern    = regexp.MustCompile(`[^\w\s-]`)
	anchorCollapsePattern = regexp.MustCompile(`[\s-]+`)
)

// SanitizeAnchor derives a URL-fragment-safe slug from a tag: lowercase,
// strip everything but word characters, whitespace, and hyphens, then
// collapse whitespace/hyphen runs into single hyphens.
func SanitizeAnchor(text string) string {
	anchor := anchorStripPattern.ReplaceAllString(strings.ToLower(text), "")
	anchor = anchorCollapsePattern.ReplaceAllString(anchor, "-")
	return strings.Trim(anchor, "-")
}
