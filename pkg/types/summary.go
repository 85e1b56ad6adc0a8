// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Defaults applied to required scalar fields during normalization.
const (
	DefaultTitle = "Untitled"
	DefaultTLDR  = "No summary available"

	// GeneralTag is the grouping tag for records with no tags.
	GeneralTag = "General"
)

// Quote is a short verbatim excerpt from a paper, optionally carrying a
// location span (e.g. "p. 4" or "§3.2"). Source JSON may encode a quote
// as either a bare string or a {text, span} object; normalization
// resolves both to this shape.
type Quote struct {
	Text string  `json:"text" yaml:"text"`
	Span *string `json:"span" yaml:"span"`
}

// Summary is the structured description of one paper as produced by the
// summarization stage and consumed by the digest pipeline.
type Summary struct {
	// Title is the paper title. Never empty after normalization.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the publication venue, if known.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Year is the publication year, or 0 if unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// TLDR is the one-paragraph summary. Never empty after normalization.
	TLDR string `json:"tl_dr" yaml:"tl_dr"`

	Contributions []string `json:"contributions" yaml:"contributions"`
	Methods       []string `json:"methods" yaml:"methods"`
	Results       []string `json:"results" yaml:"results"`
	Limitations   []string `json:"limitations" yaml:"limitations"`

	// Tags are topic labels; the first tag determines digest grouping.
	Tags []string `json:"tags" yaml:"tags"`

	Quotes     []Quote  `json:"quotes" yaml:"quotes"`
	References []string `json:"references" yaml:"references"`

	// SourcePath points at the original document, if known.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`
}

// PrimaryTag returns the grouping key for the summary: the first tag,
// or GeneralTag when the summary has no tags.
func (s *Summary) PrimaryTag() string {
	if len(s.Tags) == 0 || s.Tags[0] == "" {
		return GeneralTag
	}
	return s.Tags[0]
}

// Record is a Summary annotated with load-time provenance. The JSON
// field names keep the underscore prefix used by the summary files so
// a Record round-trips as a superset of the summary it was loaded from.
type Record struct {
	Summary

	// File is the resolved path of the JSON file the record came from.
	File string `json:"_file" yaml:"_file"`

	// Filename is the base name of File.
	Filename string `json:"_filename" yaml:"_filename"`

	// ProcessedAt is the load timestamp in ISO-8601 form.
	ProcessedAt string `json:"_processed_at" yaml:"_processed_at"`
}
