// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics computes completeness, diversity, and
// faithfulness-proxy scores over summary records.
package metrics

import (
	"math"
	"regexp"
	"strings"

	"github.com/pdiddy/reading-lab/pkg/types"
)

// wordPattern tokenizes text for the faithfulness proxy.
var wordPattern = regexp.MustCompile(`\w+`)

// CoverageMetrics aggregates completeness and diversity scores over a
// set of summary records. All scores are in [0, 1] except the averages,
// which are mean list lengths.
type CoverageMetrics struct {
	FieldCompleteness    float64 `json:"field_completeness" yaml:"field_completeness"`
	ContentDiversity     float64 `json:"content_diversity" yaml:"content_diversity"`
	TagCoverage          float64 `json:"tag_coverage" yaml:"tag_coverage"`
	AverageContributions float64 `json:"average_contributions" yaml:"average_contributions"`
	AverageMethods       float64 `json:"average_methods" yaml:"average_methods"`
	AverageResults       float64 `json:"average_results" yaml:"average_results"`
	AverageLimitations   float64 `json:"average_limitations" yaml:"average_limitations"`
}

// QualityMetrics scores a single summary record.
type QualityMetrics struct {
	Faithfulness       float64 `json:"faithfulness" yaml:"faithfulness"`
	Completeness       float64 `json:"completeness" yaml:"completeness"`
	ContributionsCount int     `json:"contributions_count" yaml:"contributions_count"`
	MethodsCount       int     `json:"methods_count" yaml:"methods_count"`
	ResultsCount       int     `json:"results_count" yaml:"results_count"`
	LimitationsCount   int     `json:"limitations_count" yaml:"limitations_count"`
	QuotesCount        int     `json:"quotes_count" yaml:"quotes_count"`
	TagsCount          int     `json:"tags_count" yaml:"tags_count"`
	ContentRichness    float64 `json:"content_richness" yaml:"content_richness"`
}

// requiredFieldCount is the size of the required-field set checked for
// completeness: title, tl_dr, contributions, methods, results, limitations.
const requiredFieldCount = 6

// presentRequiredFields counts how many of the required fields are
// present and non-empty on s.
func presentRequiredFields(s *types.Summary) int {
	present := 0
	if s.Title != "" {
		present++
	}
	if s.TLDR != "" {
		present++
	}
	for _, list := range [][]string{s.Contributions, s.Methods, s.Results, s.Limitations} {
		if len(list) > 0 {
			present++
		}
	}
	return present
}

// Coverage computes aggregate metrics over records. An empty input
// yields all-zero metrics rather than dividing by zero.
func Coverage(records []types.Record) CoverageMetrics {
	var m CoverageMetrics
	if len(records) == 0 {
		return m
	}

	n := float64(len(records))

	present := 0
	for i := range records {
		present += presentRequiredFields(&records[i].Summary)
	}
	m.FieldCompleteness = float64(present) / (requiredFieldCount * n)

	var allTags []string
	for i := range records {
		allTags = append(allTags, records[i].Tags...)
	}
	if len(allTags) > 0 {
		distinct := make(map[string]bool, len(allTags))
		for _, tag := range allTags {
			distinct[tag] = true
		}
		m.TagCoverage = float64(len(distinct)) / float64(len(allTags))
	}

	var totalContributions, totalMethods, totalResults, totalLimitations int
	for i := range records {
		totalContributions += len(records[i].Contributions)
		totalMethods += len(records[i].Methods)
		totalResults += len(records[i].Results)
		totalLimitations += len(records[i].Limitations)
	}
	m.AverageContributions = float64(totalContributions) / n
	m.AverageMethods = float64(totalMethods) / n
	m.AverageResults = float64(totalResults) / n
	m.AverageLimitations = float64(totalLimitations) / n

	m.ContentDiversity = contentDiversity(records)
	return m
}

// contentDiversity computes the normalized Shannon entropy (base 2) of
// the multiset of content strings across all list fields. A flattened
// multiset that is empty or has a single distinct value scores 0.
func contentDiversity(records []types.Record) float64 {
	counts := make(map[string]int)
	total := 0
	for i := range records {
		for _, list := range [][]string{
			records[i].Contributions,
			records[i].Methods,
			records[i].Results,
			records[i].Limitations,
		} {
			for _, item := range list {
				item = strings.ToLower(strings.TrimSpace(item))
				if item == "" {
					continue
				}
				counts[item]++
				total++
			}
		}
	}

	if total == 0 || len(counts) < 2 {
		return 0.0
	}

	entropy := 0.0
	for _, count := range counts {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(float64(len(counts)))
}

// Quality scores one record, optionally against the source text it was
// summarized from. Without source text, faithfulness is 0.
func Quality(rec *types.Record, sourceText string) QualityMetrics {
	m := QualityMetrics{
		ContributionsCount: len(rec.Contributions),
		MethodsCount:       len(rec.Methods),
		ResultsCount:       len(rec.Results),
		LimitationsCount:   len(rec.Limitations),
		QuotesCount:        len(rec.Quotes),
		TagsCount:          len(rec.Tags),
	}

	if sourceText != "" {
		m.Faithfulness = FaithfulnessProxy(rec.TLDR, sourceText)
	}

	m.Completeness = float64(presentRequiredFields(&rec.Summary)) / requiredFieldCount

	totalContent := m.ContributionsCount + m.MethodsCount + m.ResultsCount + m.LimitationsCount
	m.ContentRichness = math.Min(float64(totalContent)/10.0, 1.0)

	return m
}

// FaithfulnessProxy measures word overlap between a summary and its
// source context: the fraction of the summary's distinct lowercase
// word tokens that also occur in the context. It is a stand-in for
// model-based faithfulness evaluation.
func FaithfulnessProxy(summary, context string) float64 {
	if summary == "" || context == "" {
		return 0.0
	}

	summaryWords := tokenSet(summary)
	if len(summaryWords) == 0 {
		return 0.0
	}
	contextWords := tokenSet(context)

	overlap := 0
	for w := range summaryWords {
		if contextWords[w] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(summaryWords))
}

// tokenSet returns the distinct lowercase word tokens in text.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		set[w] = true
	}
	return set
}
