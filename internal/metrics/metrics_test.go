package metrics

import (
	"math"
	"testing"

	"github.com/pdiddy/reading-lab/pkg/types"
)

func summaryRecord(s types.Summary) types.Record {
	return types.Record{Summary: s}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- Coverage ---

func TestCoverage_EmptyInputAllZero(t *testing.T) {
	m := Coverage(nil)
	if m != (CoverageMetrics{}) {
		t.Errorf("Coverage(nil) = %+v, want zero value", m)
	}
}

func TestCoverage_FieldCompleteness(t *testing.T) {
	records := []types.Record{
		summaryRecord(types.Summary{
			Title: "Full", TLDR: "tl;dr",
			Contributions: []string{"c"}, Methods: []string{"m"},
			Results: []string{"r"}, Limitations: []string{"l"},
		}),
		summaryRecord(types.Summary{Title: "Half", TLDR: "tl;dr", Methods: []string{"m"}}),
	}

	m := Coverage(records)
	// 6 of 6 plus 3 of 6 present over 12 slots.
	if !almostEqual(m.FieldCompleteness, 9.0/12.0) {
		t.Errorf("FieldCompleteness = %f, want 0.75", m.FieldCompleteness)
	}
}

func TestCoverage_Averages(t *testing.T) {
	records := []types.Record{
		summaryRecord(types.Summary{Contributions: []string{"a", "b"}}),
		summaryRecord(types.Summary{Contributions: []string{"c"}}),
	}

	m := Coverage(records)
	if !almostEqual(m.AverageContributions, 1.5) {
		t.Errorf("AverageContributions = %f, want 1.5", m.AverageContributions)
	}
	if !almostEqual(m.AverageMethods, 0.0) {
		t.Errorf("AverageMethods = %f, want 0", m.AverageMethods)
	}
}

func TestCoverage_TagCoverage(t *testing.T) {
	records := []types.Record{
		summaryRecord(types.Summary{Tags: []string{"AI", "ML"}}),
		summaryRecord(types.Summary{Tags: []string{"AI"}}),
	}

	m := Coverage(records)
	// 2 distinct tags over 3 occurrences.
	if !almostEqual(m.TagCoverage, 2.0/3.0) {
		t.Errorf("TagCoverage = %f, want 2/3", m.TagCoverage)
	}
}

func TestCoverage_ContentDiversity(t *testing.T) {
	uniform := []types.Record{
		summaryRecord(types.Summary{Contributions: []string{"alpha"}}),
		summaryRecord(types.Summary{Contributions: []string{"beta"}}),
	}
	m := Coverage(uniform)
	// Two equally frequent distinct values: maximum entropy.
	if !almostEqual(m.ContentDiversity, 1.0) {
		t.Errorf("ContentDiversity = %f, want 1.0", m.ContentDiversity)
	}

	single := []types.Record{
		summaryRecord(types.Summary{Contributions: []string{"same", "same"}}),
	}
	if got := Coverage(single).ContentDiversity; !almostEqual(got, 0.0) {
		t.Errorf("single distinct value: ContentDiversity = %f, want 0", got)
	}

	empty := []types.Record{summaryRecord(types.Summary{Title: "no lists"})}
	if got := Coverage(empty).ContentDiversity; !almostEqual(got, 0.0) {
		t.Errorf("no content: ContentDiversity = %f, want 0", got)
	}
}

func TestCoverage_DiversityNormalizesCase(t *testing.T) {
	records := []types.Record{
		summaryRecord(types.Summary{Contributions: []string{"Same "}}),
		summaryRecord(types.Summary{Contributions: []string{"same"}}),
	}
	if got := Coverage(records).ContentDiversity; !almostEqual(got, 0.0) {
		t.Errorf("case/space variants should collapse to one value, got %f", got)
	}
}

// --- FaithfulnessProxy ---

func TestFaithfulnessProxy(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		context string
		want    float64
	}{
		{"empty summary", "", "anything", 0.0},
		{"empty context", "anything", "", 0.0},
		{"no word tokens", "!!! ???", "words here", 0.0},
		{"full overlap", "the model works", "we show the model works well", 1.0},
		{"half overlap", "alpha beta gamma delta", "alpha beta other words", 0.5},
		{"case insensitive", "Alpha BETA", "alpha beta", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FaithfulnessProxy(tt.summary, tt.context)
			if !almostEqual(got, tt.want) {
				t.Errorf("FaithfulnessProxy(%q, %q) = %f, want %f", tt.summary, tt.context, got, tt.want)
			}
		})
	}
}

// --- Quality ---

func TestQuality_CountsAndRichness(t *testing.T) {
	rec := summaryRecord(types.Summary{
		Title: "T", TLDR: "the approach improves accuracy",
		Contributions: []string{"a", "b"},
		Methods:       []string{"c"},
		Results:       []string{"d", "e", "f"},
		Limitations:   []string{"g"},
		Quotes:        []types.Quote{{Text: "q"}},
		Tags:          []string{"AI", "ML"},
	})

	m := Quality(&rec, "the approach improves accuracy on benchmarks")

	if m.ContributionsCount != 2 || m.MethodsCount != 1 || m.ResultsCount != 3 || m.LimitationsCount != 1 {
		t.Errorf("counts wrong: %+v", m)
	}
	if m.QuotesCount != 1 || m.TagsCount != 2 {
		t.Errorf("quote/tag counts wrong: %+v", m)
	}
	// 7 content items over the richness divisor of 10.
	if !almostEqual(m.ContentRichness, 0.7) {
		t.Errorf("ContentRichness = %f, want 0.7", m.ContentRichness)
	}
	if !almostEqual(m.Completeness, 1.0) {
		t.Errorf("Completeness = %f, want 1.0", m.Completeness)
	}
	if !almostEqual(m.Faithfulness, 1.0) {
		t.Errorf("Faithfulness = %f, want 1.0", m.Faithfulness)
	}
}

func TestQuality_RichnessCapsAtOne(t *testing.T) {
	many := make([]string, 20)
	for i := range many {
		many[i] = "item"
	}
	rec := summaryRecord(types.Summary{Contributions: many})

	if m := Quality(&rec, ""); !almostEqual(m.ContentRichness, 1.0) {
		t.Errorf("ContentRichness = %f, want capped 1.0", m.ContentRichness)
	}
}

func TestQuality_NoSourceTextZeroFaithfulness(t *testing.T) {
	rec := summaryRecord(types.Summary{TLDR: "words"})
	if m := Quality(&rec, ""); !almostEqual(m.Faithfulness, 0.0) {
		t.Errorf("Faithfulness = %f, want 0", m.Faithfulness)
	}
}
