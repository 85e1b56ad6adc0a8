// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeSummary converts an untyped JSON mapping into a canonical
// Summary, applying every default and coercion rule in one place:
// absent or empty required scalars get their documented defaults,
// fields that are semantically lists are coerced to lists even when
// the source stored a non-list, and quotes given as bare strings
// become Quote values with a nil span. It returns the normalized
// summary together with a warning per field that needed coercion.
// It never fails; unusable values are dropped, not propagated.
func NormalizeSummary(m map[string]any) (Summary, []string) {
	var warnings []string

	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	s := Summary{
		Title:      asString(m["title"]),
		Venue:      asString(m["venue"]),
		TLDR:       asString(m["tl_dr"]),
		SourcePath: asString(m["source_path"]),
	}

	if strings.TrimSpace(s.Title) == "" {
		s.Title = DefaultTitle
	}
	if strings.TrimSpace(s.TLDR) == "" {
		s.TLDR = DefaultTLDR
	}

	s.Year = asInt(m["year"])

	for _, f := range []struct {
		name string
		dst  *[]string
	}{
		{"authors", &s.Authors},
		{"contributions", &s.Contributions},
		{"methods", &s.Methods},
		{"results", &s.Results},
		{"limitations", &s.Limitations},
		{"tags", &s.Tags},
		{"references", &s.References},
	} {
		list, ok := asStringList(m[f.name])
		if !ok {
			warn("field %s: expected a list, using empty", f.name)
		}
		*f.dst = list
	}

	quotes, ok := asQuotes(m["quotes"])
	if !ok {
		warn("field quotes: expected a list, using empty")
	}
	s.Quotes = quotes

	return s, warnings
}

// asString returns v if it is a string, or "" otherwise.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt accepts the numeric shapes encoding/json produces for integers.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}

// asStringList coerces v to a list of strings. A missing value yields an
// empty list with ok=true; a present non-list value yields an empty list
// with ok=false. Non-string elements are dropped.
func asStringList(v any) (list []string, ok bool) {
	if v == nil {
		return []string{}, true
	}
	raw, isList := v.([]any)
	if !isList {
		return []string{}, false
	}
	list = make([]string, 0, len(raw))
	for _, e := range raw {
		if s, isStr := e.(string); isStr {
			list = append(list, s)
		}
	}
	return list, true
}

// asQuotes coerces v to a list of Quotes, accepting both bare strings
// and {text, span} objects. Elements of any other shape are dropped.
func asQuotes(v any) (quotes []Quote, ok bool) {
	if v == nil {
		return []Quote{}, true
	}
	raw, isList := v.([]any)
	if !isList {
		return []Quote{}, false
	}
	quotes = make([]Quote, 0, len(raw))
	for _, e := range raw {
		switch q := e.(type) {
		case string:
			quotes = append(quotes, Quote{Text: q})
		case map[string]any:
			quote := Quote{Text: asString(q["text"])}
			if span := asString(q["span"]); span != "" {
				quote.Span = &span
			}
			quotes = append(quotes, quote)
		}
	}
	return quotes, true
}
