// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers a rendered digest to the configured channels.
// Delivery is best-effort per channel: a failing channel is reported but
// does not stop the others.
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Notifier delivers one digest to a single channel.
type Notifier interface {
	// Name identifies the channel in status output.
	Name() string

	// Send delivers the digest.
	Send(ctx context.Context, d Digest) error
}

// Digest is the parsed form of a rendered Markdown digest.
type Digest struct {
	// Date is the digest date from the title line, e.g. "2026-02-06".
	Date string

	// Summary is the "**Summary**: ..." overview line, without markup.
	Summary string

	// Sections lists the category headings in document order.
	Sections []string

	// Titles lists the paper headings in document order.
	Titles []string

	// Markdown is the full digest text.
	Markdown string
}

// ParseDigest extracts the delivery-relevant pieces from a rendered
// digest. Unrecognized lines are ignored, so the parser tolerates
// hand-edited digests.
func ParseDigest(markdown string) Digest {
	d := Digest{Markdown: markdown}
	for _, line := range strings.Split(markdown, "\n") {
		switch {
		case strings.HasPrefix(line, "# Weekly Digest"):
			if idx := strings.LastIndex(line, " "); idx >= 0 {
				d.Date = strings.TrimSpace(line[idx+1:])
			}
		case strings.HasPrefix(line, "**Summary**:"):
			d.Summary = strings.TrimSpace(strings.TrimPrefix(line, "**Summary**:"))
		case strings.HasPrefix(line, "### "):
			d.Titles = append(d.Titles, paperTitle(line))
		case strings.HasPrefix(line, "## "):
			section := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			// The table of contents heading is navigation, not a category.
			if strings.Contains(section, "Table of Contents") {
				continue
			}
			// Strip the {#anchor} suffix from category headings.
			if idx := strings.Index(section, " {#"); idx >= 0 {
				section = section[:idx]
			}
			d.Sections = append(d.Sections, section)
		}
	}
	return d
}

// paperTitle strips the heading marker and the "*by ...*" author suffix
// from a paper heading line.
func paperTitle(line string) string {
	title := strings.TrimSpace(strings.TrimPrefix(line, "### "))
	if idx := strings.Index(title, " *by "); idx >= 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}

// Result records the outcome of one channel delivery.
type Result struct {
	Channel string
	Err     error
}

// SendAll delivers the digest to every notifier, continuing after
// failures, and reports per-channel outcomes on w.
func SendAll(ctx context.Context, notifiers []Notifier, d Digest, w io.Writer) []Result {
	results := make([]Result, 0, len(notifiers))
	for _, n := range notifiers {
		err := n.Send(ctx, d)
		if err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", n.Name(), err)
		} else {
			fmt.Fprintf(w, "sent:   %s\n", n.Name())
		}
		results = append(results, Result{Channel: n.Name(), Err: err})
	}
	return results
}

// HasFailures reports whether any channel delivery failed.
func HasFailures(results []Result) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}
