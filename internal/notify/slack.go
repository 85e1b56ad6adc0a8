// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/reading-lab/internal/httputil"
)

// Slack caps section text at 3000 characters. Truncate below that so
// the marker always fits.
const slackTextLimit = 2900

const maxSlackTitles = 10

// SlackNotifier posts a digest overview to a Slack incoming webhook
// using Block Kit.
type SlackNotifier struct {
	WebhookURL string
	Channel    string
	Client     *http.Client
	MaxRetries int
}

// Name implements Notifier.
func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackPayload struct {
	Channel string       `json:"channel,omitempty"`
	Blocks  []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send posts the digest overview. The full digest does not fit a Slack
// message, so the payload carries the summary line, the category list,
// and the first few paper titles.
func (s *SlackNotifier) Send(ctx context.Context, d Digest) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}

	payload := slackPayload{
		Channel: s.Channel,
		Blocks: []slackBlock{
			{
				Type: "header",
				Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("📚 Weekly Digest — %s", d.Date)},
			},
			{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: truncateForSlack(overviewText(d))},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling Slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating Slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, s.MaxRetries)
	if err != nil {
		return fmt.Errorf("posting to Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Slack webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// overviewText builds the mrkdwn body: summary line, categories, and up
// to maxSlackTitles paper titles.
func overviewText(d Digest) string {
	var sb strings.Builder

	if d.Summary != "" {
		sb.WriteString("*")
		sb.WriteString(d.Summary)
		sb.WriteString("*\n")
	}
	if len(d.Sections) > 0 {
		sb.WriteString("Categories: ")
		sb.WriteString(strings.Join(d.Sections, ", "))
		sb.WriteString("\n")
	}

	titles := d.Titles
	extra := 0
	if len(titles) > maxSlackTitles {
		extra = len(titles) - maxSlackTitles
		titles = titles[:maxSlackTitles]
	}
	for _, title := range titles {
		sb.WriteString("• ")
		sb.WriteString(title)
		sb.WriteString("\n")
	}
	if extra > 0 {
		sb.WriteString(fmt.Sprintf("... and %d more\n", extra))
	}

	if sb.Len() == 0 {
		return "No summaries available for this week."
	}
	return strings.TrimRight(sb.String(), "\n")
}

// truncateForSlack cuts text to the Slack section limit, appending a
// truncation marker when anything was dropped.
func truncateForSlack(text string) string {
	if len(text) <= slackTextLimit {
		return text
	}
	return text[:slackTextLimit] + "\n... (truncated)"
}
