// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDigest = `# Weekly Digest — 2026-02-06

**Summary**: 3 papers across 2 categories

---

## 📋 Table of Contents

- [AI](#ai) (2 papers)
- [Systems](#systems) (1 papers)

## AI {#ai}

### Attention Is All You Need *by Vaswani, Shazeer, Parmar et al.* (2017)

**TL;DR**: Transformers.

### Deep Residual Learning *by He* (2016)

**TL;DR**: Skip connections.

## Systems {#systems}

### The Raft Consensus Algorithm

**TL;DR**: Understandable consensus.

---

*Generated on 2026-02-06 09:30:00*
*Total: 3 papers in 2 categories*
`

func TestParseDigest(t *testing.T) {
	d := ParseDigest(sampleDigest)

	assert.Equal(t, "2026-02-06", d.Date)
	assert.Equal(t, "3 papers across 2 categories", d.Summary)
	assert.Equal(t, []string{"AI", "Systems"}, d.Sections)
	assert.Equal(t, []string{
		"Attention Is All You Need",
		"Deep Residual Learning",
		"The Raft Consensus Algorithm",
	}, d.Titles)
	assert.Equal(t, sampleDigest, d.Markdown)
}

func TestParseDigest_EmptyInput(t *testing.T) {
	d := ParseDigest("")
	assert.Empty(t, d.Date)
	assert.Empty(t, d.Sections)
	assert.Empty(t, d.Titles)
}

func TestSlackNotifier_PostsBlockKitPayload(t *testing.T) {
	var captured slackPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n := &SlackNotifier{WebhookURL: ts.URL, Channel: "#papers", Client: ts.Client()}
	d := ParseDigest(sampleDigest)
	require.NoError(t, n.Send(context.Background(), d))

	assert.Equal(t, "#papers", captured.Channel)
	require.Len(t, captured.Blocks, 2)

	header := captured.Blocks[0]
	assert.Equal(t, "header", header.Type)
	assert.Contains(t, header.Text.Text, "2026-02-06")

	section := captured.Blocks[1]
	assert.Equal(t, "mrkdwn", section.Text.Type)
	assert.Contains(t, section.Text.Text, "3 papers across 2 categories")
	assert.Contains(t, section.Text.Text, "Categories: AI, Systems")
	assert.Contains(t, section.Text.Text, "• Attention Is All You Need")
}

func TestSlackNotifier_ErrorsOnFailureStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer ts.Close()

	n := &SlackNotifier{WebhookURL: ts.URL, Client: ts.Client()}
	err := n.Send(context.Background(), Digest{Date: "2026-02-06"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSlackNotifier_RequiresWebhookURL(t *testing.T) {
	n := &SlackNotifier{}
	assert.Error(t, n.Send(context.Background(), Digest{}))
}

func TestOverviewText_CapsTitles(t *testing.T) {
	d := Digest{Summary: "20 papers across 1 categories"}
	for i := 0; i < 20; i++ {
		d.Titles = append(d.Titles, fmt.Sprintf("Paper %02d", i))
	}

	text := overviewText(d)
	assert.Equal(t, maxSlackTitles, strings.Count(text, "• "))
	assert.Contains(t, text, "... and 10 more")
}

func TestTruncateForSlack(t *testing.T) {
	short := "fits"
	assert.Equal(t, short, truncateForSlack(short))

	long := strings.Repeat("x", slackTextLimit+500)
	got := truncateForSlack(long)
	assert.True(t, strings.HasSuffix(got, "\n... (truncated)"))
	assert.LessOrEqual(t, len(got), 3000)
}

func TestEmailNotifier_ComposesAndSends(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	orig := sendMail
	sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}
	defer func() { sendMail = orig }()

	n := &EmailNotifier{
		Host: "smtp.example.com",
		User: "digest@example.com",
		From: "digest@example.com",
		To:   []string{"team@example.com"},
	}
	d := ParseDigest(sampleDigest)
	require.NoError(t, n.Send(context.Background(), d))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "digest@example.com", gotFrom)
	assert.Equal(t, []string{"team@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Weekly Digest — 2026-02-06\r\n")
	assert.Contains(t, msg, "To: team@example.com\r\n")
	assert.Contains(t, msg, "Attention Is All You Need")
	// Body must use CRLF line endings.
	assert.NotContains(t, strings.ReplaceAll(msg, "\r\n", ""), "\n")
}

func TestEmailNotifier_RequiresConfiguration(t *testing.T) {
	tests := []struct {
		name string
		n    *EmailNotifier
	}{
		{"missing host", &EmailNotifier{From: "a@b.c", To: []string{"d@e.f"}}},
		{"missing sender", &EmailNotifier{Host: "smtp.example.com", To: []string{"d@e.f"}}},
		{"missing recipients", &EmailNotifier{Host: "smtp.example.com", From: "a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.n.Send(context.Background(), Digest{}))
		})
	}
}

// stubNotifier records calls and fails on demand.
type stubNotifier struct {
	name   string
	err    error
	called bool
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Send(context.Context, Digest) error {
	s.called = true
	return s.err
}

func TestSendAll_ContinuesAfterFailure(t *testing.T) {
	failing := &stubNotifier{name: "slack", err: fmt.Errorf("webhook down")}
	working := &stubNotifier{name: "email"}

	var buf bytes.Buffer
	results := SendAll(context.Background(), []Notifier{failing, working}, Digest{}, &buf)

	require.Len(t, results, 2)
	assert.True(t, failing.called)
	assert.True(t, working.called)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.True(t, HasFailures(results))
	assert.Contains(t, buf.String(), "failed: slack")
	assert.Contains(t, buf.String(), "sent:   email")
}

func TestHasFailures_AllOK(t *testing.T) {
	assert.False(t, HasFailures([]Result{{Channel: "slack"}, {Channel: "email"}}))
	assert.False(t, HasFailures(nil))
}
