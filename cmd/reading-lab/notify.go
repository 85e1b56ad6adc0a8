package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reading-lab/internal/notify"
	"github.com/pdiddy/reading-lab/internal/secrets"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Deliver a rendered digest over Slack or email",
	Long: `Notify sends a rendered digest to the configured channels. Slack
receives a Block Kit overview (summary, categories, top titles); email
receives the full digest. Channels are independent: a failing channel
is reported but does not stop the others.

The Slack webhook URL comes from --slack-webhook or the
slack-webhook-url secrets file; the SMTP password from --smtp-password
or the smtp-password secrets file.`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().String("digest", "output/weekly_digest.md", "path to the rendered digest")
	notifyCmd.Flags().String("slack-webhook", "", "Slack incoming webhook URL (overrides secrets)")
	notifyCmd.Flags().String("slack-channel", "", "Slack channel override")
	notifyCmd.Flags().String("smtp-host", "", "SMTP server host")
	notifyCmd.Flags().Int("smtp-port", 587, "SMTP server port")
	notifyCmd.Flags().String("smtp-user", "", "SMTP username")
	notifyCmd.Flags().String("smtp-password", "", "SMTP password (overrides secrets)")
	notifyCmd.Flags().String("email-from", "", "digest email sender address")
	notifyCmd.Flags().StringSlice("email-to", nil, "digest email recipients")

	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	digestPath, _ := cmd.Flags().GetString("digest")

	data, err := os.ReadFile(digestPath)
	if err != nil {
		return fmt.Errorf("reading digest: %w", err)
	}
	d := notify.ParseDigest(string(data))

	notifiers, err := buildNotifiers(cmd)
	if err != nil {
		return err
	}
	if len(notifiers) == 0 {
		return fmt.Errorf("no channels configured: set a Slack webhook or SMTP host")
	}

	results := notify.SendAll(context.Background(), notifiers, d, os.Stdout)
	if notify.HasFailures(results) {
		var failed []string
		for _, r := range results {
			if r.Err != nil {
				failed = append(failed, r.Channel)
			}
		}
		return fmt.Errorf("delivery failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}

// buildNotifiers assembles one notifier per configured channel.
func buildNotifiers(cmd *cobra.Command) ([]notify.Notifier, error) {
	var notifiers []notify.Notifier

	webhook, _ := cmd.Flags().GetString("slack-webhook")
	webhook = secrets.Resolve(webhook, loadedSecrets, secrets.SlackWebhookURL)
	if webhook != "" {
		channel, _ := cmd.Flags().GetString("slack-channel")
		notifiers = append(notifiers, &notify.SlackNotifier{
			WebhookURL: webhook,
			Channel:    channel,
			Client:     &http.Client{Timeout: 30 * time.Second},
		})
	}

	smtpHost, _ := cmd.Flags().GetString("smtp-host")
	if smtpHost != "" {
		smtpPort, _ := cmd.Flags().GetInt("smtp-port")
		smtpUser, _ := cmd.Flags().GetString("smtp-user")
		smtpPassword, _ := cmd.Flags().GetString("smtp-password")
		emailFrom, _ := cmd.Flags().GetString("email-from")
		emailTo, _ := cmd.Flags().GetStringSlice("email-to")

		if emailFrom == "" || len(emailTo) == 0 {
			return nil, fmt.Errorf("email channel requires --email-from and --email-to")
		}
		notifiers = append(notifiers, &notify.EmailNotifier{
			Host:     smtpHost,
			Port:     smtpPort,
			User:     smtpUser,
			Password: secrets.Resolve(smtpPassword, loadedSecrets, secrets.SMTPPassword),
			From:     emailFrom,
			To:       emailTo,
		})
	}

	return notifiers, nil
}
