package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"depscan/internal/scanner"
)

// SlackNotifier sends scan summaries to Slack via a webhook.
type SlackNotifier struct {
	WebhookURL string
	Channel    string
	Client     *http.Client
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Channel:    channel,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyScan posts the scan summary as a colored attachment.
func (s *SlackNotifier) NotifyScan(ctx context.Context, repo string, result *scanner.Result) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	msg := &slack.WebhookMessage{
		Channel: s.Channel,
		Text:    fmt.Sprintf("Dependency scan finished: %s", repo),
		Attachments: []slack.Attachment{{
			Color: severityColor(result),
			Text:  summaryText(repo, result),
		}},
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, msg); err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}
