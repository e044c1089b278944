// Package notification delivers submission events to configured webhook
// endpoints. Delivery is best-effort: failures are logged and retried a
// bounded number of times, never surfaced to the submitting clinician.
package notification

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/woundcare/woundcare/internal/domain/assessment"
)

// Event is the payload posted to each webhook endpoint.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

const EventAssessmentSubmitted = "assessment.submitted"

// WebhookNotifier implements assessment.Notifier by posting events to every
// configured URL.
type WebhookNotifier struct {
	client *resty.Client
	urls   []string
	log    zerolog.Logger
}

func NewWebhookNotifier(urls []string, log zerolog.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &WebhookNotifier{client: client, urls: urls, log: log}
}

var _ assessment.Notifier = (*WebhookNotifier)(nil)

// AssessmentSubmitted posts the submitted record to every endpoint. Endpoints
// are independent: one failing does not stop delivery to the others.
func (n *WebhookNotifier) AssessmentSubmitted(ctx context.Context, a *assessment.Assessment) {
	n.deliver(ctx, Event{
		Type:       EventAssessmentSubmitted,
		OccurredAt: time.Now(),
		Data:       a,
	})
}

func (n *WebhookNotifier) deliver(ctx context.Context, ev Event) {
	for _, url := range n.urls {
		resp, err := n.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(ev).
			Post(url)
		if err != nil {
			n.log.Warn().Err(err).Str("url", url).Str("event", ev.Type).
				Msg("webhook delivery failed")
			continue
		}
		if resp.IsError() {
			n.log.Warn().Int("status", resp.StatusCode()).Str("url", url).
				Str("event", ev.Type).Msg("webhook endpoint rejected event")
			continue
		}
		n.log.Debug().Str("url", url).Str("event", ev.Type).Msg("webhook delivered")
	}
}
