package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

// Webhook delivers lead notices to a Slack incoming webhook. When no webhook
// URL is configured the message is logged locally instead of sent.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

var _ ports.Notifier = (*Webhook)(nil)

// NewWebhook registers the webhook endpoint.
func NewWebhook(url string, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Send posts the message as a Slack text payload.
func (w *Webhook) Send(ctx context.Context, message string) error {
	if w.url == "" {
		if w.logger != nil {
			w.logger.Info("slack not configured, logging lead locally", "message", preview(message))
		}
		return nil
	}

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack error: %s", resp.Status)
	}

	return nil
}

func preview(message string) string {
	runes := []rune(message)
	if len(runes) > 200 {
		return string(runes[:200])
	}
	return message
}
