// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ManuGH/avalon/internal/domain/session/model"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookNotifier POSTs every message as a JSON Event to a chat bridge,
// which owns the platform specifics.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient replaces the traced default client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) { w.client = c }
}

func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout:   defaultWebhookTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *WebhookNotifier) SendDirectMessage(ctx context.Context, player model.PlayerID, content string) error {
	err := w.send(ctx, directEvent(player, content))
	deliveries.WithLabelValues("webhook", KindDirect, result(err)).Inc()
	return err
}

func (w *WebhookNotifier) PostToChannel(ctx context.Context, key model.SessionKey, content string) error {
	err := w.send(ctx, channelEvent(key, content))
	deliveries.WithLabelValues("webhook", KindChannel, result(err)).Inc()
	return err
}

func (w *WebhookNotifier) send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Kind, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", ev.Kind, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: unexpected status %d", ev.Kind, resp.StatusCode)
	}
	return nil
}
