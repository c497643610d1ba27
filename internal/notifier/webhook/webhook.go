// Package webhook implements an HTTP webhook notifier
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/tradando/internal/notifier"
	"github.com/spf13/cast"
)

// Webhook posts summaries as JSON to a URL
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// New creates a new Webhook notifier
func New(url string, headers map[string]string) *Webhook {
	return &Webhook{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Init(cfg notifier.Config) error {
	if url, ok := cfg.Params["url"].(string); ok {
		w.url = url
	}
	if raw, ok := cfg.Params["headers"]; ok {
		headers, err := cast.ToStringMapStringE(raw)
		if err != nil {
			return fmt.Errorf("webhook: headers: %w", err)
		}
		w.headers = headers
	}

	if w.url == "" {
		return fmt.Errorf("webhook: url is required")
	}

	if w.client == nil {
		w.client = &http.Client{Timeout: 30 * time.Second}
	}

	return nil
}

type payload struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Count   int    `json:"count"`
	Failed  int    `json:"failed"`
	Results any    `json:"results"`
}

func (w *Webhook) Notify(ctx context.Context, s notifier.Summary) error {
	if len(s.Rows) == 0 {
		return nil
	}
	return w.post(ctx, payload{
		Type:    "backtest_summary",
		Title:   s.Title,
		Count:   len(s.Rows),
		Failed:  s.Failed(),
		Results: s.Rows,
	})
}

func (w *Webhook) post(ctx context.Context, p any) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}
