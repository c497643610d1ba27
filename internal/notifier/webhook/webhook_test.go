package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/tradando/internal/backtest"
	"github.com/newthinker/tradando/internal/notifier"
)

func TestWebhook_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Webhook)(nil)
}

func TestWebhook_Name(t *testing.T) {
	w := New("http://example.com/hook", nil)
	if w.Name() != "webhook" {
		t.Errorf("expected 'webhook', got %s", w.Name())
	}
}

func TestWebhook_Init_RequiresURL(t *testing.T) {
	w := &Webhook{}
	err := w.Init(notifier.Config{Params: map[string]any{}})
	if err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestWebhook_Init_WithURLAndHeaders(t *testing.T) {
	w := &Webhook{}
	err := w.Init(notifier.Config{
		Params: map[string]any{
			"url":     "http://example.com/hook",
			"headers": map[string]any{"X-Token": "secret"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.url != "http://example.com/hook" {
		t.Errorf("expected url, got %s", w.url)
	}
	if w.headers["X-Token"] != "secret" {
		t.Errorf("expected header to be decoded, got %v", w.headers)
	}
}

func summary() notifier.Summary {
	return notifier.Summary{
		Title: "nightly",
		Rows: []backtest.SummaryRow{
			{Symbol: "AAPL", Strategy: "sma_cross", ReturnPct: 5.39, NTrades: 3},
			{Symbol: "BAD", Strategy: "rsi", Error: "no data"},
		},
	}
}

func TestWebhook_Notify(t *testing.T) {
	var received struct {
		Type    string                `json:"type"`
		Title   string                `json:"title"`
		Count   int                   `json:"count"`
		Failed  int                   `json:"failed"`
		Results []backtest.SummaryRow `json:"results"`
	}
	var token string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("X-Token")
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := New(server.URL, map[string]string{"X-Token": "secret"})
	if err := w.Notify(context.Background(), summary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received.Type != "backtest_summary" || received.Title != "nightly" {
		t.Errorf("unexpected payload header: %+v", received)
	}
	if received.Count != 2 || received.Failed != 1 {
		t.Errorf("expected count 2 failed 1, got %d/%d", received.Count, received.Failed)
	}
	if len(received.Results) != 2 || received.Results[0].ReturnPct != 5.39 {
		t.Errorf("unexpected results: %+v", received.Results)
	}
	if token != "secret" {
		t.Errorf("expected custom header, got %q", token)
	}
}

func TestWebhook_Notify_Empty(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	w := New(server.URL, nil)
	if err := w.Notify(context.Background(), notifier.Summary{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("empty summary should not be posted")
	}
}

func TestWebhook_Notify_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w := New(server.URL, nil)
	if err := w.Notify(context.Background(), summary()); err == nil {
		t.Error("expected error for 500 response")
	}
}
