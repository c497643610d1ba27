package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/newthinker/tradando/internal/backtest"
	"github.com/newthinker/tradando/internal/notifier"
)

func TestTelegram_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Telegram)(nil)
}

func TestTelegram_Init(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
	}{
		{"valid", map[string]any{"bot_token": "test-token", "chat_id": "test-chat"}, false},
		{"missing token", map[string]any{"chat_id": "test-chat"}, true},
		{"missing chat id", map[string]any{"bot_token": "test-token"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := &Telegram{}
			err := tg.Init(notifier.Config{Params: tt.params})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (tg.botToken != "test-token" || tg.chatID != "test-chat" || tg.baseURL != defaultBaseURL) {
				t.Errorf("unexpected state after Init: %+v", tg)
			}
		})
	}
}

func TestFormatSummary(t *testing.T) {
	text := formatSummary(notifier.Summary{
		Rows: []backtest.SummaryRow{
			{Symbol: "AAPL", Strategy: "sma_cross", ReturnPct: 5.39, NTrades: 3},
			{Symbol: "MSFT", Strategy: "rsi", ReturnPct: -1.2, NTrades: 2},
			{Symbol: "BAD", Strategy: "macd", Error: "no data"},
		},
	})

	for _, want := range []string{
		"📊 *Backtest summary*",
		"3 runs, 1 failed",
		"📈 `AAPL` sma_cross +5.39% (3 trades)",
		"📉 `MSFT` rsi -1.20% (2 trades)",
		"❌ `BAD` macd: no data",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestTelegram_Notify(t *testing.T) {
	var path string
	var payload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tg := New("tok", "42")
	tg.baseURL = server.URL

	err := tg.Notify(context.Background(), notifier.Summary{
		Title: "nightly",
		Rows:  []backtest.SummaryRow{{Symbol: "AAPL", Strategy: "rsi", ReturnPct: 1, NTrades: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path != "/bottok/sendMessage" {
		t.Errorf("unexpected path %s", path)
	}
	if payload["chat_id"] != "42" || payload["parse_mode"] != "Markdown" {
		t.Errorf("unexpected payload %v", payload)
	}
	if text, _ := payload["text"].(string); !strings.HasPrefix(text, "📊 *nightly*") {
		t.Errorf("unexpected text %q", text)
	}
}

func TestTelegram_Notify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	tg := New("bad", "42")
	tg.baseURL = server.URL

	err := tg.Notify(context.Background(), notifier.Summary{Rows: []backtest.SummaryRow{{Symbol: "AAPL"}}})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("expected 401 error, got %v", err)
	}
}
