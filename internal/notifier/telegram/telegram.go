package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/tradando/internal/notifier"
)

const defaultBaseURL = "https://api.telegram.org"

// Telegram sends summaries through the Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// New creates a new Telegram notifier
func New(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Init(cfg notifier.Config) error {
	if token, ok := cfg.Params["bot_token"].(string); ok {
		t.botToken = token
	}
	if chatID, ok := cfg.Params["chat_id"].(string); ok {
		t.chatID = chatID
	}

	if t.botToken == "" {
		return fmt.Errorf("telegram: bot_token is required")
	}
	if t.chatID == "" {
		return fmt.Errorf("telegram: chat_id is required")
	}
	if t.baseURL == "" {
		t.baseURL = defaultBaseURL
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: 30 * time.Second}
	}

	return nil
}

func (t *Telegram) Notify(ctx context.Context, s notifier.Summary) error {
	if len(s.Rows) == 0 {
		return nil
	}
	return t.sendMessage(ctx, formatSummary(s))
}

func formatSummary(s notifier.Summary) string {
	var sb strings.Builder

	title := s.Title
	if title == "" {
		title = "Backtest summary"
	}
	sb.WriteString(fmt.Sprintf("📊 *%s*\n", title))
	sb.WriteString(fmt.Sprintf("%d runs, %d failed\n\n", len(s.Rows), s.Failed()))

	for _, r := range s.Rows {
		if r.Error != "" {
			sb.WriteString(fmt.Sprintf("❌ `%s` %s: %s\n", r.Symbol, r.Strategy, r.Error))
			continue
		}
		emoji := "📈"
		if r.ReturnPct < 0 {
			emoji = "📉"
		}
		sb.WriteString(fmt.Sprintf("%s `%s` %s %+.2f%% (%d trades)\n", emoji, r.Symbol, r.Strategy, r.ReturnPct, r.NTrades))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
