package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TelegramConfig names the bot and chat a TelegramAlerter delivers to.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	// Timeout bounds one sendMessage call; zero applies a 10s default.
	Timeout time.Duration
}

// TelegramAlerter delivers alerts through the Telegram bot API. The bot
// API is plain HTTPS POST, so a stdlib client suffices; no SDK is pulled
// in for one endpoint.
type TelegramAlerter struct {
	cfg    TelegramConfig
	client *http.Client
}

// NewTelegramAlerter constructs a TelegramAlerter for cfg.
func NewTelegramAlerter(cfg TelegramConfig) *TelegramAlerter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramAlerter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (t *TelegramAlerter) Name() string { return "telegram" }

// Alert renders the message as free text and sends it to the configured
// chat.
func (t *TelegramAlerter) Alert(ctx context.Context, severity Severity, message string, fields ...any) error {
	text := fmt.Sprintf("%s [%s] %s", severity.Marker(), severity, message)
	if detail := RenderFields(fields...); detail != "" {
		text += "\n" + detail
	}
	return t.send(ctx, text)
}

// SendRunSummary renders and delivers a run summary as one message.
func (t *TelegramAlerter) SendRunSummary(ctx context.Context, s RunSummary) error {
	return t.send(ctx, s.Render())
}

func (t *TelegramAlerter) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.cfg.BotToken)
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.cfg.ChatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
