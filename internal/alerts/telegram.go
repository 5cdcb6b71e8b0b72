package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Notifier delivers a formatted text to the operator channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// TelegramNotifier sends notifications to the operator's Telegram chat.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// TelegramOption tweaks the notifier, mainly for tests.
type TelegramOption func(*TelegramNotifier)

// WithTelegramBaseURL overrides the API host.
func WithTelegramBaseURL(base string) TelegramOption {
	return func(n *TelegramNotifier) { n.baseURL = strings.TrimRight(base, "/") }
}

// NewTelegramNotifier builds a notifier with a bounded HTTP timeout.
func NewTelegramNotifier(botToken, chatID string, timeout time.Duration, opts ...TelegramOption) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	n := &TelegramNotifier{
		botToken: strings.TrimSpace(botToken),
		chatID:   strings.TrimSpace(chatID),
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify posts the message to the configured chat.
func (n *TelegramNotifier) Notify(ctx context.Context, message string) error {
	if n.botToken == "" || n.chatID == "" {
		return fmt.Errorf("alerts: telegram notifier not configured")
	}

	payload := map[string]any{
		"chat_id":    n.chatID,
		"text":       message,
		"parse_mode": "Markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("alerts: telegram API error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
