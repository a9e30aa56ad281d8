package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram sends digest messages to a single chat via the Bot API.
type Telegram struct {
	botToken string
	chatID   string
	client   *http.Client
	apiBase  string
}

var _ Transport = (*Telegram)(nil)

func NewTelegram(botToken, chatID string, client *http.Client) *Telegram {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		client:   client,
		apiBase:  defaultAPIBase,
	}
}

// Send posts an HTML-formatted message to the configured chat. Failures are
// classified: rejected credentials surface as AuthError, unreachable or
// failing servers as ConnectivityError, anything else as a plain error.
func (t *Telegram) Send(ctx context.Context, message string) error {
	if t.botToken == "" || t.chatID == "" {
		return &AuthError{Reason: "bot token or chat ID not configured"}
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", message)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &ConnectivityError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Reason: readErrorBody(resp.Body, resp.Status)}
	case resp.StatusCode >= http.StatusInternalServerError:
		return &ConnectivityError{Err: fmt.Errorf("telegram error: %s", resp.Status)}
	default:
		return fmt.Errorf("telegram error: %s: %s", resp.Status, readErrorBody(resp.Body, ""))
	}
}

// SendTest delivers a fixed probe message, used by the CLI to verify the
// delivery configuration end to end.
func (t *Telegram) SendTest(ctx context.Context) error {
	message := fmt.Sprintf("News digest test message\nDelivery is configured correctly.\nSent at %s",
		time.Now().Format("2006-01-02 15:04:05"))
	return t.Send(ctx, message)
}

func readErrorBody(body io.Reader, fallback string) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(data) == 0 {
		return fallback
	}
	return string(data)
}
