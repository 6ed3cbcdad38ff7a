package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org/bot"
	telegramTimeout    = 10 * time.Second
)

// TelegramNotifier sends availability messages to one Telegram chat through
// the Bot API
type TelegramNotifier struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// NewTelegramNotifier creates a notifier posting to chatID as the bot
// identified by botToken
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, errors.New("bot token is required")
	}
	if chatID == "" {
		return nil, errors.New("chat ID is required")
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramAPIBaseURL,
		httpClient: &http.Client{
			Timeout: telegramTimeout,
		},
	}, nil
}

// Notify sends the message as HTML text
func (n *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     formatTelegram(msg),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}

// formatTelegram renders the title in bold and one lot per line
func formatTelegram(msg Message) string {
	var b strings.Builder
	b.WriteString("🅿️ <b>")
	b.WriteString(html.EscapeString(msg.Title))
	b.WriteString("</b>\n\n")

	if len(msg.Lots) == 0 {
		b.WriteString(html.EscapeString(msg.Body))
		return b.String()
	}
	for _, l := range msg.Lots {
		fmt.Fprintf(&b, "• %s: <b>%d</b>\n", html.EscapeString(l.Name), l.AvailableCount)
	}
	return strings.TrimRight(b.String(), "\n")
}
