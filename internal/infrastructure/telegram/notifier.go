package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ListingScanner/internal/domain"
	"ListingScanner/internal/ports"
)

// Notifier posts each classification result to a Telegram chat via the
// bot API. Failures are the engine's to swallow; this adapter just
// reports them.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishResult posts a short Markdown summary of the result.
func (n *Notifier) PublishResult(ctx context.Context, result domain.ClassificationResult) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatResult(result))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func formatResult(result domain.ClassificationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*: %s (%s)\n", result.SubjectID, result.Status, result.Indicator)
	if result.Title != "" {
		fmt.Fprintf(&b, "%s\n", result.Title)
	}
	if result.Rank > 0 {
		fmt.Fprintf(&b, "Rank #%d\n", result.Rank)
	}
	if result.SourceURL != "" {
		b.WriteString(result.SourceURL)
	}
	return strings.TrimSpace(b.String())
}
