package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/httputil"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// Notifier sends run reports to a Telegram chat
// ⭐ SSOT: Telegram 전송은 여기서만
type Notifier struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	token      string
	chatID     string
	loc        *time.Location
}

// NewNotifier creates a Telegram sink; loc is used for the report timestamp
func NewNotifier(httpClient *httputil.Client, log *logger.Logger, cfg config.TelegramConfig, loc *time.Location) *Notifier {
	return &Notifier{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		token:      cfg.BotToken,
		chatID:     cfg.ChatID,
		loc:        loc,
	}
}

// Name implements contracts.Notifier
func (n *Notifier) Name() string {
	return "telegram"
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Publish implements contracts.Notifier
func (n *Notifier) Publish(ctx context.Context, report *contracts.RunReport) error {
	return n.Send(ctx, FormatReport(report, n.loc))
}

// Send posts one Markdown message
func (n *Notifier) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	form := url.Values{
		"chat_id":                  {n.chatID},
		"text":                     {text},
		"parse_mode":               {"Markdown"},
		"disable_web_page_preview": {"true"},
	}

	resp, err := n.httpClient.PostForm(ctx, endpoint, form)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("telegram response decode failed (status %d): %w", resp.StatusCode, err)
	}
	if !out.OK {
		return fmt.Errorf("telegram API error %d: %s", out.ErrorCode, out.Description)
	}

	n.logger.WithField("chars", len(text)).Info("Telegram message sent")
	return nil
}
