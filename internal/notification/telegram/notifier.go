// Package telegram은 텔레그램 봇으로 분석 스냅샷을 전송합니다.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/assist-by/compass/internal/market"
	"github.com/assist-by/compass/internal/notification"
	"github.com/assist-by/compass/internal/report"
)

// maxMessageLength는 텔레그램 메시지 최대 길이입니다
const maxMessageLength = 4096

// Notifier는 텔레그램 채팅으로 알림을 전송합니다
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

type config struct {
	endpoint   string
	httpClient *http.Client
}

// Option은 Notifier 옵션을 정의합니다
type Option func(*config)

// WithAPIEndpoint는 봇 API 엔드포인트 형식을 지정합니다 (예: "https://api.telegram.org/bot%s/%s")
func WithAPIEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient는 HTTP 클라이언트를 지정합니다
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// NewNotifier는 봇 토큰을 확인하고 새로운 Notifier를 생성합니다
func NewNotifier(token string, chatID int64, opts ...Option) (*Notifier, error) {
	cfg := config{
		endpoint:   tgbotapi.APIEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, cfg.endpoint, cfg.httpClient)
	if err != nil {
		return nil, fmt.Errorf("텔레그램 봇 초기화 실패: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

var _ notification.Notifier = (*Notifier)(nil)

// NotifySnapshot은 스냅샷을 고정폭 텍스트 리포트로 전송합니다
func (n *Notifier) NotifySnapshot(ctx context.Context, snap *market.Snapshot) error {
	var buf bytes.Buffer
	if err := (&report.TextRenderer{}).Render(&buf, []*market.Snapshot{snap}); err != nil {
		return err
	}
	return n.send(ctx, "<pre>"+html.EscapeString(truncate(buf.String(), maxMessageLength-64))+"</pre>")
}

// NotifyError는 에러 알림을 전송합니다
func (n *Notifier) NotifyError(ctx context.Context, err error) error {
	return n.send(ctx, "⚠️ <b>에러 발생</b>\n<code>"+html.EscapeString(truncate(err.Error(), maxMessageLength-64))+"</code>")
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("텔레그램 메시지 전송 실패: %w", err)
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
