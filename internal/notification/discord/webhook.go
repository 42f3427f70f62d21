// Package discord는 Discord 웹훅으로 분석 스냅샷을 전송합니다.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/assist-by/compass/internal/market"
	"github.com/assist-by/compass/internal/notification"
	"github.com/assist-by/compass/internal/report"
)

const footerText = "compass 📈"

// Client는 Discord 웹훅 클라이언트입니다
type Client struct {
	reportWebhook string
	errorWebhook  string
	httpClient    *http.Client
	maxRetries    uint64
}

// ClientOption은 클라이언트 옵션을 정의합니다
type ClientOption func(*Client)

// WithErrorWebhook은 에러 알림을 보낼 별도 웹훅을 지정합니다
func WithErrorWebhook(url string) ClientOption {
	return func(c *Client) {
		c.errorWebhook = url
	}
}

// WithHTTPClient는 HTTP 클라이언트를 지정합니다
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithMaxRetries는 레이트 리밋/서버 에러 시 재시도 횟수를 지정합니다
func WithMaxRetries(n uint64) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// NewClient는 새로운 Discord 클라이언트를 생성합니다.
// 에러 웹훅을 지정하지 않으면 리포트 웹훅으로 에러도 전송합니다.
func NewClient(reportWebhook string, opts ...ClientOption) *Client {
	c := &Client{
		reportWebhook: reportWebhook,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		maxRetries:    2,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.errorWebhook == "" {
		c.errorWebhook = reportWebhook
	}
	return c
}

var _ notification.Notifier = (*Client)(nil)

// NotifySnapshot은 스냅샷을 지표별 필드를 가진 임베드로 전송합니다
func (c *Client) NotifySnapshot(ctx context.Context, snap *market.Snapshot) error {
	embed := NewEmbed().
		SetTitle(fmt.Sprintf("📊 %s %s", snap.Symbol, snap.Interval)).
		SetDescription(fmt.Sprintf("**현재가**: $%s\n**캔들**: %d개", report.FormatNumber(snap.Price), snap.Candles)).
		SetColor(notification.GetColorForTone(notification.Bias(snap))).
		SetFooter(fmt.Sprintf("%s · %s", footerText, snap.ID)).
		SetTimestamp(snap.FetchedAt)

	for _, r := range snap.Reports {
		lines := make([]string, 0, len(r.Classifications))
		for _, cl := range r.Classifications {
			lines = append(lines, fmt.Sprintf("`%s` **%s**", cl.Rule, cl.Label))
		}
		embed.AddField(strings.ToUpper(r.Indicator), strings.Join(lines, "\n"), true)
	}

	return c.sendToWebhook(ctx, c.reportWebhook, WebhookMessage{
		Embeds: []Embed{*embed},
	})
}

// NotifyError는 에러 알림을 전송합니다
func (c *Client) NotifyError(ctx context.Context, err error) error {
	embed := NewEmbed().
		SetTitle("에러 발생").
		SetDescription(fmt.Sprintf("```%v```", err)).
		SetColor(notification.ColorError).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	return c.sendToWebhook(ctx, c.errorWebhook, WebhookMessage{
		Embeds: []Embed{*embed},
	})
}

// webhookError는 웹훅이 성공이 아닌 상태 코드를 반환했음을 나타냅니다
type webhookError struct {
	StatusCode int
	Body       string
}

func (e *webhookError) Error() string {
	return fmt.Sprintf("웹훅 전송 실패 (상태 코드 %d): %s", e.StatusCode, e.Body)
}

// sendToWebhook은 메시지를 웹훅으로 전송합니다. 429와 5xx만 재시도합니다.
func (c *Client) sendToWebhook(ctx context.Context, webhookURL string, msg WebhookMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("메시지 마샬링 실패: %w", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("요청 생성 실패: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("웹훅 요청 실패: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		werr := &webhookError{StatusCode: resp.StatusCode, Body: string(body)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return werr
		}
		return backoff.Permanent(werr)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 0
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
}
