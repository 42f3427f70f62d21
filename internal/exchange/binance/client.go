// Package binance는 바이낸스 현물 공개 REST API 클라이언트를 구현합니다.
package binance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/assist-by/compass/internal/domain"
)

const (
	// DefaultBaseURL은 바이낸스 현물 API 주소입니다
	DefaultBaseURL = "https://api.binance.com"

	// maxKlinesPerRequest는 klines 엔드포인트가 한 번에 반환하는 최대 캔들 수입니다
	maxKlinesPerRequest = 1000
)

// APIError는 바이낸스가 반환한 에러 응답입니다
type APIError struct {
	StatusCode int    // HTTP 상태 코드
	Code       int64  // 바이낸스 에러 코드
	Message    string // 에러 메시지
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("API 에러(HTTP %d, 코드: %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP 에러(%d): %s", e.StatusCode, e.Message)
}

// Retryable은 재시도로 해결될 수 있는 에러인지 확인합니다 (429, 5xx)
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client는 바이낸스 공개 API 클라이언트를 구현합니다
type Client struct {
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxRetries   uint64
	retryBackoff time.Duration
}

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 클라이언트의 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL은 기본 URL을 설정합니다
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithRateLimit은 초당 최대 요청 수를 설정합니다
func WithRateLimit(requestsPerSec int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSec), requestsPerSec)
	}
}

// WithRetry는 재시도 횟수와 첫 재시도 대기 시간을 설정합니다
func WithRetry(maxRetries uint64, initialBackoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBackoff = initialBackoff
	}
}

// NewClient는 새로운 바이낸스 API 클라이언트를 생성합니다
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(10), 10),
		maxRetries:   3,
		retryBackoff: 500 * time.Millisecond,
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetServerTime은 서버 시간을 조회합니다
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	body, err := c.doRequest(ctx, "/api/v3/time", nil)
	if err != nil {
		return time.Time{}, err
	}

	serverTime := gjson.GetBytes(body, "serverTime")
	if !serverTime.Exists() {
		return time.Time{}, fmt.Errorf("서버 시간 파싱 실패: %s", string(body))
	}
	return time.UnixMilli(serverTime.Int()).UTC(), nil
}

// GetTickerPrice는 심볼의 최근 체결가를 조회합니다
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Add("symbol", symbol)

	body, err := c.doRequest(ctx, "/api/v3/ticker/price", params)
	if err != nil {
		return 0, err
	}

	price, err := parseNumber(gjson.GetBytes(body, "price"))
	if err != nil {
		return 0, fmt.Errorf("현재가 파싱 실패: %w", err)
	}
	return price, nil
}

// GetKlines는 최근 limit개의 캔들 데이터를 조회합니다.
// limit이 한 번의 요청 한도를 넘으면 endTime을 과거로 옮기며 나눠서 조회합니다.
func (c *Client) GetKlines(ctx context.Context, symbol string, interval domain.TimeInterval, limit int) (domain.CandleList, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("캔들 개수는 1 이상이어야 합니다: %d", limit)
	}

	var candles domain.CandleList
	var endTime int64
	for len(candles) < limit {
		batch := min(limit-len(candles), maxKlinesPerRequest)

		params := url.Values{}
		params.Add("symbol", symbol)
		params.Add("interval", string(interval))
		params.Add("limit", strconv.Itoa(batch))
		if endTime > 0 {
			params.Add("endTime", strconv.FormatInt(endTime, 10))
		}

		body, err := c.doRequest(ctx, "/api/v3/klines", params)
		if err != nil {
			return nil, err
		}

		page, err := parseKlines(body, symbol, interval)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		candles = page.Merge(candles)
		endTime = page[0].OpenTime.UnixMilli() - 1

		// 요청보다 적게 왔으면 더 과거 데이터가 없습니다
		if len(page) < batch || endTime < 0 {
			break
		}
	}

	return candles.Tail(limit), nil
}

// doRequest는 레이트 리밋과 재시도를 적용해 GET 요청을 실행하고 응답 본문을 반환합니다
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("URL 파싱 실패: %w", err)
	}
	reqURL.RawQuery = params.Encode()

	var body []byte
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("요청 생성 실패: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("API 요청 실패: %w", err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("응답 읽기 실패: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := parseAPIError(resp.StatusCode, body)
			if apiErr.Retryable() {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBackoff
	policy.MaxElapsedTime = 0

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: string(body)}
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		if msg := res.Get("msg"); msg.Exists() {
			apiErr.Code = res.Get("code").Int()
			apiErr.Message = msg.String()
		}
	}
	return apiErr
}

// parseKlines는 klines 응답 배열을 캔들 목록으로 변환합니다.
// 각 원소는 [openTime, open, high, low, close, volume, closeTime, ...] 형식입니다.
func parseKlines(body []byte, symbol string, interval domain.TimeInterval) (domain.CandleList, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("캔들 데이터 파싱 실패: 올바르지 않은 JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("캔들 데이터 파싱 실패: 배열이 아닙니다")
	}

	rows := root.Array()
	candles := make(domain.CandleList, 0, len(rows))
	for i, row := range rows {
		fields := row.Array()
		if len(fields) < 7 {
			return nil, fmt.Errorf("캔들 데이터 파싱 실패(%d): 필드 수 부족 %d", i, len(fields))
		}

		var values [5]float64
		for j := range values {
			v, err := parseNumber(fields[j+1])
			if err != nil {
				return nil, fmt.Errorf("캔들 데이터 파싱 실패(%d): %w", i, err)
			}
			values[j] = v
		}

		candles = append(candles, domain.Candle{
			OpenTime:  time.UnixMilli(fields[0].Int()).UTC(),
			CloseTime: time.UnixMilli(fields[6].Int()).UTC(),
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
			Symbol:    symbol,
			Interval:  interval,
		})
	}
	return candles, nil
}

// parseNumber는 바이낸스의 문자열 숫자 필드를 변환합니다
func parseNumber(r gjson.Result) (float64, error) {
	if !r.Exists() {
		return 0, errors.New("값이 없습니다")
	}
	v, err := strconv.ParseFloat(r.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("숫자가 아닙니다: %q", r.String())
	}
	return v, nil
}
