package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/compass/internal/domain"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// fakeKlines는 인덱스 0..total-1의 일봉을 가진 klines 엔드포인트를 흉내냅니다
func fakeKlines(t *testing.T, total int, requests *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		require.Equal(t, "/api/v3/klines", r.URL.Path)

		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		require.NoError(t, err)
		assert.LessOrEqual(t, limit, maxKlinesPerRequest)

		end := total - 1
		if s := r.URL.Query().Get("endTime"); s != "" {
			endTime, err := strconv.ParseInt(s, 10, 64)
			require.NoError(t, err)
			end = int(endTime / dayMillis)
			if endTime%dayMillis == 0 {
				end--
			}
		}
		start := max(0, end-limit+1)

		rows := make([]string, 0, limit)
		for i := start; i <= end; i++ {
			open := int64(i) * dayMillis
			price := 100 + float64(i)
			rows = append(rows, fmt.Sprintf(`[%d,"%.2f","%.2f","%.2f","%.2f","12.5",%d,"0",1,"0","0","0"]`,
				open, price, price+1, price-1, price, open+dayMillis-1))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(rows, ","))
	}
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(WithBaseURL(server.URL), WithRetry(2, time.Millisecond), WithRateLimit(1000))
}

func TestGetKlines(t *testing.T) {
	var requests int32
	server := httptest.NewServer(fakeKlines(t, 50, &requests))
	defer server.Close()

	candles, err := newTestClient(server).GetKlines(context.Background(), "ETHUSDT", domain.Interval1d, 10)
	require.NoError(t, err)

	require.Len(t, candles, 10)
	assert.Equal(t, int32(1), requests)
	assert.Equal(t, 149.0, candles[9].Close)
	assert.Equal(t, 150.0, candles[9].High)
	assert.Equal(t, 12.5, candles[9].Volume)
	assert.Equal(t, "ETHUSDT", candles[9].Symbol)
	assert.Equal(t, domain.Interval1d, candles[9].Interval)
	assert.Equal(t, time.UnixMilli(49*dayMillis).UTC(), candles[9].OpenTime)
}

func TestGetKlines_Paginates(t *testing.T) {
	var requests int32
	server := httptest.NewServer(fakeKlines(t, 2500, &requests))
	defer server.Close()

	candles, err := newTestClient(server).GetKlines(context.Background(), "ETHUSDT", domain.Interval1d, 2200)
	require.NoError(t, err)

	require.Len(t, candles, 2200)
	assert.Equal(t, int32(3), requests)
	for i := 1; i < len(candles); i++ {
		require.True(t, candles[i].OpenTime.After(candles[i-1].OpenTime), "인덱스 %d", i)
	}
	assert.Equal(t, 100.0+300, candles[0].Close)
	assert.Equal(t, 100.0+2499, candles[2199].Close)
}

func TestGetKlines_StopsWhenHistoryRunsOut(t *testing.T) {
	var requests int32
	server := httptest.NewServer(fakeKlines(t, 1200, &requests))
	defer server.Close()

	candles, err := newTestClient(server).GetKlines(context.Background(), "ETHUSDT", domain.Interval1d, 5000)
	require.NoError(t, err)

	assert.Len(t, candles, 1200)
	assert.Equal(t, int32(2), requests)
}

func TestGetKlines_MalformedNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[0,"abc","1","1","1","1",86399999]]`)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetKlines(context.Background(), "ETHUSDT", domain.Interval1d, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc")
}

func TestGetTickerPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, `{"symbol":"ETHUSDT","price":"2450.12000000"}`)
	}))
	defer server.Close()

	price, err := newTestClient(server).GetTickerPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2450.12, price)
}

func TestGetServerTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"serverTime":1704067200000}`)
	}))
	defer server.Close()

	serverTime, err := newTestClient(server).GetServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), serverTime)
}

func TestDoRequest_ClientErrorIsNotRetried(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetTickerPrice(context.Background(), "NOPE")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int64(-1121), apiErr.Code)
	assert.Equal(t, "Invalid symbol.", apiErr.Message)
	assert.Equal(t, int32(1), requests)
}

func TestDoRequest_RetriesServerErrors(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"symbol":"ETHUSDT","price":"1.5"}`)
	}))
	defer server.Close()

	price, err := newTestClient(server).GetTickerPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1.5, price)
	assert.Equal(t, int32(3), requests)
}

func TestDoRequest_GivesUpAfterMaxRetries(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetTickerPrice(context.Background(), "ETHUSDT")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(3), requests)
}

func TestDoRequest_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server).GetServerTime(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
