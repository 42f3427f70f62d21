package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/compass/internal/analysis"
	"github.com/assist-by/compass/internal/domain"
	"github.com/assist-by/compass/internal/market"
	"github.com/assist-by/compass/internal/notification"
)

func testSnapshot() *market.Snapshot {
	return &market.Snapshot{
		ID:        "snap-1",
		Symbol:    "ETHUSDT",
		Interval:  domain.Interval1d,
		FetchedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Price:     3245.5,
		Candles:   500,
		Reports: []*analysis.Report{
			{
				Indicator: "ichimoku",
				Classifications: []analysis.Classification{
					{Rule: "price_vs_cloud", Label: analysis.Bullish},
					{Rule: "tk_cross", Label: analysis.Bullish},
				},
			},
			{
				Indicator: "rsi",
				Classifications: []analysis.Classification{
					{Rule: "condition", Label: analysis.Overbought},
				},
			},
		},
	}
}

func TestNotifySnapshot(t *testing.T) {
	var received WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.NotifySnapshot(context.Background(), testSnapshot()))

	require.Len(t, received.Embeds, 1)
	embed := received.Embeds[0]
	assert.Equal(t, "📊 ETHUSDT 1d", embed.Title)
	assert.Contains(t, embed.Description, "$3,245.5")
	assert.Equal(t, notification.ColorSuccess, embed.Color)
	assert.Equal(t, "2024-03-01T00:00:00Z", embed.Timestamp)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "ICHIMOKU", embed.Fields[0].Name)
	assert.Equal(t, "`price_vs_cloud` **BULLISH**\n`tk_cross` **BULLISH**", embed.Fields[0].Value)
	assert.Contains(t, embed.Footer.Text, "snap-1")
}

func TestNotifyErrorUsesErrorWebhook(t *testing.T) {
	var reportHits, errorHits int32
	reports := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&reportHits, 1)
	}))
	defer reports.Close()
	errs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&errorHits, 1)
		var msg WebhookMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "```binance down```", msg.Embeds[0].Description)
		assert.Equal(t, notification.ColorError, msg.Embeds[0].Color)
	}))
	defer errs.Close()

	client := NewClient(reports.URL, WithErrorWebhook(errs.URL))
	require.NoError(t, client.NotifyError(context.Background(), errors.New("binance down")))
	assert.Equal(t, int32(0), atomic.LoadInt32(&reportHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&errorHits))
}

func TestWebhookRetry(t *testing.T) {
	tests := []struct {
		name     string
		statuses []int
		wantErr  bool
		wantHits int32
	}{
		{"레이트 리밋 후 성공", []int{http.StatusTooManyRequests, http.StatusNoContent}, false, 2},
		{"잘못된 요청은 재시도하지 않음", []int{http.StatusBadRequest}, true, 1},
		{"서버 에러 재시도 소진", []int{500, 502, 503}, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&hits, 1)
				w.WriteHeader(tt.statuses[min(int(n)-1, len(tt.statuses)-1)])
			}))
			defer server.Close()

			err := NewClient(server.URL).NotifyError(context.Background(), errors.New("x"))
			if tt.wantErr {
				var werr *webhookError
				require.ErrorAs(t, err, &werr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantHits, atomic.LoadInt32(&hits))
		})
	}
}

func TestEmbedLimits(t *testing.T) {
	long := make([]rune, 2000)
	for i := range long {
		long[i] = '가'
	}

	embed := NewEmbed().AddField("empty", "", false).AddField("long", string(long), false)
	assert.Equal(t, "-", embed.Fields[0].Value)
	assert.Len(t, []rune(embed.Fields[1].Value), maxFieldValueLength)
	assert.True(t, strings.HasSuffix(embed.Fields[1].Value, "…"))

	for i := 0; i < 30; i++ {
		embed.AddField("f", "v", true)
	}
	assert.Len(t, embed.Fields, maxFields)
}
