// Package market는 거래소에서 캔들을 수집하고 분석 엔진을 실행해 스냅샷을 만듭니다.
package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/assist-by/compass/internal/analysis"
	"github.com/assist-by/compass/internal/domain"
	"github.com/assist-by/compass/internal/exchange"
	"github.com/assist-by/compass/internal/indicator"
)

// Snapshot은 한 심볼에 대한 한 번의 분석 결과입니다
type Snapshot struct {
	ID        string              `json:"id" yaml:"id"`
	Symbol    string              `json:"symbol" yaml:"symbol"`
	Interval  domain.TimeInterval `json:"interval" yaml:"interval"`
	FetchedAt time.Time           `json:"fetched_at" yaml:"fetched_at"`
	Price     float64             `json:"price" yaml:"price"`
	Candles   int                 `json:"candles" yaml:"candles"`
	Reports   []*analysis.Report  `json:"reports" yaml:"reports"`
}

// Report는 지표 이름으로 리포트를 찾습니다
func (s *Snapshot) Report(indicatorName string) (*analysis.Report, bool) {
	for _, r := range s.Reports {
		if r.Indicator == indicatorName {
			return r, true
		}
	}
	return nil, false
}

// Collector는 시장 데이터 수집기를 구현합니다
type Collector struct {
	exchange exchange.MarketData
	engine   *analysis.Engine

	symbols     []string
	interval    domain.TimeInterval
	candleLimit int
	closedOnly  bool
	tickerPrice bool

	logger zerolog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// CollectorOption은 수집기의 옵션을 정의합니다
type CollectorOption func(*Collector)

// WithCandleLimit은 캔들 데이터 조회 개수를 설정합니다
func WithCandleLimit(limit int) CollectorOption {
	return func(c *Collector) {
		c.candleLimit = limit
	}
}

// WithClosedCandlesOnly는 아직 마감되지 않은 마지막 캔들을 제외할지 설정합니다
func WithClosedCandlesOnly(closedOnly bool) CollectorOption {
	return func(c *Collector) {
		c.closedOnly = closedOnly
	}
}

// WithTickerPrice는 현재가로 티커 최근 체결가를 사용할지 설정합니다.
// 끄면 마지막 종가가 현재가가 됩니다.
func WithTickerPrice(enabled bool) CollectorOption {
	return func(c *Collector) {
		c.tickerPrice = enabled
	}
}

// WithLogger는 수집기 로거를 지정합니다
func WithLogger(logger zerolog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithClock은 현재 시각 함수를 지정합니다
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		c.now = now
	}
}

// NewCollector는 새로운 데이터 수집기를 생성합니다
func NewCollector(ex exchange.MarketData, engine *analysis.Engine, symbols []string, interval domain.TimeInterval, opts ...CollectorOption) *Collector {
	c := &Collector{
		exchange:    ex,
		engine:      engine,
		symbols:     symbols,
		interval:    interval,
		candleLimit: 500,
		tickerPrice: true,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Collect는 한 번의 데이터 수집 사이클을 수행합니다.
// 심볼별 실패는 모아서 반환하며, 성공한 스냅샷은 심볼 순서대로 반환됩니다.
func (c *Collector) Collect(ctx context.Context) ([]*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		snapshots []*Snapshot
		errs      []error
	)
	for _, symbol := range c.symbols {
		if err := ctx.Err(); err != nil {
			return snapshots, err
		}

		snap, err := c.Analyze(ctx, symbol)
		if snap != nil {
			snapshots = append(snapshots, snap)
		}
		if err != nil {
			c.logger.Error().Err(err).Str("symbol", symbol).Msg("분석 실패")
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
		}
	}
	return snapshots, errors.Join(errs...)
}

// Analyze는 한 심볼의 캔들을 조회해 모든 분석기를 실행합니다.
// 일부 분석기만 실패하면 성공한 리포트를 담은 스냅샷과 에러를 함께 반환합니다.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*Snapshot, error) {
	logger := c.logger.With().Str("symbol", symbol).Str("interval", c.interval.String()).Logger()

	candles, err := c.exchange.GetKlines(ctx, symbol, c.interval, c.candleLimit)
	if err != nil {
		return nil, fmt.Errorf("캔들 데이터 조회 실패: %w", err)
	}

	now := c.now()
	if c.closedOnly {
		candles = candles.DropUnclosed(now)
	}
	if required := c.engine.MinLength(); len(candles) < required {
		return nil, &indicator.InsufficientDataError{Indicator: "engine", Required: required, Actual: len(candles)}
	}

	prices := indicator.ConvertCandlesToPriceData(candles)
	price := prices[len(prices)-1].Close
	if c.tickerPrice {
		price, err = c.exchange.GetTickerPrice(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("현재가 조회 실패: %w", err)
		}
	}

	logger.Debug().Int("candles", len(candles)).Float64("price", price).Msg("분석 시작")

	reports, err := c.engine.Run(prices, analysis.WithPrice(price))
	if len(reports) == 0 && err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Interval:  c.interval,
		FetchedAt: now,
		Price:     price,
		Candles:   len(candles),
		Reports:   reports,
	}
	logger.Info().Str("snapshot", snap.ID).Int("reports", len(reports)).Msg("분석 완료")
	return snap, err
}
