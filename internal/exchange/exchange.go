// Package exchange는 분석에 필요한 시장 데이터를 제공하는 거래소 인터페이스를 정의합니다.
package exchange

import (
	"context"
	"time"

	"github.com/assist-by/compass/internal/domain"
)

// MarketData는 공개 시장 데이터 조회를 위한 인터페이스입니다
type MarketData interface {
	// GetServerTime은 거래소 서버 시간을 조회합니다
	GetServerTime(ctx context.Context) (time.Time, error)

	// GetKlines는 최근 limit개의 캔들을 오래된 순으로 조회합니다
	GetKlines(ctx context.Context, symbol string, interval domain.TimeInterval, limit int) (domain.CandleList, error)

	// GetTickerPrice는 심볼의 최근 체결가를 조회합니다
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}
