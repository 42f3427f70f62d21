// Package indicator는 OHLCV 시계열 위에서 기술적 지표 라인을 계산합니다.
// 모든 함수는 입력을 변경하지 않는 순수 함수이며, 워밍업 구간의 값은 math.NaN()으로 표시합니다.
package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/assist-by/compass/internal/domain"
)

// PriceData는 지표 계산에 필요한 가격 정보를 정의합니다
type PriceData struct {
	Time   time.Time // 타임스탬프
	Open   float64   // 시가
	High   float64   // 고가
	Low    float64   // 저가
	Close  float64   // 종가
	Volume float64   // 거래량
}

// IsDefined는 값이 워밍업 구간의 미정의 값이 아닌지 확인합니다
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateSeries는 시계열이 비어있지 않고, 타임스탬프가 엄격히 증가하며,
// 모든 가격이 유한한 값인지 검증합니다
func ValidateSeries(prices []PriceData) error {
	if len(prices) == 0 {
		return &InvalidSeriesError{Index: -1, Reason: "가격 데이터가 비어있습니다"}
	}

	for i, p := range prices {
		for _, v := range [...]float64{p.Open, p.High, p.Low, p.Close, p.Volume} {
			if !IsDefined(v) {
				return &InvalidSeriesError{Index: i, Reason: fmt.Sprintf("유한하지 않은 값: %v", v)}
			}
		}
		if i > 0 && !p.Time.After(prices[i-1].Time) {
			return &InvalidSeriesError{
				Index:  i,
				Reason: fmt.Sprintf("타임스탬프가 증가하지 않습니다: %s <= %s", p.Time.Format(time.RFC3339), prices[i-1].Time.Format(time.RFC3339)),
			}
		}
	}
	return nil
}

// requireLength는 시계열 길이가 최소 워밍업 길이 이상인지 확인합니다
func requireLength(name string, prices []PriceData, required int) error {
	if len(prices) < required {
		return &InsufficientDataError{Indicator: name, Required: required, Actual: len(prices)}
	}
	return nil
}

// Closes는 종가 배열을 반환합니다
func Closes(prices []PriceData) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = p.Close
	}
	return out
}

// Highs는 고가 배열을 반환합니다
func Highs(prices []PriceData) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = p.High
	}
	return out
}

// Lows는 저가 배열을 반환합니다
func Lows(prices []PriceData) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = p.Low
	}
	return out
}

// undefinedSeries는 NaN으로 채워진 배열을 생성합니다
func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// ConvertCandlesToPriceData는 캔들 데이터를 지표 계산용 PriceData로 변환합니다
func ConvertCandlesToPriceData(candles domain.CandleList) []PriceData {
	priceData := make([]PriceData, len(candles))
	for i, candle := range candles {
		priceData[i] = PriceData{
			Time:   candle.OpenTime,
			Open:   candle.Open,
			High:   candle.High,
			Low:    candle.Low,
			Close:  candle.Close,
			Volume: candle.Volume,
		}
	}
	return priceData
}
