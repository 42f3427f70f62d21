// internal/indicator/rsi.go
package indicator

import "fmt"

// RSIOption은 RSI 계산 옵션을 정의합니다
type RSIOption struct {
	Period int // RSI 계산 기간 (기본값: 14)
}

// ValidateRSIOption은 RSI 옵션을 검증합니다
func ValidateRSIOption(opt RSIOption) error {
	if opt.Period < 1 {
		return &ValidationError{Field: "Period", Err: fmt.Errorf("period must be > 0: %d", opt.Period)}
	}
	return nil
}

// MinLength는 마지막 캔들의 RSI가 정의되기 위한 최소 길이입니다 (변동 Δ가 Period개 필요)
func (opt RSIOption) MinLength() int {
	return opt.Period + 1
}

// RSIResult는 RSI 지표 계산 결과. 인덱스 Period 이전은 math.NaN()
type RSIResult struct {
	Value   []float64 // RSI 값 (0–100)
	AvgGain []float64 // 평균 이득
	AvgLoss []float64 // 평균 손실
}

// RSI는 Wilder 평활 방식의 Relative Strength Index를 계산
func RSI(prices []PriceData, opt RSIOption) (*RSIResult, error) {
	if err := ValidateRSIOption(opt); err != nil {
		return nil, err
	}
	if err := ValidateSeries(prices); err != nil {
		return nil, err
	}
	if err := requireLength("RSI", prices, opt.MinLength()); err != nil {
		return nil, err
	}

	p := opt.Period
	n := len(prices)
	result := &RSIResult{
		Value:   undefinedSeries(n),
		AvgGain: undefinedSeries(n),
		AvgLoss: undefinedSeries(n),
	}

	// ---------- 1. 첫 p 개의 변동 Δ 합산 (SMA) ----------------------------
	sumGain, sumLoss := 0.0, 0.0
	for i := 1; i <= p; i++ {
		gain, loss := splitDelta(prices[i].Close - prices[i-1].Close)
		sumGain += gain
		sumLoss += loss
	}
	avgGain, avgLoss := sumGain/float64(p), sumLoss/float64(p)
	result.set(p, avgGain, avgLoss)

	// ---------- 2. 이후 구간 Wilder 평활 ----------------------------------
	for i := p + 1; i < n; i++ {
		gain, loss := splitDelta(prices[i].Close - prices[i-1].Close)
		avgGain = (avgGain*float64(p-1) + gain) / float64(p)
		avgLoss = (avgLoss*float64(p-1) + loss) / float64(p)
		result.set(i, avgGain, avgLoss)
	}

	return result, nil
}

// --- 유틸 ---------------------------------------------------------------

func splitDelta(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func (r *RSIResult) set(i int, avgGain, avgLoss float64) {
	r.AvgGain[i] = avgGain
	r.AvgLoss[i] = avgLoss
	r.Value[i] = toRSI(avgGain, avgLoss)
}

func toRSI(avgGain, avgLoss float64) float64 {
	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50 // 완전 횡보
	case avgLoss == 0:
		return 100
	default:
		rs := avgGain / avgLoss
		return 100 - 100/(1+rs)
	}
}
