package indicator

import (
	"fmt"
	"strings"
)

// MAType은 이동평균 종류를 정의합니다
type MAType string

const (
	MATypeSMA  MAType = "SMA"  // 단순이동평균
	MATypeEMA  MAType = "EMA"  // 지수이동평균
	MATypeNone MAType = "NONE" // 평활화 없음
)

// ParseMAType은 문자열을 MAType으로 변환합니다
func ParseMAType(s string) (MAType, error) {
	switch t := MAType(strings.ToUpper(strings.TrimSpace(s))); t {
	case MATypeSMA, MATypeEMA, MATypeNone:
		return t, nil
	default:
		return "", &ValidationError{Field: "MAType", Err: fmt.Errorf("지원하지 않는 이동평균 종류: %q", s)}
	}
}

// MovingAverage는 종류에 맞는 이동평균을 계산합니다.
// MATypeNone은 입력의 복사본을 반환합니다.
func MovingAverage(values []float64, period int, maType MAType) []float64 {
	switch maType {
	case MATypeEMA:
		return EMA(values, period)
	case MATypeNone:
		out := make([]float64, len(values))
		copy(out, values)
		return out
	default:
		return SMA(values, period)
	}
}

// SMA는 단순이동평균을 계산합니다.
// 인덱스 period-1 이전과, 윈도우 안에 미정의 값이 있는 위치는 NaN입니다.
func SMA(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		defined := true
		for j := i - period + 1; j <= i; j++ {
			if !IsDefined(values[j]) {
				defined = false
				break
			}
			sum += values[j]
		}
		if defined {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA는 지수이동평균을 계산합니다.
// 연속된 정의 값이 period개 모이는 지점을 SMA로 시작값 삼고, 이후 승수 2/(period+1)로 갱신합니다.
func EMA(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	run := 0
	for i, v := range values {
		if !IsDefined(v) {
			run = 0
			continue
		}
		run++

		switch {
		case run == period:
			sum := 0.0
			for j := i - period + 1; j <= i; j++ {
				sum += values[j]
			}
			out[i] = sum / float64(period)
		case run > period:
			// EMA = 이전 EMA + (현재값 - 이전 EMA) × 승수
			out[i] = (v-out[i-1])*multiplier + out[i-1]
		}
	}
	return out
}

// RollingMax는 직전 period개 값의 최댓값을 계산합니다
func RollingMax(values []float64, period int) []float64 {
	return rollingExtreme(values, period, func(a, b float64) bool { return a > b })
}

// RollingMin은 직전 period개 값의 최솟값을 계산합니다
func RollingMin(values []float64, period int) []float64 {
	return rollingExtreme(values, period, func(a, b float64) bool { return a < b })
}

func rollingExtreme(values []float64, period int, better func(a, b float64) bool) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		best := values[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if better(values[j], best) {
				best = values[j]
			}
		}
		out[i] = best
	}
	return out
}

// Midpoint는 (최고 고가 + 최저 저가) / 2 를 period 구간으로 계산합니다
func Midpoint(high, low []float64, period int) []float64 {
	hh := RollingMax(high, period)
	ll := RollingMin(low, period)

	out := undefinedSeries(len(high))
	for i := range out {
		if IsDefined(hh[i]) && IsDefined(ll[i]) {
			out[i] = (hh[i] + ll[i]) / 2
		}
	}
	return out
}
