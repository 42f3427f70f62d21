package indicator

import (
	"fmt"
	"math"
)

// IchimokuOption은 일목균형표 계산 옵션을 정의합니다
type IchimokuOption struct {
	TenkanPeriod  int // 전환선 기간 (기본값: 9)
	KijunPeriod   int // 기준선 기간 (기본값: 26)
	SenkouBPeriod int // 선행스팬 B 기간 (기본값: 52)
	Displacement  int // 선행/후행 이동 거리 (기본값: 26)
}

// DefaultIchimokuOption은 기본 일목균형표 옵션을 반환합니다
func DefaultIchimokuOption() IchimokuOption {
	return IchimokuOption{
		TenkanPeriod:  9,
		KijunPeriod:   26,
		SenkouBPeriod: 52,
		Displacement:  26,
	}
}

// ValidateIchimokuOption은 일목균형표 옵션을 검증합니다
func ValidateIchimokuOption(opt IchimokuOption) error {
	fields := []struct {
		name  string
		value int
	}{
		{"TenkanPeriod", opt.TenkanPeriod},
		{"KijunPeriod", opt.KijunPeriod},
		{"SenkouBPeriod", opt.SenkouBPeriod},
		{"Displacement", opt.Displacement},
	}
	for _, f := range fields {
		if f.value < 1 {
			return &ValidationError{
				Field: f.name,
				Err:   fmt.Errorf("기간은 1 이상이어야 합니다: %d", f.value),
			}
		}
	}
	return nil
}

// MinLength는 모든 기본 라인이 마지막 캔들에서 정의되기 위한 최소 길이입니다
func (opt IchimokuOption) MinLength() int {
	return max(opt.TenkanPeriod, opt.KijunPeriod, opt.SenkouBPeriod)
}

// CloudLength는 마지막 캔들 아래의 구름이 정의되기 위한 최소 길이입니다
func (opt IchimokuOption) CloudLength() int {
	return opt.SenkouBPeriod + opt.Shift()
}

// Shift는 구름/후행스팬이 실제로 이동하는 캔들 수입니다.
// 현재 캔들을 이동 거리의 첫 칸으로 세므로 Displacement-1 입니다.
func (opt IchimokuOption) Shift() int {
	return opt.Displacement - 1
}

// IchimokuResult는 일목균형표 계산 결과입니다. 모든 배열은 입력 시계열 인덱스에 정렬됩니다.
type IchimokuResult struct {
	Tenkan  []float64 // 전환선
	Kijun   []float64 // 기준선
	SenkouA []float64 // 선행스팬 A (계산 시점 기준, 이동 전)
	SenkouB []float64 // 선행스팬 B (계산 시점 기준, 이동 전)
	CloudA  []float64 // 해당 캔들 아래에 그려지는 선행스팬 A
	CloudB  []float64 // 해당 캔들 아래에 그려지는 선행스팬 B
	Chikou  []float64 // 후행스팬: 인덱스 i에는 i+Shift 캔들의 종가가 그려집니다
	Shift   int
}

// Ichimoku는 일목균형표 라인을 계산합니다
func Ichimoku(prices []PriceData, opt IchimokuOption) (*IchimokuResult, error) {
	if err := ValidateIchimokuOption(opt); err != nil {
		return nil, err
	}
	if err := ValidateSeries(prices); err != nil {
		return nil, err
	}
	if err := requireLength("Ichimoku", prices, opt.MinLength()); err != nil {
		return nil, err
	}

	high, low, closes := Highs(prices), Lows(prices), Closes(prices)
	n := len(prices)
	shift := opt.Shift()

	result := &IchimokuResult{
		Tenkan:  Midpoint(high, low, opt.TenkanPeriod),
		Kijun:   Midpoint(high, low, opt.KijunPeriod),
		SenkouA: undefinedSeries(n),
		SenkouB: Midpoint(high, low, opt.SenkouBPeriod),
		CloudA:  undefinedSeries(n),
		CloudB:  undefinedSeries(n),
		Chikou:  undefinedSeries(n),
		Shift:   shift,
	}

	for i := 0; i < n; i++ {
		if IsDefined(result.Tenkan[i]) && IsDefined(result.Kijun[i]) {
			result.SenkouA[i] = (result.Tenkan[i] + result.Kijun[i]) / 2
		}
	}

	// 현재 보이는 구름은 과거 shift 캔들 전에 투영된 값입니다
	for i := shift; i < n; i++ {
		result.CloudA[i] = result.SenkouA[i-shift]
		result.CloudB[i] = result.SenkouB[i-shift]
	}

	for i := 0; i+shift < n; i++ {
		result.Chikou[i] = closes[i+shift]
	}

	return result, nil
}

// CloudTop은 인덱스의 구름 상단을 반환합니다
func (r *IchimokuResult) CloudTop(i int) float64 {
	return math.Max(r.CloudA[i], r.CloudB[i])
}

// CloudBottom은 인덱스의 구름 하단을 반환합니다
func (r *IchimokuResult) CloudBottom(i int) float64 {
	return math.Min(r.CloudA[i], r.CloudB[i])
}
