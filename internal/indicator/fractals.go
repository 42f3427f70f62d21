package indicator

import "fmt"

// FractalOption은 윌리엄스 프랙탈 계산 옵션을 정의합니다
type FractalOption struct {
	Period int // 중심 캔들 좌우로 비교할 캔들 수 (기본값: 2, 5캔들 패턴)
}

// ValidateFractalOption은 프랙탈 옵션을 검증합니다
func ValidateFractalOption(opt FractalOption) error {
	if opt.Period < 1 {
		return &ValidationError{Field: "Period", Err: fmt.Errorf("기간은 1 이상이어야 합니다: %d", opt.Period)}
	}
	return nil
}

// MinLength는 프랙탈 후보가 하나라도 존재하기 위한 최소 길이입니다
func (opt FractalOption) MinLength() int {
	return 2*opt.Period + 1
}

// FractalResult는 프랙탈 계산 결과입니다.
// Up[i]는 상단 프랙탈(저항)의 고가, Down[i]는 하단 프랙탈(지지)의 저가이며 나머지는 NaN입니다.
type FractalResult struct {
	Up   []float64
	Down []float64
}

// Fractals는 윌리엄스 프랙탈을 계산합니다.
// 마지막 Period개 캔들은 오른쪽 확인 캔들이 없으므로 후보에서 제외됩니다.
func Fractals(prices []PriceData, opt FractalOption) (*FractalResult, error) {
	if err := ValidateFractalOption(opt); err != nil {
		return nil, err
	}
	if err := ValidateSeries(prices); err != nil {
		return nil, err
	}
	if err := requireLength("Fractals", prices, opt.MinLength()); err != nil {
		return nil, err
	}

	high, low := Highs(prices), Lows(prices)
	n := len(prices)
	result := &FractalResult{
		Up:   undefinedSeries(n),
		Down: undefinedSeries(n),
	}

	for _, i := range PivotHighs(high, opt.Period, 0, n) {
		result.Up[i] = high[i]
	}
	for _, i := range PivotLows(low, opt.Period, 0, n) {
		result.Down[i] = low[i]
	}

	return result, nil
}

// UpIndices는 상단 프랙탈 인덱스를 오래된 순으로 반환합니다
func (r *FractalResult) UpIndices() []int {
	return definedIndices(r.Up)
}

// DownIndices는 하단 프랙탈 인덱스를 오래된 순으로 반환합니다
func (r *FractalResult) DownIndices() []int {
	return definedIndices(r.Down)
}

func definedIndices(values []float64) []int {
	var out []int
	for i, v := range values {
		if IsDefined(v) {
			out = append(out, i)
		}
	}
	return out
}
