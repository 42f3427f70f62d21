package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/assist-by/compass/internal/indicator"
)

// Analyzer는 지표 분석기의 인터페이스를 정의합니다
type Analyzer interface {
	// GetName은 분석기의 이름을 반환합니다
	GetName() string

	// GetDescription은 분석기의 설명을 반환합니다
	GetDescription() string

	// GetConfig는 분석기의 현재 설정을 반환합니다
	GetConfig() map[string]interface{}

	// MinLength는 분석에 필요한 최소 캔들 수를 반환합니다
	MinLength() int

	// Analyze는 가격 시계열의 최신 캔들을 분석하여 리포트를 생성합니다
	Analyze(prices []indicator.PriceData, opts ...Option) (*Report, error)
}

// BaseAnalyzer는 모든 분석기 구현체에서 공통적으로 사용할 수 있는 기본 구현을 제공합니다
type BaseAnalyzer struct {
	Name        string
	Description string
	Config      map[string]interface{}
}

// GetName은 분석기의 이름을 반환합니다
func (b *BaseAnalyzer) GetName() string {
	return b.Name
}

// GetDescription은 분석기의 설명을 반환합니다
func (b *BaseAnalyzer) GetDescription() string {
	return b.Description
}

// GetConfig는 분석기의 현재 설정을 반환합니다
func (b *BaseAnalyzer) GetConfig() map[string]interface{} {
	// 설정의 복사본 반환
	configCopy := make(map[string]interface{}, len(b.Config))
	for k, v := range b.Config {
		configCopy[k] = v
	}
	return configCopy
}

// Option은 분석 실행 옵션입니다
type Option func(*options)

type options struct {
	price    float64
	hasPrice bool
}

// WithPrice는 분류에 사용할 현재가를 지정합니다.
// 지정하지 않으면 마지막 캔들의 종가를 사용합니다.
func WithPrice(price float64) Option {
	return func(o *options) {
		o.price = price
		o.hasPrice = true
	}
}

// currentPrice는 옵션을 적용해 분류 기준 가격을 결정합니다
func currentPrice(prices []indicator.PriceData, opts []Option) (float64, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasPrice {
		return prices[len(prices)-1].Close, nil
	}
	if !indicator.IsDefined(o.price) || o.price <= 0 {
		return 0, &indicator.ValidationError{Field: "price", Err: fmt.Errorf("현재가는 양의 유한한 값이어야 합니다: %v", o.price)}
	}
	return o.price, nil
}

// rule은 하나의 분류 규칙입니다. eval이 UndefinedValueError를 반환하면
// fallback 라벨과 "insufficient data" 근거로 대체됩니다.
type rule[S any] struct {
	name     string
	fallback Label
	eval     func(s S) (Label, string, error)
}

// evaluate는 규칙을 순서대로 적용합니다
func evaluate[S any](s S, rules []rule[S]) ([]Classification, error) {
	out := make([]Classification, 0, len(rules))
	for _, r := range rules {
		label, evidence, err := r.eval(s)
		if err != nil {
			var undefined *indicator.UndefinedValueError
			if !errors.As(err, &undefined) {
				return nil, fmt.Errorf("%s 규칙 평가 실패: %w", r.name, err)
			}
			label = r.fallback
			evidence = fmt.Sprintf("insufficient data: %s undefined", undefined.Name)
		}
		out = append(out, Classification{Rule: r.name, Label: label, Evidence: evidence})
	}
	return out, nil
}

// compare는 a와 b의 대소에 따라 세 라벨 중 하나를 고릅니다
func compare(a, b float64, greater, less, equal Label) Label {
	switch {
	case a > b:
		return greater
	case a < b:
		return less
	default:
		return equal
	}
}

// lastValue는 시계열 마지막 값을 반환합니다. 미정의 값도 그대로 반환합니다.
func lastValue(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// pctFromPrice는 level에서 price까지의 거리를 price 대비 백분율로 반환합니다
func pctFromPrice(price, level float64) float64 {
	return (price - level) / price * 100
}

func newReport(name string, prices []indicator.PriceData, price float64) *Report {
	return &Report{
		Indicator: name,
		Time:      prices[len(prices)-1].Time,
		Price:     price,
		Values:    make(map[string]float64),
		Series:    make(map[string][]float64),
	}
}
