package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/assist-by/compass/internal/indicator"
)

// FractalsParams는 윌리엄스 프랙탈 분석 파라미터입니다
type FractalsParams struct {
	indicator.FractalOption
	RecentCount    int     // 추세 판단에 사용할 최근 프랙탈 수 (기본값: 5)
	SequenceLength int     // 우세 판단에 사용할 최근 프랙탈 수 (기본값: 10)
	ProximityPct   float64 // 지지/저항 근접 판단 거리 % (기본값: 2)
}

// DefaultFractalsParams는 기본 프랙탈 파라미터를 반환합니다
func DefaultFractalsParams() FractalsParams {
	return FractalsParams{
		FractalOption:  indicator.FractalOption{Period: 2},
		RecentCount:    5,
		SequenceLength: 10,
		ProximityPct:   2,
	}
}

// ValidateFractalsParams는 프랙탈 분석 파라미터를 검증합니다
func ValidateFractalsParams(p FractalsParams) error {
	if err := indicator.ValidateFractalOption(p.FractalOption); err != nil {
		return err
	}
	if p.RecentCount < 2 {
		return &indicator.ValidationError{Field: "RecentCount", Err: fmt.Errorf("2 이상이어야 합니다: %d", p.RecentCount)}
	}
	if p.SequenceLength < 1 {
		return &indicator.ValidationError{Field: "SequenceLength", Err: fmt.Errorf("1 이상이어야 합니다: %d", p.SequenceLength)}
	}
	if !indicator.IsDefined(p.ProximityPct) || p.ProximityPct < 0 {
		return &indicator.ValidationError{Field: "ProximityPct", Err: fmt.Errorf("0 이상이어야 합니다: %v", p.ProximityPct)}
	}
	return nil
}

// FractalsAnalyzer는 윌리엄스 프랙탈 분석기입니다
type FractalsAnalyzer struct {
	BaseAnalyzer
	params FractalsParams
}

// NewFractalsAnalyzer는 새로운 프랙탈 분석기를 생성합니다
func NewFractalsAnalyzer(params FractalsParams) (*FractalsAnalyzer, error) {
	if err := ValidateFractalsParams(params); err != nil {
		return nil, err
	}

	return &FractalsAnalyzer{
		BaseAnalyzer: BaseAnalyzer{
			Name:        "fractals",
			Description: "윌리엄스 프랙탈: 지지/저항 돌파, 프랙탈 추세, 근접도, 우세",
			Config: map[string]interface{}{
				"period":         params.Period,
				"recentCount":    params.RecentCount,
				"sequenceLength": params.SequenceLength,
				"proximityPct":   params.ProximityPct,
			},
		},
		params: params,
	}, nil
}

// MinLength는 분석에 필요한 최소 캔들 수를 반환합니다
func (a *FractalsAnalyzer) MinLength() int {
	return a.params.MinLength()
}

type fractalsState struct {
	params FractalsParams
	res    *indicator.FractalResult
	up     []int
	down   []int
	price  float64
}

// Analyze는 최신 캔들 기준 프랙탈 지지/저항 상태를 분류합니다
func (a *FractalsAnalyzer) Analyze(prices []indicator.PriceData, opts ...Option) (*Report, error) {
	res, err := indicator.Fractals(prices, a.params.FractalOption)
	if err != nil {
		return nil, err
	}
	price, err := currentPrice(prices, opts)
	if err != nil {
		return nil, err
	}

	s := fractalsState{params: a.params, res: res, up: res.UpIndices(), down: res.DownIndices(), price: price}

	report := newReport(a.Name, prices, price)
	report.Values["resistance"] = s.lastLevel(s.up, res.Up)
	report.Values["support"] = s.lastLevel(s.down, res.Down)
	report.Values["up_count"] = float64(len(s.up))
	report.Values["down_count"] = float64(len(s.down))
	report.Values["distance_to_resistance_pct"] = -pctFromPrice(price, report.Values["resistance"])
	report.Values["distance_to_support_pct"] = pctFromPrice(price, report.Values["support"])
	report.Series["up"] = res.Up
	report.Series["down"] = res.Down

	report.Classifications, err = evaluate(s, fractalsRules)
	if err != nil {
		return nil, err
	}
	return report, nil
}

var fractalsRules = []rule[fractalsState]{
	{name: "position", fallback: Neutral, eval: fractalPosition},
	{name: "trend", fallback: Sideways, eval: fractalTrend},
	{name: "proximity", fallback: Neutral, eval: fractalProximity},
	{name: "dominance", fallback: Balanced, eval: fractalDominance},
}

func (s fractalsState) lastLevel(indices []int, values []float64) float64 {
	if len(indices) == 0 {
		return math.NaN()
	}
	return values[indices[len(indices)-1]]
}

// levels는 가장 최근 저항(상단 프랙탈)과 지지(하단 프랙탈)를 반환합니다
func (s fractalsState) levels() (resistance, support float64, err error) {
	if len(s.up) == 0 {
		return 0, 0, &indicator.UndefinedValueError{Name: "resistance fractal", Index: -1}
	}
	if len(s.down) == 0 {
		return 0, 0, &indicator.UndefinedValueError{Name: "support fractal", Index: -1}
	}
	return s.lastLevel(s.up, s.res.Up), s.lastLevel(s.down, s.res.Down), nil
}

func fractalPosition(s fractalsState) (Label, string, error) {
	resistance, support, err := s.levels()
	if err != nil {
		return "", "", err
	}

	switch {
	case s.price > resistance:
		return Breakout, fmt.Sprintf("price $%.2f > resistance $%.2f", s.price, resistance), nil
	case s.price < support:
		return Breakdown, fmt.Sprintf("price $%.2f < support $%.2f", s.price, support), nil
	default:
		return Range, fmt.Sprintf("price $%.2f between support $%.2f and resistance $%.2f", s.price, support, resistance), nil
	}
}

// fractalTrend는 최근 RecentCount개 프랙탈의 처음과 끝을 비교합니다.
// 고점/저점 프랙탈이 각각 2개 미만이면 SIDEWAYS 입니다.
func fractalTrend(s fractalsState) (Label, string, error) {
	ups := recentValues(s.up, s.res.Up, s.params.RecentCount)
	downs := recentValues(s.down, s.res.Down, s.params.RecentCount)
	if len(ups) < 2 || len(downs) < 2 {
		return Sideways, fmt.Sprintf("not enough fractals: %d up, %d down", len(ups), len(downs)), nil
	}

	highs := compare(ups[len(ups)-1], ups[0], Rising, Falling, Flat)
	lows := compare(downs[len(downs)-1], downs[0], Rising, Falling, Flat)
	evidence := fmt.Sprintf("fractal highs $%.2f -> $%.2f, lows $%.2f -> $%.2f", ups[0], ups[len(ups)-1], downs[0], downs[len(downs)-1])

	switch {
	case highs == Rising && lows == Rising:
		return Uptrend, evidence, nil
	case highs == Falling && lows == Falling:
		return Downtrend, evidence, nil
	default:
		return Sideways, evidence, nil
	}
}

func fractalProximity(s fractalsState) (Label, string, error) {
	resistance, support, err := s.levels()
	if err != nil {
		return "", "", err
	}

	toResistance := math.Abs(resistance-s.price) / s.price * 100
	toSupport := math.Abs(s.price-support) / s.price * 100
	evidence := fmt.Sprintf("%.2f%% to resistance $%.2f, %.2f%% to support $%.2f", toResistance, resistance, toSupport, support)

	switch {
	case toSupport <= s.params.ProximityPct && toSupport <= toResistance:
		return NearSupport, evidence, nil
	case toResistance <= s.params.ProximityPct:
		return NearResistance, evidence, nil
	default:
		return Neutral, evidence, nil
	}
}

// fractalDominance는 최근 SequenceLength개 프랙탈 중 상단/하단 개수를 비교합니다.
// 같은 캔들이 양쪽 프랙탈이면 상단으로 셉니다.
func fractalDominance(s fractalsState) (Label, string, error) {
	var seq []string
	upCount, downCount := 0, 0
	for i := len(s.res.Up) - 1; i >= 0 && len(seq) < s.params.SequenceLength; i-- {
		switch {
		case indicator.IsDefined(s.res.Up[i]):
			seq = append(seq, "up")
			upCount++
		case indicator.IsDefined(s.res.Down[i]):
			seq = append(seq, "down")
			downCount++
		}
	}

	evidence := fmt.Sprintf("last %d fractals (newest first): %s", len(seq), strings.Join(seq, ", "))
	if len(seq) == 0 {
		evidence = "no confirmed fractals"
	}
	return compare(float64(upCount), float64(downCount), UpDominant, DownDominant, Balanced), evidence, nil
}

func recentValues(indices []int, values []float64, n int) []float64 {
	if len(indices) > n {
		indices = indices[len(indices)-n:]
	}
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = values[idx]
	}
	return out
}
