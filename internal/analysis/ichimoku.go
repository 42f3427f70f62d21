package analysis

import (
	"fmt"

	"github.com/assist-by/compass/internal/indicator"
)

// IchimokuParams는 일목균형표 분석 파라미터입니다
type IchimokuParams struct {
	indicator.IchimokuOption
	TwistLookback int // 구름 색 전환을 비교할 과거 캔들 수 (기본값: 5)
}

// DefaultIchimokuParams는 기본 일목균형표 파라미터를 반환합니다
func DefaultIchimokuParams() IchimokuParams {
	return IchimokuParams{
		IchimokuOption: indicator.DefaultIchimokuOption(),
		TwistLookback:  5,
	}
}

// IchimokuAnalyzer는 일목균형표 분석기입니다
type IchimokuAnalyzer struct {
	BaseAnalyzer
	params IchimokuParams
}

// NewIchimokuAnalyzer는 새로운 일목균형표 분석기를 생성합니다
func NewIchimokuAnalyzer(params IchimokuParams) (*IchimokuAnalyzer, error) {
	if err := indicator.ValidateIchimokuOption(params.IchimokuOption); err != nil {
		return nil, err
	}
	if params.TwistLookback < 1 {
		return nil, &indicator.ValidationError{Field: "TwistLookback", Err: fmt.Errorf("1 이상이어야 합니다: %d", params.TwistLookback)}
	}

	return &IchimokuAnalyzer{
		BaseAnalyzer: BaseAnalyzer{
			Name:        "ichimoku",
			Description: "일목균형표: 구름 대비 가격, 전환선/기준선, 구름 전환, 후행스팬",
			Config: map[string]interface{}{
				"tenkanPeriod":  params.TenkanPeriod,
				"kijunPeriod":   params.KijunPeriod,
				"senkouBPeriod": params.SenkouBPeriod,
				"displacement":  params.Displacement,
				"twistLookback": params.TwistLookback,
			},
		},
		params: params,
	}, nil
}

// MinLength는 분석에 필요한 최소 캔들 수를 반환합니다
func (a *IchimokuAnalyzer) MinLength() int {
	return a.params.MinLength()
}

type ichimokuState struct {
	res   *indicator.IchimokuResult
	close []float64
	price float64
	last  int
	twist int
}

// Analyze는 최신 캔들의 일목균형표 상태를 분류합니다
func (a *IchimokuAnalyzer) Analyze(prices []indicator.PriceData, opts ...Option) (*Report, error) {
	res, err := indicator.Ichimoku(prices, a.params.IchimokuOption)
	if err != nil {
		return nil, err
	}
	price, err := currentPrice(prices, opts)
	if err != nil {
		return nil, err
	}

	last := len(prices) - 1
	s := ichimokuState{res: res, close: indicator.Closes(prices), price: price, last: last, twist: a.params.TwistLookback}

	report := newReport(a.Name, prices, price)
	report.Values["tenkan"] = res.Tenkan[last]
	report.Values["kijun"] = res.Kijun[last]
	report.Values["cloud_a"] = res.CloudA[last]
	report.Values["cloud_b"] = res.CloudB[last]
	report.Values["future_span_a"] = res.SenkouA[last]
	report.Values["future_span_b"] = res.SenkouB[last]
	report.Series["tenkan"] = res.Tenkan
	report.Series["kijun"] = res.Kijun
	report.Series["senkou_a"] = res.SenkouA
	report.Series["senkou_b"] = res.SenkouB
	report.Series["cloud_a"] = res.CloudA
	report.Series["cloud_b"] = res.CloudB
	report.Series["chikou"] = res.Chikou

	report.Classifications, err = evaluate(s, ichimokuRules)
	if err != nil {
		return nil, err
	}
	return report, nil
}

var ichimokuRules = []rule[ichimokuState]{
	{name: "price_vs_cloud", fallback: Neutral, eval: priceVsCloud},
	{name: "tk_cross", fallback: Neutral, eval: tenkanVsKijun},
	{name: "cloud_twist", fallback: Neutral, eval: cloudTwist},
	{name: "future_cloud", fallback: Neutral, eval: futureCloud},
	{name: "chikou", fallback: Neutral, eval: chikouConfirmation},
}

func cloudAt(res *indicator.IchimokuResult, i int) (a, b float64, err error) {
	if a, err = indicator.ValueAt("cloud A", res.CloudA, i); err != nil {
		return 0, 0, err
	}
	if b, err = indicator.ValueAt("cloud B", res.CloudB, i); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func priceVsCloud(s ichimokuState) (Label, string, error) {
	if _, _, err := cloudAt(s.res, s.last); err != nil {
		return "", "", err
	}
	top, bottom := s.res.CloudTop(s.last), s.res.CloudBottom(s.last)

	switch {
	case s.price > top:
		return Bullish, fmt.Sprintf("price $%.2f > cloud top $%.2f", s.price, top), nil
	case s.price < bottom:
		return Bearish, fmt.Sprintf("price $%.2f < cloud bottom $%.2f", s.price, bottom), nil
	default:
		return Neutral, fmt.Sprintf("price $%.2f inside cloud $%.2f - $%.2f", s.price, bottom, top), nil
	}
}

func tenkanVsKijun(s ichimokuState) (Label, string, error) {
	tenkan, err := indicator.ValueAt("tenkan", s.res.Tenkan, s.last)
	if err != nil {
		return "", "", err
	}
	kijun, err := indicator.ValueAt("kijun", s.res.Kijun, s.last)
	if err != nil {
		return "", "", err
	}

	label := compare(tenkan, kijun, Bullish, Bearish, Neutral)
	return label, fmt.Sprintf("tenkan $%.2f %s kijun $%.2f", tenkan, relation(tenkan, kijun), kijun), nil
}

func cloudTwist(s ichimokuState) (Label, string, error) {
	nowA, nowB, err := cloudAt(s.res, s.last)
	if err != nil {
		return "", "", err
	}
	prevA, prevB, err := cloudAt(s.res, s.last-s.twist)
	if err != nil {
		return "", "", err
	}

	now := compare(nowA, nowB, Bullish, Bearish, Neutral)
	prev := compare(prevA, prevB, Bullish, Bearish, Neutral)
	evidence := fmt.Sprintf("span A - span B: %.2f now, %.2f %d bars ago", nowA-nowB, prevA-prevB, s.twist)

	switch {
	case now == Bullish && prev != Bullish:
		return BullishTwist, evidence, nil
	case now == Bearish && prev != Bearish:
		return BearishTwist, evidence, nil
	default:
		return now, evidence, nil
	}
}

func futureCloud(s ichimokuState) (Label, string, error) {
	a, err := indicator.ValueAt("future span A", s.res.SenkouA, s.last)
	if err != nil {
		return "", "", err
	}
	b, err := indicator.ValueAt("future span B", s.res.SenkouB, s.last)
	if err != nil {
		return "", "", err
	}

	label := compare(a, b, Bullish, Bearish, Neutral)
	return label, fmt.Sprintf("span A $%.2f %s span B $%.2f", a, relation(a, b), b), nil
}

// chikouConfirmation은 후행스팬(현재 종가)과 Shift 캔들 전 종가의 관계가
// 전환선/기준선 방향과 일치하는지 확인합니다
func chikouConfirmation(s ichimokuState) (Label, string, error) {
	back := s.last - s.res.Shift
	chikou, err := indicator.ValueAt("chikou", s.res.Chikou, back)
	if err != nil {
		return "", "", err
	}
	past := s.close[back]

	tk, _, err := tenkanVsKijun(s)
	if err != nil {
		return "", "", err
	}
	momentum := compare(chikou, past, Bullish, Bearish, Neutral)
	evidence := fmt.Sprintf("chikou $%.2f %s close $%.2f %d bars back, tk %s", chikou, relation(chikou, past), past, s.res.Shift, tk)

	switch {
	case momentum == Neutral || tk == Neutral:
		return Neutral, evidence, nil
	case momentum == tk:
		return Confirmed, evidence, nil
	default:
		return Contradicted, evidence, nil
	}
}

// relation은 근거 문자열용 비교 기호를 반환합니다
func relation(a, b float64) string {
	switch {
	case a > b:
		return ">"
	case a < b:
		return "<"
	default:
		return "="
	}
}
