package analysis

import (
	"fmt"

	"github.com/assist-by/compass/internal/indicator"
)

// MACrossParams는 이동평균 교차 분석 파라미터입니다
type MACrossParams struct {
	indicator.MACrossOption
	CrossLookback int // 최근 교차를 찾을 캔들 수 (기본값: 10)
}

// DefaultMACrossParams는 기본 이동평균 교차 파라미터를 반환합니다
func DefaultMACrossParams() MACrossParams {
	return MACrossParams{
		MACrossOption: indicator.DefaultMACrossOption(),
		CrossLookback: 10,
	}
}

// 시장 구조 가중치: 단기 쌍, 장기 쌍, 장기 느린 선 대비 가격
const (
	shortPairWeight = 0.3
	longPairWeight  = 0.3
	priceWeight     = 0.4
)

// MACrossAnalyzer는 이동평균 교차 분석기입니다
type MACrossAnalyzer struct {
	BaseAnalyzer
	params MACrossParams
}

// NewMACrossAnalyzer는 새로운 이동평균 교차 분석기를 생성합니다
func NewMACrossAnalyzer(params MACrossParams) (*MACrossAnalyzer, error) {
	if err := indicator.ValidateMACrossOption(params.MACrossOption); err != nil {
		return nil, err
	}
	if params.CrossLookback < 1 {
		return nil, &indicator.ValidationError{Field: "CrossLookback", Err: fmt.Errorf("1 이상이어야 합니다: %d", params.CrossLookback)}
	}

	return &MACrossAnalyzer{
		BaseAnalyzer: BaseAnalyzer{
			Name:        "ma_cross",
			Description: "이동평균 교차: 골든/데드 크로스, 가격 위치, 시장 구조",
			Config: map[string]interface{}{
				"shortFast":     params.Short.Fast,
				"shortSlow":     params.Short.Slow,
				"longFast":      params.Long.Fast,
				"longSlow":      params.Long.Slow,
				"maType":        string(params.Type),
				"crossLookback": params.CrossLookback,
			},
		},
		params: params,
	}, nil
}

// MinLength는 분석에 필요한 최소 캔들 수를 반환합니다
func (a *MACrossAnalyzer) MinLength() int {
	return a.params.MinLength()
}

type pairState struct {
	res      *indicator.PairResult
	maType   indicator.MAType
	price    float64
	last     int
	lookback int
}

type maCrossState struct {
	short pairState
	long  pairState
	price float64
	last  int
}

// Analyze는 최신 캔들의 이동평균 교차 상태를 분류합니다
func (a *MACrossAnalyzer) Analyze(prices []indicator.PriceData, opts ...Option) (*Report, error) {
	res, err := indicator.MACross(prices, a.params.MACrossOption)
	if err != nil {
		return nil, err
	}
	price, err := currentPrice(prices, opts)
	if err != nil {
		return nil, err
	}

	last := len(prices) - 1
	pair := func(p *indicator.PairResult) pairState {
		return pairState{res: p, maType: res.Type, price: price, last: last, lookback: a.params.CrossLookback}
	}
	s := maCrossState{short: pair(&res.Short), long: pair(&res.Long), price: price, last: last}

	report := newReport(a.Name, prices, price)
	for prefix, p := range map[string]*indicator.PairResult{"short": &res.Short, "long": &res.Long} {
		fast, slow := p.Fast[last], p.Slow[last]
		report.Values[prefix+"_fast"] = fast
		report.Values[prefix+"_slow"] = slow
		report.Values[prefix+"_fast_distance_pct"] = pctFromPrice(price, fast)
		report.Values[prefix+"_slow_distance_pct"] = pctFromPrice(price, slow)
		report.Series[prefix+"_fast"] = p.Fast
		report.Series[prefix+"_slow"] = p.Slow
	}
	if score, err := biasScore(s); err == nil {
		report.Values["bias_score"] = score
	}

	rules := append(pairRules("short", s.short), pairRules("long", s.long)...)
	rules = append(rules,
		rule[maCrossState]{name: "market_structure", fallback: Weakening, eval: marketStructure},
		rule[maCrossState]{name: "bias", fallback: Neutral, eval: marketBias},
	)

	report.Classifications, err = evaluate(s, rules)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// pairRules는 이동평균 쌍 하나에 대한 규칙을 prefix를 붙여 생성합니다
func pairRules(prefix string, p pairState) []rule[maCrossState] {
	bind := func(eval func(pairState) (Label, string, error)) func(maCrossState) (Label, string, error) {
		return func(maCrossState) (Label, string, error) { return eval(p) }
	}
	return []rule[maCrossState]{
		{name: prefix + "_position", fallback: Neutral, eval: bind(pairPosition)},
		{name: prefix + "_cross", fallback: None, eval: bind(pairCross)},
		{name: prefix + "_price", fallback: Neutral, eval: bind(pairPrice)},
		{name: prefix + "_recent_cross", fallback: None, eval: bind(pairRecentCross)},
	}
}

func (p pairState) values() (fast, slow float64, err error) {
	if fast, err = indicator.ValueAt(p.name("fast"), p.res.Fast, p.last); err != nil {
		return 0, 0, err
	}
	if slow, err = indicator.ValueAt(p.name("slow"), p.res.Slow, p.last); err != nil {
		return 0, 0, err
	}
	return fast, slow, nil
}

func (p pairState) name(side string) string {
	if side == "fast" {
		return fmt.Sprintf("%s %d", p.maType, p.res.Pair.Fast)
	}
	return fmt.Sprintf("%s %d", p.maType, p.res.Pair.Slow)
}

func pairPosition(p pairState) (Label, string, error) {
	fast, slow, err := p.values()
	if err != nil {
		return "", "", err
	}

	label := compare(fast, slow, Above, Below, Equal)
	return label, fmt.Sprintf("%s $%.2f %s %s $%.2f", p.name("fast"), fast, relation(fast, slow), p.name("slow"), slow), nil
}

func pairCross(p pairState) (Label, string, error) {
	if _, _, err := p.values(); err != nil {
		return "", "", err
	}

	switch p.res.Crosses[p.last] {
	case indicator.GoldenCross:
		return GoldenCross, fmt.Sprintf("%s crossed above %s on the latest bar", p.name("fast"), p.name("slow")), nil
	case indicator.DeathCross:
		return DeathCross, fmt.Sprintf("%s crossed below %s on the latest bar", p.name("fast"), p.name("slow")), nil
	default:
		return None, "no cross on the latest bar", nil
	}
}

func pairPrice(p pairState) (Label, string, error) {
	fast, slow, err := p.values()
	if err != nil {
		return "", "", err
	}

	switch {
	case p.price > fast && p.price > slow:
		return AboveBoth, fmt.Sprintf("price $%.2f above %s and %s", p.price, p.name("fast"), p.name("slow")), nil
	case p.price < fast && p.price < slow:
		return BelowBoth, fmt.Sprintf("price $%.2f below %s and %s", p.price, p.name("fast"), p.name("slow")), nil
	default:
		return Between, fmt.Sprintf("price $%.2f between $%.2f and $%.2f", p.price, min(fast, slow), max(fast, slow)), nil
	}
}

func pairRecentCross(p pairState) (Label, string, error) {
	event, barsAgo := p.res.LastCross(p.lookback)
	switch event {
	case indicator.GoldenCross:
		return GoldenCross, fmt.Sprintf("golden cross %d bars ago", barsAgo), nil
	case indicator.DeathCross:
		return DeathCross, fmt.Sprintf("death cross %d bars ago", barsAgo), nil
	default:
		return None, fmt.Sprintf("no cross in last %d bars", p.lookback), nil
	}
}

func marketStructure(s maCrossState) (Label, string, error) {
	shortLabel, _, err := pairPosition(s.short)
	if err != nil {
		return "", "", err
	}
	longLabel, _, err := pairPosition(s.long)
	if err != nil {
		return "", "", err
	}

	evidence := fmt.Sprintf("short pair %s, long pair %s", shortLabel, longLabel)
	switch {
	case shortLabel == Above && longLabel == Above:
		return StrongUptrend, evidence, nil
	case shortLabel == Below && longLabel == Below:
		return StrongDowntrend, evidence, nil
	default:
		return Weakening, evidence, nil
	}
}

// biasScore는 단기 쌍, 장기 쌍, 장기 느린 선 대비 가격의 방향을 가중합한 점수입니다.
// 차이가 0이면 하락(-1)으로 봅니다.
func biasScore(s maCrossState) (float64, error) {
	shortFast, shortSlow, err := s.short.values()
	if err != nil {
		return 0, err
	}
	longFast, longSlow, err := s.long.values()
	if err != nil {
		return 0, err
	}

	direction := func(diff float64) float64 {
		if diff > 0 {
			return 1
		}
		return -1
	}
	return shortPairWeight*direction(shortFast-shortSlow) +
		longPairWeight*direction(longFast-longSlow) +
		priceWeight*direction(s.price-longSlow), nil
}

func marketBias(s maCrossState) (Label, string, error) {
	score, err := biasScore(s)
	if err != nil {
		return "", "", err
	}

	evidence := fmt.Sprintf("weighted score %.2f", score)
	switch {
	case score > 0.5:
		return StrongBullish, evidence, nil
	case score < -0.5:
		return StrongBearish, evidence, nil
	case score > 0:
		return BullishBias, evidence, nil
	default:
		return BearishBias, evidence, nil
	}
}
