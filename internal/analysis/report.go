// Package analysis는 지표 계산 결과를 최신 캔들 기준의 이산 라벨로 분류합니다.
// 각 지표는 독립적인 규칙 목록을 가지며, 규칙은 이미 계산된 시계열 위의 순수 함수입니다.
package analysis

import "time"

// Label은 분류 규칙이 내놓는 이산 상태입니다
type Label string

const (
	Bullish           Label = "BULLISH"
	Bearish           Label = "BEARISH"
	Neutral           Label = "NEUTRAL"
	BullishTwist      Label = "BULLISH_TWIST"
	BearishTwist      Label = "BEARISH_TWIST"
	Confirmed         Label = "CONFIRMED"
	Contradicted      Label = "CONTRADICTED"
	Overbought        Label = "OVERBOUGHT"
	Oversold          Label = "OVERSOLD"
	Normal            Label = "NORMAL"
	Rising            Label = "RISING"
	Falling           Label = "FALLING"
	Flat              Label = "FLAT"
	BullishDivergence Label = "BULLISH_DIVERGENCE"
	BearishDivergence Label = "BEARISH_DIVERGENCE"
	None              Label = "NONE"
	Breakout          Label = "BREAKOUT"
	Breakdown         Label = "BREAKDOWN"
	Range             Label = "RANGE"
	Uptrend           Label = "UPTREND"
	Downtrend         Label = "DOWNTREND"
	Sideways          Label = "SIDEWAYS"
	NearSupport       Label = "NEAR_SUPPORT"
	NearResistance    Label = "NEAR_RESISTANCE"
	UpDominant        Label = "UP_DOMINANT"
	DownDominant      Label = "DOWN_DOMINANT"
	Balanced          Label = "BALANCED"
	Above             Label = "ABOVE"
	Below             Label = "BELOW"
	Equal             Label = "EQUAL"
	GoldenCross       Label = "GOLDEN_CROSS"
	DeathCross        Label = "DEATH_CROSS"
	AboveBoth         Label = "ABOVE_BOTH"
	BelowBoth         Label = "BELOW_BOTH"
	Between           Label = "BETWEEN"
	StrongUptrend     Label = "STRONG_UPTREND"
	StrongDowntrend   Label = "STRONG_DOWNTREND"
	Weakening         Label = "WEAKENING"
	StrongBullish     Label = "STRONG_BULLISH"
	StrongBearish     Label = "STRONG_BEARISH"
	BullishBias       Label = "BULLISH_BIAS"
	BearishBias       Label = "BEARISH_BIAS"
)

// Tone은 라벨이 시장에 주는 방향성입니다. 출력 색상 결정에 사용됩니다.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

// String은 Tone의 문자열 표현을 반환합니다
func (t Tone) String() string {
	switch t {
	case TonePositive:
		return "positive"
	case ToneNegative:
		return "negative"
	default:
		return "neutral"
	}
}

// Tone은 라벨의 방향성을 반환합니다.
// 과매도/지지선 근접처럼 반등을 암시하는 상태는 긍정으로 봅니다.
func (l Label) Tone() Tone {
	switch l {
	case Bullish, BullishTwist, Confirmed, Oversold, Rising, BullishDivergence,
		Breakout, Uptrend, NearSupport, UpDominant, Above, GoldenCross, AboveBoth,
		StrongUptrend, StrongBullish, BullishBias:
		return TonePositive
	case Bearish, BearishTwist, Contradicted, Overbought, Falling, BearishDivergence,
		Breakdown, Downtrend, NearResistance, DownDominant, Below, DeathCross, BelowBoth,
		StrongDowntrend, StrongBearish, BearishBias:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// Classification은 규칙 하나의 분류 결과와 그 근거입니다
type Classification struct {
	Rule     string `json:"rule" yaml:"rule"`
	Label    Label  `json:"label" yaml:"label"`
	Evidence string `json:"evidence" yaml:"evidence"`
}

// Report는 지표 하나의 최신 캔들 분석 결과입니다.
// Values의 미정의 값은 math.NaN()이며, Series는 입력 시계열 인덱스에 정렬된 라인입니다.
type Report struct {
	Indicator       string               `json:"indicator" yaml:"indicator"`
	Time            time.Time            `json:"time" yaml:"time"`
	Price           float64              `json:"price" yaml:"price"`
	Values          map[string]float64   `json:"values" yaml:"values"`
	Series          map[string][]float64 `json:"-" yaml:"-"`
	Classifications []Classification     `json:"classifications" yaml:"classifications"`
}

// Find는 규칙 이름으로 분류 결과를 찾습니다
func (r *Report) Find(rule string) (Classification, bool) {
	for _, c := range r.Classifications {
		if c.Rule == rule {
			return c, true
		}
	}
	return Classification{}, false
}

// Label은 규칙의 라벨을 반환합니다. 규칙이 없으면 빈 라벨입니다.
func (r *Report) Label(rule string) Label {
	c, _ := r.Find(rule)
	return c.Label
}
