package analysis

import (
	"fmt"

	"github.com/assist-by/compass/internal/indicator"
)

// RSIParams는 RSI 분석 파라미터입니다
type RSIParams struct {
	indicator.RSIOption
	Overbought   float64          // 과매수 기준 (기본값: 70)
	Oversold     float64          // 과매도 기준 (기본값: 30)
	Midline      float64          // 중심선 (기본값: 50)
	SignalType   indicator.MAType // 시그널 라인 이동평균 종류 (기본값: SMA)
	SignalPeriod int              // 시그널 라인 기간 (기본값: 14)
	SlopeLength  int              // 모멘텀 기울기 비교 캔들 수 (기본값: 5)
	Divergence   indicator.DivergenceOption
}

// DefaultRSIParams는 기본 RSI 파라미터를 반환합니다
func DefaultRSIParams() RSIParams {
	return RSIParams{
		RSIOption:    indicator.RSIOption{Period: 14},
		Overbought:   70,
		Oversold:     30,
		Midline:      50,
		SignalType:   indicator.MATypeSMA,
		SignalPeriod: 14,
		SlopeLength:  5,
		Divergence:   indicator.DefaultDivergenceOption(),
	}
}

// ValidateRSIParams는 RSI 분석 파라미터를 검증합니다
func ValidateRSIParams(p RSIParams) error {
	if err := indicator.ValidateRSIOption(p.RSIOption); err != nil {
		return err
	}
	if err := indicator.ValidateDivergenceOption(p.Divergence); err != nil {
		return err
	}
	if !(0 <= p.Oversold && p.Oversold < p.Midline && p.Midline < p.Overbought && p.Overbought <= 100) {
		return &indicator.ValidationError{
			Field: "Thresholds",
			Err:   fmt.Errorf("0 <= 과매도 < 중심선 < 과매수 <= 100 이어야 합니다: %.2f/%.2f/%.2f", p.Oversold, p.Midline, p.Overbought),
		}
	}
	switch p.SignalType {
	case indicator.MATypeSMA, indicator.MATypeEMA, indicator.MATypeNone:
	default:
		return &indicator.ValidationError{Field: "SignalType", Err: fmt.Errorf("지원하지 않는 이동평균 종류: %q", p.SignalType)}
	}
	if p.SignalPeriod < 1 {
		return &indicator.ValidationError{Field: "SignalPeriod", Err: fmt.Errorf("1 이상이어야 합니다: %d", p.SignalPeriod)}
	}
	if p.SlopeLength < 2 {
		return &indicator.ValidationError{Field: "SlopeLength", Err: fmt.Errorf("2 이상이어야 합니다: %d", p.SlopeLength)}
	}
	return nil
}

// RSIAnalyzer는 RSI 및 다이버전스 분석기입니다
type RSIAnalyzer struct {
	BaseAnalyzer
	params RSIParams
}

// NewRSIAnalyzer는 새로운 RSI 분석기를 생성합니다
func NewRSIAnalyzer(params RSIParams) (*RSIAnalyzer, error) {
	if err := ValidateRSIParams(params); err != nil {
		return nil, err
	}

	return &RSIAnalyzer{
		BaseAnalyzer: BaseAnalyzer{
			Name:        "rsi",
			Description: "RSI: 과매수/과매도, 모멘텀, 중심선, 시그널 라인, 다이버전스",
			Config: map[string]interface{}{
				"period":             params.Period,
				"overbought":         params.Overbought,
				"oversold":           params.Oversold,
				"midline":            params.Midline,
				"signalType":         string(params.SignalType),
				"signalPeriod":       params.SignalPeriod,
				"slopeLength":        params.SlopeLength,
				"divergenceLookback": params.Divergence.Lookback,
				"swingStrength":      params.Divergence.SwingStrength,
			},
		},
		params: params,
	}, nil
}

// MinLength는 분석에 필요한 최소 캔들 수를 반환합니다
func (a *RSIAnalyzer) MinLength() int {
	return a.params.MinLength()
}

type rsiState struct {
	params     RSIParams
	rsi        []float64
	signal     []float64
	divergence indicator.Divergence
	last       int
}

// Analyze는 최신 캔들의 RSI 상태를 분류합니다
func (a *RSIAnalyzer) Analyze(prices []indicator.PriceData, opts ...Option) (*Report, error) {
	res, err := indicator.RSI(prices, a.params.RSIOption)
	if err != nil {
		return nil, err
	}
	price, err := currentPrice(prices, opts)
	if err != nil {
		return nil, err
	}

	signal := indicator.MovingAverage(res.Value, a.params.SignalPeriod, a.params.SignalType)
	div, err := indicator.DetectDivergence(indicator.Closes(prices), res.Value, a.params.Divergence)
	if err != nil {
		return nil, err
	}

	last := len(prices) - 1
	s := rsiState{params: a.params, rsi: res.Value, signal: signal, divergence: div, last: last}

	report := newReport(a.Name, prices, price)
	report.Values["rsi"] = res.Value[last]
	report.Values["signal"] = signal[last]
	report.Values["avg_gain"] = res.AvgGain[last]
	report.Values["avg_loss"] = res.AvgLoss[last]
	report.Values["overbought"] = a.params.Overbought
	report.Values["midline"] = a.params.Midline
	report.Values["oversold"] = a.params.Oversold
	report.Series["rsi"] = res.Value
	report.Series["signal"] = signal

	report.Classifications, err = evaluate(s, rsiRules)
	if err != nil {
		return nil, err
	}
	return report, nil
}

var rsiRules = []rule[rsiState]{
	{name: "condition", fallback: Normal, eval: rsiCondition},
	{name: "momentum", fallback: Flat, eval: rsiMomentum},
	{name: "midline", fallback: Neutral, eval: rsiMidline},
	{name: "signal_line", fallback: Neutral, eval: rsiSignalLine},
	{name: "divergence", fallback: None, eval: rsiDivergence},
}

func rsiCondition(s rsiState) (Label, string, error) {
	v, err := indicator.ValueAt("rsi", s.rsi, s.last)
	if err != nil {
		return "", "", err
	}

	switch {
	case v >= s.params.Overbought:
		return Overbought, fmt.Sprintf("RSI %.2f >= %.0f", v, s.params.Overbought), nil
	case v <= s.params.Oversold:
		return Oversold, fmt.Sprintf("RSI %.2f <= %.0f", v, s.params.Oversold), nil
	default:
		return Normal, fmt.Sprintf("RSI %.2f between %.0f-%.0f", v, s.params.Oversold, s.params.Overbought), nil
	}
}

func rsiMomentum(s rsiState) (Label, string, error) {
	back := s.last - (s.params.SlopeLength - 1)
	now, err := indicator.ValueAt("rsi", s.rsi, s.last)
	if err != nil {
		return "", "", err
	}
	prev, err := indicator.ValueAt("rsi", s.rsi, back)
	if err != nil {
		return "", "", err
	}

	label := compare(now, prev, Rising, Falling, Flat)
	return label, fmt.Sprintf("RSI %.2f -> %.2f over %d bars", prev, now, s.params.SlopeLength), nil
}

func rsiMidline(s rsiState) (Label, string, error) {
	v, err := indicator.ValueAt("rsi", s.rsi, s.last)
	if err != nil {
		return "", "", err
	}

	label := compare(v, s.params.Midline, Bullish, Bearish, Neutral)
	return label, fmt.Sprintf("RSI %.2f %s midline %.0f", v, relation(v, s.params.Midline), s.params.Midline), nil
}

func rsiSignalLine(s rsiState) (Label, string, error) {
	v, err := indicator.ValueAt("rsi", s.rsi, s.last)
	if err != nil {
		return "", "", err
	}
	sig, err := indicator.ValueAt("rsi signal line", s.signal, s.last)
	if err != nil {
		return "", "", err
	}

	label := compare(v, sig, Bullish, Bearish, Neutral)
	return label, fmt.Sprintf("RSI %.2f %s %s(%d) %.2f", v, relation(v, sig), s.params.SignalType, s.params.SignalPeriod, sig), nil
}

func rsiDivergence(s rsiState) (Label, string, error) {
	d := s.divergence
	switch d.Type {
	case indicator.BullishDivergence:
		return BullishDivergence, fmt.Sprintf("price low $%.2f -> $%.2f, RSI low %.2f -> %.2f", d.PrevPrice, d.LastPrice, d.PrevOsc, d.LastOsc), nil
	case indicator.BearishDivergence:
		return BearishDivergence, fmt.Sprintf("price high $%.2f -> $%.2f, RSI high %.2f -> %.2f", d.PrevPrice, d.LastPrice, d.PrevOsc, d.LastOsc), nil
	default:
		return None, fmt.Sprintf("no qualifying swing pair in last %d bars", s.params.Divergence.Lookback), nil
	}
}
