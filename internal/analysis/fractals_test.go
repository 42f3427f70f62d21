package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFractalsAnalyzer(t *testing.T) *FractalsAnalyzer {
	t.Helper()
	a, err := NewFractalsAnalyzer(DefaultFractalsParams())
	require.NoError(t, err)
	return a
}

func TestFractalsAnalyzer_Position(t *testing.T) {
	// 상단 프랙탈: 2(15), 6(13) / 하단 프랙탈: 4(10)
	prices := barSeries(
		[]float64{11, 12, 15, 12, 11, 12, 13, 12, 11},
		[]float64{10, 11, 14, 11, 10, 11, 12, 11, 10},
	)

	tests := []struct {
		name      string
		price     float64
		position  Label
		proximity Label
	}{
		{name: "저항 돌파", price: 13.2, position: Breakout, proximity: NearResistance},
		{name: "지지선 근접", price: 10.1, position: Range, proximity: NearSupport},
		{name: "범위 중앙", price: 11.5, position: Range, proximity: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newFractalsAnalyzer(t).Analyze(prices, WithPrice(tt.price))
			require.NoError(t, err)

			assert.Equal(t, tt.position, report.Label("position"))
			assert.Equal(t, tt.proximity, report.Label("proximity"))
			assert.Equal(t, 13.0, report.Values["resistance"])
			assert.Equal(t, 10.0, report.Values["support"])
		})
	}
}

func TestFractalsAnalyzer_Breakdown(t *testing.T) {
	// 하단 프랙탈 4(10)
	prices := barSeries(
		[]float64{20, 19, 25, 19, 18, 19, 21, 19, 18},
		[]float64{12, 11, 15, 11, 10, 11, 13, 11, 12},
	)

	report, err := newFractalsAnalyzer(t).Analyze(prices, WithPrice(9.9))
	require.NoError(t, err)

	assert.Equal(t, Breakdown, report.Label("position"))
	assert.Equal(t, NearSupport, report.Label("proximity"))
}

func TestFractalsAnalyzer_Trend(t *testing.T) {
	tests := []struct {
		name  string
		trend float64
		want  Label
	}{
		{name: "상승", trend: 0.5, want: Uptrend},
		{name: "하락", trend: -0.5, want: Downtrend},
		{name: "횡보", trend: 0, want: Sideways},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newFractalsAnalyzer(t).Analyze(zigzagBars(40, tt.trend))
			require.NoError(t, err)

			assert.Equal(t, tt.want, report.Label("trend"))
		})
	}
}

func TestFractalsAnalyzer_Dominance(t *testing.T) {
	// 상단 9개(2..34), 하단 9개(4..36): 최근 10개는 하단 5, 상단 5
	report, err := newFractalsAnalyzer(t).Analyze(zigzagBars(40, 0.5))
	require.NoError(t, err)

	c, ok := report.Find("dominance")
	require.True(t, ok)
	assert.Equal(t, Balanced, c.Label)
	assert.Equal(t, "last 10 fractals (newest first): down, up, down, up, down, up, down, up, down, up", c.Evidence)

	params := DefaultFractalsParams()
	params.SequenceLength = 3
	a, err := NewFractalsAnalyzer(params)
	require.NoError(t, err)

	report, err = a.Analyze(zigzagBars(40, 0.5))
	require.NoError(t, err)
	assert.Equal(t, DownDominant, report.Label("dominance"))
}

func TestFractalsAnalyzer_NoFractals(t *testing.T) {
	report, err := newFractalsAnalyzer(t).Analyze(closeSeries(risingCloses(50, 100, 1)))
	require.NoError(t, err)

	assert.Equal(t, Neutral, report.Label("position"))
	assert.Equal(t, Sideways, report.Label("trend"))
	assert.Equal(t, Neutral, report.Label("proximity"))
	c, _ := report.Find("dominance")
	assert.Equal(t, Balanced, c.Label)
	assert.Equal(t, "no confirmed fractals", c.Evidence)
}
