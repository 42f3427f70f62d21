package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trendingBars는 고가 i+10, 저가 i 인 상승 시계열을 생성합니다
func trendingBars(n int) []PriceData {
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = float64(i) + 10
		lows[i] = float64(i)
	}
	return barSeries(highs, lows)
}

func TestIchimoku_Lines(t *testing.T) {
	prices := trendingBars(80)

	res, err := Ichimoku(prices, DefaultIchimokuOption())
	require.NoError(t, err)

	// 전환선: (i+10 + i-8) / 2 = i+1
	assert.True(t, math.IsNaN(res.Tenkan[7]))
	assert.InDelta(t, 9.0, res.Tenkan[8], 1e-12)
	assert.InDelta(t, 80.0, res.Tenkan[79], 1e-12)

	// 기준선: (i+10 + i-25) / 2 = i-7.5
	assert.True(t, math.IsNaN(res.Kijun[24]))
	assert.InDelta(t, 71.5, res.Kijun[79], 1e-12)

	// 선행스팬: A = i-3.25, B = i-20.5
	assert.InDelta(t, 75.75, res.SenkouA[79], 1e-12)
	assert.True(t, math.IsNaN(res.SenkouB[50]))
	assert.InDelta(t, 58.5, res.SenkouB[79], 1e-12)
}

func TestIchimoku_CloudIsProjectedFromThePast(t *testing.T) {
	prices := trendingBars(80)
	opt := DefaultIchimokuOption()

	res, err := Ichimoku(prices, opt)
	require.NoError(t, err)
	require.Equal(t, 25, res.Shift)

	// 마지막 캔들 아래 구름은 25캔들 전(인덱스 54)에 계산된 값
	assert.InDelta(t, res.SenkouA[54], res.CloudA[79], 1e-12)
	assert.InDelta(t, res.SenkouB[54], res.CloudB[79], 1e-12)
	assert.InDelta(t, 50.75, res.CloudTop(79), 1e-12)
	assert.InDelta(t, 33.5, res.CloudBottom(79), 1e-12)

	// 선행스팬 B는 인덱스 51부터 정의되므로 구름 B는 51+25=76부터 정의
	assert.True(t, math.IsNaN(res.CloudB[75]))
	assert.False(t, math.IsNaN(res.CloudB[76]))
	assert.Equal(t, 77, opt.CloudLength())
}

func TestIchimoku_Chikou(t *testing.T) {
	prices := trendingBars(80)

	res, err := Ichimoku(prices, DefaultIchimokuOption())
	require.NoError(t, err)

	assert.Equal(t, prices[79].Close, res.Chikou[54])
	assert.True(t, math.IsNaN(res.Chikou[55]))
}

func TestIchimoku_CloudUndefinedOnShortSeries(t *testing.T) {
	prices := trendingBars(60)

	res, err := Ichimoku(prices, DefaultIchimokuOption())
	require.NoError(t, err)

	assert.True(t, math.IsNaN(res.CloudB[59]))
	assert.False(t, math.IsNaN(res.Tenkan[59]))
}

func TestIchimoku_InsufficientData(t *testing.T) {
	_, err := Ichimoku(trendingBars(51), DefaultIchimokuOption())

	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 52, insufficient.Required)
	assert.Equal(t, 51, insufficient.Actual)
}

func TestIchimoku_InvalidOption(t *testing.T) {
	opt := DefaultIchimokuOption()
	opt.Displacement = 0

	_, err := Ichimoku(trendingBars(80), opt)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Displacement", vErr.Field)
}
