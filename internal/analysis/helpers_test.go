package analysis

import (
	"time"

	"github.com/assist-by/compass/internal/indicator"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// closeSeries는 종가 배열로 테스트용 일봉 시계열을 생성합니다 (고가/저가는 종가 ±0.5)
func closeSeries(closes []float64) []indicator.PriceData {
	prices := make([]indicator.PriceData, len(closes))
	for i, c := range closes {
		prices[i] = indicator.PriceData{
			Time:   baseTime.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}
	return prices
}

// barSeries는 고가/저가 배열로 테스트용 시계열을 생성합니다 (종가는 중간값)
func barSeries(highs, lows []float64) []indicator.PriceData {
	prices := make([]indicator.PriceData, len(highs))
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		prices[i] = indicator.PriceData{
			Time:   baseTime.AddDate(0, 0, i),
			Open:   mid,
			High:   highs[i],
			Low:    lows[i],
			Close:  mid,
			Volume: 1000,
		}
	}
	return prices
}

func risingCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// appendLinear는 마지막 값에서 to까지 n캔들에 걸쳐 선형으로 이어지는 종가를 추가합니다
func appendLinear(closes []float64, to float64, n int) []float64 {
	from := closes[len(closes)-1]
	for i := 1; i <= n; i++ {
		closes = append(closes, from+(to-from)*float64(i)/float64(n))
	}
	return closes
}

// divergenceCloses는 급락 저점(27) 이후 완만한 하락으로 더 낮은 저점(45)을 만드는 51개 종가입니다.
// 두 번째 저점의 RSI가 첫 번째보다 높습니다.
func divergenceCloses() []float64 {
	closes := risingCloses(21, 100, 0.5)
	closes = appendLinear(closes, 80, 7)
	closes = appendLinear(closes, 92, 6)
	closes = appendLinear(closes, 78, 12)
	return appendLinear(closes, 85, 5)
}

// zigzagBars는 4캔들 주기로 진동하며 캔들당 trend만큼 이동하는 시계열입니다.
// 상단 프랙탈은 2, 6, 10, ... 하단 프랙탈은 4, 8, 12, ... 에 생깁니다.
func zigzagBars(n int, trend float64) []indicator.PriceData {
	wave := [...]float64{0, 3, 6, 3}
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := range highs {
		highs[i] = 10 + trend*float64(i) + wave[i%4]
		lows[i] = highs[i] - 2
	}
	return barSeries(highs, lows)
}
