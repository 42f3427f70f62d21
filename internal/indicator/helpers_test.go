package indicator

import (
	"math"
	"time"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// closeSeries는 종가 배열로 테스트용 일봉 시계열을 생성합니다 (고가/저가는 종가 ±0.5)
func closeSeries(closes []float64) []PriceData {
	prices := make([]PriceData, len(closes))
	for i, c := range closes {
		prices[i] = PriceData{
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
func barSeries(highs, lows []float64) []PriceData {
	prices := make([]PriceData, len(highs))
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		prices[i] = PriceData{
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

// risingCloses는 start부터 step씩 증가하는 종가 배열을 생성합니다
func risingCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func countDefined(values []float64) int {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
