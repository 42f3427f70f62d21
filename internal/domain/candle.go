package domain

import (
	"sort"
	"time"
)

// Candle은 캔들 데이터를 표현합니다
type Candle struct {
	OpenTime  time.Time    // 캔들 시작 시간
	CloseTime time.Time    // 캔들 종료 시간
	Open      float64      // 시가
	High      float64      // 고가
	Low       float64      // 저가
	Close     float64      // 종가
	Volume    float64      // 거래량
	Symbol    string       // 심볼 (예: ETHUSDT)
	Interval  TimeInterval // 시간 간격 (예: 1d)
}

// IsClosed는 기준 시점에 캔들이 마감되었는지 확인합니다
func (c Candle) IsClosed(now time.Time) bool {
	return !c.CloseTime.After(now)
}

// CandleList는 시간 오름차순으로 정렬된 캔들 데이터 목록입니다
type CandleList []Candle

// GetLastCandle은 가장 최근 캔들을 반환합니다
func (cl CandleList) GetLastCandle() (Candle, bool) {
	if len(cl) == 0 {
		return Candle{}, false
	}
	return cl[len(cl)-1], true
}

// Tail은 최근 n개 캔들을 반환합니다. n이 길이보다 크면 전체를 반환합니다.
func (cl CandleList) Tail(n int) CandleList {
	if n <= 0 {
		return nil
	}
	if n >= len(cl) {
		return cl
	}
	return cl[len(cl)-n:]
}

// Merge는 두 목록을 합쳐 시작 시간 기준으로 정렬하고 중복된 캔들을 제거합니다.
// 같은 시작 시간이면 other의 캔들이 남습니다.
func (cl CandleList) Merge(other CandleList) CandleList {
	byTime := make(map[int64]Candle, len(cl)+len(other))
	for _, c := range cl {
		byTime[c.OpenTime.UnixMilli()] = c
	}
	for _, c := range other {
		byTime[c.OpenTime.UnixMilli()] = c
	}

	merged := make(CandleList, 0, len(byTime))
	for _, c := range byTime {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].OpenTime.Before(merged[j].OpenTime)
	})
	return merged
}

// DropUnclosed는 기준 시점에 아직 마감되지 않은 마지막 캔들을 제거합니다
func (cl CandleList) DropUnclosed(now time.Time) CandleList {
	if last, ok := cl.GetLastCandle(); ok && !last.IsClosed(now) {
		return cl[:len(cl)-1]
	}
	return cl
}
