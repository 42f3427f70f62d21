package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func candleAt(day int, close float64) Candle {
	open := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	return Candle{
		OpenTime:  open,
		CloseTime: open.Add(24*time.Hour - time.Millisecond),
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Symbol:    "ETHUSDT",
		Interval:  Interval1d,
	}
}

func TestCandleList_Merge(t *testing.T) {
	older := CandleList{candleAt(1, 10), candleAt(2, 11), candleAt(3, 12)}
	newer := CandleList{candleAt(3, 13), candleAt(4, 14)}

	merged := newer.Merge(older)

	assert.Len(t, merged, 4)
	for i := 1; i < len(merged); i++ {
		assert.True(t, merged[i].OpenTime.After(merged[i-1].OpenTime))
	}
	assert.Equal(t, 12.0, merged[2].Close, "같은 시작 시간이면 인자로 받은 목록이 남습니다")
}

func TestCandleList_Tail(t *testing.T) {
	cl := CandleList{candleAt(1, 10), candleAt(2, 11), candleAt(3, 12)}

	assert.Len(t, cl.Tail(2), 2)
	assert.Equal(t, 11.0, cl.Tail(2)[0].Close)
	assert.Len(t, cl.Tail(10), 3)
	assert.Nil(t, cl.Tail(0))
}

func TestCandleList_DropUnclosed(t *testing.T) {
	cl := CandleList{candleAt(1, 10), candleAt(2, 11)}

	assert.Len(t, cl.DropUnclosed(time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)), 1)
	assert.Len(t, cl.DropUnclosed(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), 2)
}

func TestParseTimeInterval(t *testing.T) {
	interval, err := ParseTimeInterval("4h")
	assert.NoError(t, err)
	assert.Equal(t, 4*time.Hour, interval.Duration())

	_, err = ParseTimeInterval("7m")
	assert.Error(t, err)
}
