package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDivergence(t *testing.T) {
	opt := DivergenceOption{Lookback: 30, SwingStrength: 2}

	tests := []struct {
		name     string
		price    []float64
		osc      []float64
		wantType DivergenceType
		wantPrev int
		wantLast int
	}{
		{
			name:     "강세 다이버전스: 가격 저점 하락, RSI 저점 상승",
			price:    []float64{10, 9, 8, 7, 8, 9, 10, 9, 8, 6.5, 8, 9, 10},
			osc:      []float64{50, 40, 30, 20, 30, 40, 50, 45, 40, 30, 40, 45, 50},
			wantType: BullishDivergence,
			wantPrev: 3,
			wantLast: 9,
		},
		{
			name:     "약세 다이버전스: 가격 고점 상승, RSI 고점 하락",
			price:    []float64{10, 11, 12, 13, 12, 11, 10, 11, 12, 13.5, 12, 11, 10},
			osc:      []float64{50, 60, 70, 80, 70, 60, 50, 55, 60, 70, 60, 55, 50},
			wantType: BearishDivergence,
			wantPrev: 3,
			wantLast: 9,
		},
		{
			name:     "저점이 같이 낮아지면 다이버전스 아님",
			price:    []float64{10, 9, 8, 7, 8, 9, 10, 9, 8, 6.5, 8, 9, 10},
			osc:      []float64{50, 40, 30, 20, 30, 40, 50, 45, 40, 15, 40, 45, 50},
			wantType: NoDivergence,
			wantPrev: -1,
			wantLast: -1,
		},
		{
			name:     "스윙 포인트가 하나뿐",
			price:    []float64{10, 9, 8, 7, 8, 9, 10},
			osc:      []float64{50, 40, 30, 20, 30, 40, 50},
			wantType: NoDivergence,
			wantPrev: -1,
			wantLast: -1,
		},
		{
			name:     "스윙 포인트의 오실레이터가 미정의",
			price:    []float64{10, 9, 8, 7, 8, 9, 10, 9, 8, 6.5, 8, 9, 10},
			osc:      []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN(), 30, 40, 50, 45, 40, 30, 40, 45, 50},
			wantType: NoDivergence,
			wantPrev: -1,
			wantLast: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectDivergence(tt.price, tt.osc, opt)
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantPrev, got.PrevIndex)
			assert.Equal(t, tt.wantLast, got.LastIndex)
		})
	}
}

func TestDetectDivergence_IgnoresSwingsOutsideLookback(t *testing.T) {
	price := []float64{10, 9, 8, 7, 8, 9, 10, 9, 8, 6.5, 8, 9, 10}
	osc := []float64{50, 40, 30, 20, 30, 40, 50, 45, 40, 30, 40, 45, 50}

	// 구간 [5, 13): 인덱스 3의 저점은 보이지 않음
	got, err := DetectDivergence(price, osc, DivergenceOption{Lookback: 8, SwingStrength: 2})
	require.NoError(t, err)

	assert.Equal(t, NoDivergence, got.Type)
}

func TestDetectDivergence_MostRecentKindWins(t *testing.T) {
	// 저점 3, 9 (강세) / 고점 6, 12 (약세, 더 최근)
	price := []float64{10, 9, 8, 7, 8, 9, 12, 9, 8, 6.5, 8, 9, 12.5, 9, 8}
	osc := []float64{50, 40, 30, 20, 30, 40, 80, 45, 40, 30, 40, 45, 70, 40, 35}

	got, err := DetectDivergence(price, osc, DefaultDivergenceOption())
	require.NoError(t, err)

	assert.Equal(t, BearishDivergence, got.Type)
	assert.Equal(t, 12, got.LastIndex)
	assert.Equal(t, "BEARISH_DIVERGENCE", got.Type.String())
}

func TestDetectDivergence_LengthMismatch(t *testing.T) {
	_, err := DetectDivergence([]float64{1, 2, 3}, []float64{1, 2}, DefaultDivergenceOption())

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestDetectDivergence_InvalidOption(t *testing.T) {
	_, err := DetectDivergence(nil, nil, DivergenceOption{Lookback: 4, SwingStrength: 2})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Lookback", vErr.Field)
}
