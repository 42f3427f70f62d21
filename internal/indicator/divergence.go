package indicator

import "fmt"

// DivergenceType은 가격과 오실레이터 사이의 다이버전스 종류를 정의합니다
type DivergenceType int

const (
	NoDivergence DivergenceType = iota
	BullishDivergence
	BearishDivergence
)

// String은 DivergenceType의 문자열 표현을 반환합니다
func (d DivergenceType) String() string {
	switch d {
	case NoDivergence:
		return "NONE"
	case BullishDivergence:
		return "BULLISH_DIVERGENCE"
	case BearishDivergence:
		return "BEARISH_DIVERGENCE"
	default:
		return "Unknown"
	}
}

// DivergenceOption은 다이버전스 탐색 옵션을 정의합니다
type DivergenceOption struct {
	Lookback      int // 탐색할 최근 캔들 수 (기본값: 30)
	SwingStrength int // 스윙 포인트 좌우 확인 캔들 수 (기본값: 2, 즉 5캔들 윈도우)
}

// DefaultDivergenceOption은 기본 다이버전스 옵션을 반환합니다
func DefaultDivergenceOption() DivergenceOption {
	return DivergenceOption{Lookback: 30, SwingStrength: 2}
}

// ValidateDivergenceOption은 다이버전스 옵션을 검증합니다
func ValidateDivergenceOption(opt DivergenceOption) error {
	if opt.SwingStrength < 1 {
		return &ValidationError{Field: "SwingStrength", Err: fmt.Errorf("1 이상이어야 합니다: %d", opt.SwingStrength)}
	}
	if opt.Lookback < 2*opt.SwingStrength+1 {
		return &ValidationError{
			Field: "Lookback",
			Err:   fmt.Errorf("스윙 윈도우(%d)보다 작을 수 없습니다: %d", 2*opt.SwingStrength+1, opt.Lookback),
		}
	}
	return nil
}

// Divergence는 감지된 다이버전스 정보입니다. 감지되지 않으면 Type이 NoDivergence이고 인덱스는 -1입니다.
type Divergence struct {
	Type      DivergenceType
	PrevIndex int     // 이전 스윙 포인트 인덱스
	LastIndex int     // 최근 스윙 포인트 인덱스
	PrevPrice float64 // 이전 스윙 포인트 가격
	LastPrice float64 // 최근 스윙 포인트 가격
	PrevOsc   float64 // 이전 스윙 포인트의 오실레이터 값
	LastOsc   float64 // 최근 스윙 포인트의 오실레이터 값
}

// DetectDivergence는 최근 Lookback 구간에서 가격과 오실레이터의 다이버전스를 찾습니다.
//
// 스윙 포인트는 좌우 SwingStrength개 가격보다 엄격하게 낮은(높은) 캔들이며, 양쪽 이웃 모두
// 탐색 구간 안에 있어야 합니다. 가장 최근 두 저점(고점)을 비교하고, 오실레이터 값은 같은
// 인덱스에서 읽습니다. 두 종류가 모두 성립하면 최근 스윙이 더 늦은 쪽을 반환합니다.
func DetectDivergence(price, osc []float64, opt DivergenceOption) (Divergence, error) {
	none := Divergence{Type: NoDivergence, PrevIndex: -1, LastIndex: -1}

	if err := ValidateDivergenceOption(opt); err != nil {
		return none, err
	}
	if len(price) != len(osc) {
		return none, &ValidationError{
			Field: "osc",
			Err:   fmt.Errorf("가격과 오실레이터 길이가 다릅니다: %d != %d", len(price), len(osc)),
		}
	}

	hi := len(price)
	lo := max(0, hi-opt.Lookback)

	bullish, okBull := lastPair(price, osc, PivotLows(price, opt.SwingStrength, lo, hi), BullishDivergence)
	bearish, okBear := lastPair(price, osc, PivotHighs(price, opt.SwingStrength, lo, hi), BearishDivergence)

	switch {
	case okBull && okBear:
		if bullish.LastIndex > bearish.LastIndex {
			return bullish, nil
		}
		return bearish, nil
	case okBull:
		return bullish, nil
	case okBear:
		return bearish, nil
	default:
		return none, nil
	}
}

// lastPair는 가장 최근 두 스윙 포인트가 다이버전스를 이루는지 확인합니다
func lastPair(price, osc []float64, swings []int, kind DivergenceType) (Divergence, bool) {
	if len(swings) < 2 {
		return Divergence{}, false
	}

	a, b := swings[len(swings)-2], swings[len(swings)-1]
	if !IsDefined(osc[a]) || !IsDefined(osc[b]) {
		return Divergence{}, false
	}

	d := Divergence{
		Type:      kind,
		PrevIndex: a,
		LastIndex: b,
		PrevPrice: price[a],
		LastPrice: price[b],
		PrevOsc:   osc[a],
		LastOsc:   osc[b],
	}

	switch kind {
	case BullishDivergence:
		// 가격은 더 낮은 저점, 오실레이터는 더 높은 저점
		return d, price[b] < price[a] && osc[b] > osc[a]
	case BearishDivergence:
		// 가격은 더 높은 고점, 오실레이터는 더 낮은 고점
		return d, price[b] > price[a] && osc[b] < osc[a]
	default:
		return Divergence{}, false
	}
}
