package indicator

import "fmt"

// CrossEvent는 빠른 이동평균과 느린 이동평균의 교차 이벤트를 정의합니다
type CrossEvent int

const (
	NoCross     CrossEvent = iota
	GoldenCross            // 빠른 선이 느린 선을 아래에서 위로 돌파
	DeathCross             // 빠른 선이 느린 선을 위에서 아래로 돌파
)

// String은 CrossEvent의 문자열 표현을 반환합니다
func (c CrossEvent) String() string {
	switch c {
	case NoCross:
		return "NONE"
	case GoldenCross:
		return "GOLDEN_CROSS"
	case DeathCross:
		return "DEATH_CROSS"
	default:
		return "Unknown"
	}
}

// MAPair는 빠른/느린 이동평균 기간 쌍입니다
type MAPair struct {
	Fast int
	Slow int
}

// MACrossOption은 이동평균 교차 계산 옵션을 정의합니다
type MACrossOption struct {
	Short MAPair // 단기 쌍 (기본값: 10/50)
	Long  MAPair // 장기 쌍 (기본값: 50/200)
	Type  MAType // 이동평균 종류 (기본값: SMA)
}

// DefaultMACrossOption은 기본 이동평균 교차 옵션을 반환합니다
func DefaultMACrossOption() MACrossOption {
	return MACrossOption{
		Short: MAPair{Fast: 10, Slow: 50},
		Long:  MAPair{Fast: 50, Slow: 200},
		Type:  MATypeSMA,
	}
}

// ValidateMACrossOption은 이동평균 교차 옵션을 검증합니다
func ValidateMACrossOption(opt MACrossOption) error {
	pairs := []struct {
		name string
		pair MAPair
	}{{"Short", opt.Short}, {"Long", opt.Long}}
	for _, p := range pairs {
		name, pair := p.name, p.pair
		if pair.Fast < 1 || pair.Slow < 1 {
			return &ValidationError{Field: name, Err: fmt.Errorf("기간은 1 이상이어야 합니다: %d/%d", pair.Fast, pair.Slow)}
		}
		if pair.Fast >= pair.Slow {
			return &ValidationError{Field: name, Err: fmt.Errorf("빠른 기간은 느린 기간보다 작아야 합니다: %d/%d", pair.Fast, pair.Slow)}
		}
	}
	if opt.Type != MATypeSMA && opt.Type != MATypeEMA {
		return &ValidationError{Field: "Type", Err: fmt.Errorf("SMA 또는 EMA만 지원합니다: %q", opt.Type)}
	}
	return nil
}

// MinLength는 모든 이동평균이 마지막 캔들에서 정의되기 위한 최소 길이입니다
func (opt MACrossOption) MinLength() int {
	return max(opt.Short.Fast, opt.Short.Slow, opt.Long.Fast, opt.Long.Slow)
}

// PairResult는 이동평균 한 쌍의 계산 결과입니다
type PairResult struct {
	Pair    MAPair
	Fast    []float64
	Slow    []float64
	Crosses []CrossEvent
}

// MACrossResult는 단기/장기 이동평균 쌍의 계산 결과입니다
type MACrossResult struct {
	Type  MAType
	Short PairResult
	Long  PairResult
}

// MACross는 두 이동평균 쌍과 교차 이벤트를 계산합니다
func MACross(prices []PriceData, opt MACrossOption) (*MACrossResult, error) {
	if err := ValidateMACrossOption(opt); err != nil {
		return nil, err
	}
	if err := ValidateSeries(prices); err != nil {
		return nil, err
	}
	if err := requireLength("MACross", prices, opt.MinLength()); err != nil {
		return nil, err
	}

	closes := Closes(prices)
	return &MACrossResult{
		Type:  opt.Type,
		Short: newPairResult(closes, opt.Short, opt.Type),
		Long:  newPairResult(closes, opt.Long, opt.Type),
	}, nil
}

func newPairResult(closes []float64, pair MAPair, maType MAType) PairResult {
	fast := MovingAverage(closes, pair.Fast, maType)
	slow := MovingAverage(closes, pair.Slow, maType)
	return PairResult{
		Pair:    pair,
		Fast:    fast,
		Slow:    slow,
		Crosses: DetectCrosses(fast, slow),
	}
}

// DetectCrosses는 연속된 두 캔들 사이에서 (fast - slow)의 부호가 엄격하게 바뀌는 지점을 찾습니다.
// 차이가 0인 캔들을 거치는 전환은 교차로 보지 않습니다.
func DetectCrosses(fast, slow []float64) []CrossEvent {
	crosses := make([]CrossEvent, len(fast))
	for i := 1; i < len(fast) && i < len(slow); i++ {
		if !IsDefined(fast[i-1]) || !IsDefined(slow[i-1]) || !IsDefined(fast[i]) || !IsDefined(slow[i]) {
			continue
		}
		prev := fast[i-1] - slow[i-1]
		curr := fast[i] - slow[i]
		switch {
		case prev < 0 && curr > 0:
			crosses[i] = GoldenCross
		case prev > 0 && curr < 0:
			crosses[i] = DeathCross
		}
	}
	return crosses
}

// LastCross는 마지막 lookback개 캔들 안에서 가장 최근 교차와 그 이후 지난 캔들 수를 반환합니다.
// 교차가 없으면 (NoCross, -1)을 반환합니다.
func (p *PairResult) LastCross(lookback int) (CrossEvent, int) {
	last := len(p.Crosses) - 1
	for i := last; i >= 0 && i > last-lookback; i-- {
		if p.Crosses[i] != NoCross {
			return p.Crosses[i], last - i
		}
	}
	return NoCross, -1
}
