package indicator

import (
	"errors"
	"fmt"
)

// ErrUndefinedValue는 워밍업 구간의 값을 사용하려 할 때 반환됩니다
var ErrUndefinedValue = errors.New("워밍업 구간의 값은 정의되지 않았습니다")

// ValidationError는 입력값 검증 에러를 정의합니다
type ValidationError struct {
	Field string
	Err   error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("유효하지 않은 %s: %v", e.Field, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// InsufficientDataError는 지표의 최소 워밍업 길이보다 짧은 시계열이 주어졌을 때 반환됩니다
type InsufficientDataError struct {
	Indicator string // 지표 이름
	Required  int    // 필요한 최소 캔들 수
	Actual    int    // 전달된 캔들 수
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: 가격 데이터가 부족합니다. 필요: %d, 현재: %d", e.Indicator, e.Required, e.Actual)
}

// InvalidSeriesError는 시계열 자체가 잘못된 경우(빈 시계열, 역순 타임스탬프, 유한하지 않은 값)를 나타냅니다
type InvalidSeriesError struct {
	Index  int // 문제가 된 캔들 인덱스 (빈 시계열이면 -1)
	Reason string
}

func (e *InvalidSeriesError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("잘못된 가격 시계열: %s", e.Reason)
	}
	return fmt.Sprintf("잘못된 가격 시계열 (인덱스 %d): %s", e.Index, e.Reason)
}

// UndefinedValueError는 분류 단계에서 아직 정의되지 않은 값을 참조했음을 나타냅니다.
// 분석 패키지 내부에서만 사용되며 리포트에는 "insufficient data" 분류로 변환됩니다.
type UndefinedValueError struct {
	Name  string // 값 이름 (예: "cloud A")
	Index int    // 참조한 캔들 인덱스
}

func (e *UndefinedValueError) Error() string {
	return fmt.Sprintf("%s (인덱스 %d): %v", e.Name, e.Index, ErrUndefinedValue)
}

func (e *UndefinedValueError) Is(target error) bool {
	return target == ErrUndefinedValue
}

// ValueAt은 인덱스의 값이 정의되어 있으면 반환하고, 아니면 UndefinedValueError를 반환합니다
func ValueAt(name string, values []float64, index int) (float64, error) {
	if index < 0 || index >= len(values) || !IsDefined(values[index]) {
		return 0, &UndefinedValueError{Name: name, Index: index}
	}
	return values[index], nil
}
