package indicator

// isPivot는 values[i]가 좌우 strength개 값보다 엄격하게 크거나(high) 작은지(low) 확인합니다.
// [lo, hi) 범위 밖의 값은 참조하지 않으며, 양쪽 이웃이 모두 범위 안에 있어야 합니다.
func isPivot(values []float64, i, strength, lo, hi int, high bool) bool {
	if i-strength < lo || i+strength >= hi || !IsDefined(values[i]) {
		return false
	}
	for j := i - strength; j <= i+strength; j++ {
		if j == i {
			continue
		}
		if !IsDefined(values[j]) {
			return false
		}
		if high && values[j] >= values[i] {
			return false
		}
		if !high && values[j] <= values[i] {
			return false
		}
	}
	return true
}

// PivotHighs는 [lo, hi) 범위에서 확정된 고점 인덱스를 오래된 순으로 반환합니다
func PivotHighs(values []float64, strength, lo, hi int) []int {
	return pivots(values, strength, lo, hi, true)
}

// PivotLows는 [lo, hi) 범위에서 확정된 저점 인덱스를 오래된 순으로 반환합니다
func PivotLows(values []float64, strength, lo, hi int) []int {
	return pivots(values, strength, lo, hi, false)
}

func pivots(values []float64, strength, lo, hi int, high bool) []int {
	lo = max(lo, 0)
	hi = min(hi, len(values))

	var out []int
	for i := lo + strength; i < hi-strength; i++ {
		if isPivot(values, i, strength, lo, hi, high) {
			out = append(out, i)
		}
	}
	return out
}
