package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/assist-by/compass/internal/analysis"
	"github.com/assist-by/compass/internal/market"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiGray  = "\x1b[90m"
)

// TextRenderer는 지표별 값과 분류를 표 형태의 텍스트로 출력합니다
type TextRenderer struct {
	Color bool // 라벨 방향성에 따라 ANSI 색상 적용
}

// Render는 스냅샷들을 텍스트로 출력합니다
func (t *TextRenderer) Render(w io.Writer, snapshots []*market.Snapshot) error {
	bw := bufio.NewWriter(w)
	for i, s := range snapshots {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		t.writeSnapshot(bw, s)
	}
	return bw.Flush()
}

func (t *TextRenderer) writeSnapshot(w io.Writer, s *market.Snapshot) {
	fmt.Fprintf(w, "%s %s  price $%s  (%s, %d candles)\n",
		t.paint(ansiBold, s.Symbol), s.Interval, FormatNumber(s.Price),
		s.FetchedAt.UTC().Format("2006-01-02 15:04 MST"), s.Candles)
	fmt.Fprintln(w, t.paint(ansiGray, "snapshot "+s.ID))

	for _, r := range s.Reports {
		fmt.Fprintf(w, "\n%s\n", t.paint(ansiBold, "== "+strings.ToUpper(r.Indicator)+" =="))
		for _, k := range sortedKeys(r.Values) {
			fmt.Fprintf(w, "  %-28s %s\n", k, FormatNumber(r.Values[k]))
		}
		for _, c := range r.Classifications {
			fmt.Fprintf(w, "  %-28s %s  %s\n", c.Rule, t.label(c.Label), t.paint(ansiGray, c.Evidence))
		}
	}
}

// label은 라벨을 고정 폭으로 맞추고 방향성에 따라 색을 입힙니다
func (t *TextRenderer) label(l analysis.Label) string {
	padded := fmt.Sprintf("%-18s", l)
	switch l.Tone() {
	case analysis.TonePositive:
		return t.paint(ansiGreen, padded)
	case analysis.ToneNegative:
		return t.paint(ansiRed, padded)
	default:
		return padded
	}
}

func (t *TextRenderer) paint(code, s string) string {
	if !t.Color {
		return s
	}
	return code + s + ansiReset
}

// FormatNumber는 값을 천 단위 구분자와 소수점 둘째 자리로 표시합니다.
// 미정의 값은 "n/a"입니다.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return humanize.CommafWithDigits(math.Round(v*100)/100, 2)
}
