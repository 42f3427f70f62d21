// Package report는 분석 스냅샷을 사람이 읽는 텍스트나 JSON/YAML 문서로 출력합니다.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/assist-by/compass/internal/analysis"
	"github.com/assist-by/compass/internal/market"
)

// Format은 출력 형식입니다
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat은 문자열을 출력 형식으로 변환합니다
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("지원하지 않는 출력 형식: %q", s)
	}
}

// Renderer는 스냅샷 목록을 출력하는 인터페이스입니다
type Renderer interface {
	Render(w io.Writer, snapshots []*market.Snapshot) error
}

// NewRenderer는 형식에 맞는 렌더러를 생성합니다.
// 텍스트 형식의 색상은 out이 터미널일 때만 켜집니다.
func NewRenderer(format Format, out io.Writer) (Renderer, error) {
	switch format {
	case FormatText:
		return &TextRenderer{Color: IsTerminal(out)}, nil
	case FormatJSON:
		return &JSONRenderer{Indent: true}, nil
	case FormatYAML:
		return &YAMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("지원하지 않는 출력 형식: %q", format)
	}
}

// IsTerminal은 w가 터미널에 연결된 파일인지 확인합니다
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// snapshotView는 JSON/YAML 직렬화용 스냅샷 표현입니다.
// 미정의 값은 nil 포인터로 바뀌어 null로 출력됩니다.
type snapshotView struct {
	ID         string       `json:"id" yaml:"id"`
	Symbol     string       `json:"symbol" yaml:"symbol"`
	Interval   string       `json:"interval" yaml:"interval"`
	FetchedAt  time.Time    `json:"fetched_at" yaml:"fetched_at"`
	Price      float64      `json:"price" yaml:"price"`
	Candles    int          `json:"candles" yaml:"candles"`
	Indicators []reportView `json:"indicators" yaml:"indicators"`
}

type reportView struct {
	Indicator       string                    `json:"indicator" yaml:"indicator"`
	Time            time.Time                 `json:"time" yaml:"time"`
	Price           float64                   `json:"price" yaml:"price"`
	Values          map[string]*float64       `json:"values" yaml:"values"`
	Classifications []analysis.Classification `json:"classifications" yaml:"classifications"`
}

func newSnapshotView(s *market.Snapshot) snapshotView {
	view := snapshotView{
		ID:         s.ID,
		Symbol:     s.Symbol,
		Interval:   s.Interval.String(),
		FetchedAt:  s.FetchedAt.UTC(),
		Price:      s.Price,
		Candles:    s.Candles,
		Indicators: make([]reportView, 0, len(s.Reports)),
	}
	for _, r := range s.Reports {
		values := make(map[string]*float64, len(r.Values))
		for k, v := range r.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				values[k] = nil
				continue
			}
			v := v
			values[k] = &v
		}
		view.Indicators = append(view.Indicators, reportView{
			Indicator:       r.Indicator,
			Time:            r.Time.UTC(),
			Price:           r.Price,
			Values:          values,
			Classifications: r.Classifications,
		})
	}
	return view
}

func newSnapshotViews(snapshots []*market.Snapshot) []snapshotView {
	views := make([]snapshotView, 0, len(snapshots))
	for _, s := range snapshots {
		views = append(views, newSnapshotView(s))
	}
	return views
}

// sortedKeys는 값 이름을 정렬해서 반환합니다
func sortedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
