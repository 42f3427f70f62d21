package analysis

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/assist-by/compass/internal/indicator"
)

// Engine은 등록된 분석기들을 하나의 가격 시계열 위에서 실행합니다
type Engine struct {
	analyzers []Analyzer
}

// NewEngine은 주어진 분석기들로 엔진을 생성합니다. 리포트는 등록 순서대로 반환됩니다.
func NewEngine(analyzers ...Analyzer) *Engine {
	return &Engine{analyzers: analyzers}
}

// NewDefaultEngine은 기본 파라미터의 네 가지 분석기로 엔진을 생성합니다
func NewDefaultEngine() *Engine {
	ichimoku, _ := NewIchimokuAnalyzer(DefaultIchimokuParams())
	rsi, _ := NewRSIAnalyzer(DefaultRSIParams())
	fractals, _ := NewFractalsAnalyzer(DefaultFractalsParams())
	maCross, _ := NewMACrossAnalyzer(DefaultMACrossParams())
	return NewEngine(ichimoku, rsi, fractals, maCross)
}

// Analyzers는 등록된 분석기 목록을 반환합니다
func (e *Engine) Analyzers() []Analyzer {
	return append([]Analyzer(nil), e.analyzers...)
}

// MinLength는 모든 분석기를 실행하기 위한 최소 캔들 수를 반환합니다
func (e *Engine) MinLength() int {
	n := 0
	for _, a := range e.analyzers {
		n = max(n, a.MinLength())
	}
	return n
}

// Run은 시계열을 한 번 검증한 뒤 모든 분석기를 동시에 실행합니다.
// 실패한 분석기의 에러는 모두 합쳐서 반환하고, 성공한 리포트는 등록 순서대로 반환합니다.
func (e *Engine) Run(prices []indicator.PriceData, opts ...Option) ([]*Report, error) {
	if err := indicator.ValidateSeries(prices); err != nil {
		return nil, err
	}

	reports := make([]*Report, len(e.analyzers))
	errs := make([]error, len(e.analyzers))

	var wg sync.WaitGroup
	for i, a := range e.analyzers {
		wg.Add(1)
		go func(i int, a Analyzer) {
			defer wg.Done()
			report, err := a.Analyze(prices, opts...)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", a.GetName(), err)
				return
			}
			reports[i] = report
		}(i, a)
	}
	wg.Wait()

	out := make([]*Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, errors.Join(errs...)
}

// Factory는 분석기 인스턴스를 생성하는 함수 타입입니다
type Factory func() (Analyzer, error)

// Registry는 사용 가능한 모든 분석기를 등록하고 관리합니다
type Registry struct {
	factories map[string]Factory
}

// NewRegistry는 새로운 분석기 레지스트리를 생성합니다
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register는 새로운 분석기 팩토리를 레지스트리에 등록합니다
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Create는 주어진 이름의 분석기 인스턴스를 생성합니다
func (r *Registry) Create(name string) (Analyzer, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("존재하지 않는 분석기: %s", name)
	}
	return factory()
}

// ListAnalyzers는 사용 가능한 모든 분석기 이름을 정렬해서 반환합니다
func (r *Registry) ListAnalyzers() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build는 이름 목록 순서대로 분석기를 생성해 엔진을 구성합니다
func (r *Registry) Build(names ...string) (*Engine, error) {
	analyzers := make([]Analyzer, 0, len(names))
	for _, name := range names {
		a, err := r.Create(name)
		if err != nil {
			return nil, err
		}
		analyzers = append(analyzers, a)
	}
	return NewEngine(analyzers...), nil
}
