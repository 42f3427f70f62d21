// Package metrics는 watch 모드의 분석 결과를 Prometheus 지표로 노출합니다.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/assist-by/compass/internal/indicator"
	"github.com/assist-by/compass/internal/market"
)

// Metrics는 분석 사이클 지표를 보관합니다
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec // labels: symbol, status=ok|error
	CollectDuration prometheus.Histogram
	LastSuccess     *prometheus.GaugeVec // labels: symbol (unix seconds)
	Price           *prometheus.GaugeVec // labels: symbol
	IndicatorValue  *prometheus.GaugeVec // labels: symbol, indicator, name
	Classification  *prometheus.GaugeVec // labels: symbol, indicator, rule, label (현재 라벨만 1)
}

// NewMetrics는 전용 레지스트리에 지표를 등록해서 반환합니다
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compass_analysis_runs_total",
			Help: "Analysis runs per symbol by outcome",
		}, []string{"symbol", "status"}),
		CollectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "compass_collect_duration_seconds",
			Help:    "Duration of one collect cycle over all symbols",
			Buckets: prometheus.DefBuckets,
		}),
		LastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "compass_last_success_timestamp_seconds",
			Help: "Unix time of the last successful snapshot",
		}, []string{"symbol"}),
		Price: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "compass_price",
			Help: "Current price used for classification",
		}, []string{"symbol"}),
		IndicatorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "compass_indicator_value",
			Help: "Latest defined indicator values",
		}, []string{"symbol", "indicator", "name"}),
		Classification: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "compass_classification",
			Help: "Current label per rule (1 for the active label)",
		}, []string{"symbol", "indicator", "rule", "label"}),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.CollectDuration,
		m.LastSuccess,
		m.Price,
		m.IndicatorValue,
		m.Classification,
	)
	return m
}

// Registry는 지표 레지스트리를 반환합니다
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSnapshot은 스냅샷의 가격, 값, 라벨을 기록합니다.
// 이전 사이클의 라벨은 지워서 현재 라벨만 남깁니다.
func (m *Metrics) ObserveSnapshot(snap *market.Snapshot) {
	m.RunsTotal.WithLabelValues(snap.Symbol, "ok").Inc()
	m.LastSuccess.WithLabelValues(snap.Symbol).Set(float64(snap.FetchedAt.Unix()))
	m.Price.WithLabelValues(snap.Symbol).Set(snap.Price)

	m.IndicatorValue.DeletePartialMatch(prometheus.Labels{"symbol": snap.Symbol})
	m.Classification.DeletePartialMatch(prometheus.Labels{"symbol": snap.Symbol})

	for _, r := range snap.Reports {
		for name, v := range r.Values {
			if indicator.IsDefined(v) {
				m.IndicatorValue.WithLabelValues(snap.Symbol, r.Indicator, name).Set(v)
			}
		}
		for _, c := range r.Classifications {
			m.Classification.WithLabelValues(snap.Symbol, r.Indicator, c.Rule, string(c.Label)).Set(1)
		}
	}
}

// ObserveFailure는 심볼 분석 실패를 기록합니다
func (m *Metrics) ObserveFailure(symbol string) {
	m.RunsTotal.WithLabelValues(symbol, "error").Inc()
}

// ObserveCollect는 수집 사이클 소요 시간을 기록합니다
func (m *Metrics) ObserveCollect(elapsed time.Duration) {
	m.CollectDuration.Observe(elapsed.Seconds())
}

// Server는 /metrics와 /healthz를 노출하는 HTTP 서버입니다
type Server struct {
	addr   string
	srv    *http.Server
	logger zerolog.Logger
}

// NewServer는 지표 서버를 생성합니다
func NewServer(addr string, m *Metrics, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		addr:   addr,
		logger: logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler는 서버의 HTTP 핸들러를 반환합니다
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start는 서버를 고루틴에서 실행합니다
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("지표 서버 시작")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("지표 서버 에러")
		}
	}()
}

// Stop은 서버를 정상 종료합니다
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
