package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/assist-by/compass/internal/market"
	"github.com/assist-by/compass/internal/metrics"
	"github.com/assist-by/compass/internal/notification"
	"github.com/assist-by/compass/internal/report"
	"github.com/assist-by/compass/internal/scheduler"
)

// CollectorTask는 한 번의 수집/출력/알림 사이클을 정의합니다
type CollectorTask struct {
	collector *market.Collector
	renderer  report.Renderer
	app       *app
	notifier  notification.Notifier
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// Execute는 데이터 수집 작업을 실행합니다
func (t *CollectorTask) Execute(ctx context.Context) error {
	started := time.Now()
	snapshots, collectErr := t.collector.Collect(ctx)
	if t.metrics != nil {
		t.metrics.ObserveCollect(time.Since(started))
		t.observe(snapshots)
	}

	if err := t.renderer.Render(t.app.stdout, snapshots); err != nil {
		t.logger.Error().Err(err).Msg("출력 실패")
	}

	if t.notifier != nil {
		for _, snap := range snapshots {
			if err := t.notifier.NotifySnapshot(ctx, snap); err != nil {
				t.logger.Error().Err(err).Str("symbol", snap.Symbol).Msg("스냅샷 알림 전송 실패")
			}
		}
		if collectErr != nil && !errors.Is(collectErr, context.Canceled) {
			if err := t.notifier.NotifyError(ctx, collectErr); err != nil {
				t.logger.Error().Err(err).Msg("에러 알림 전송 실패")
			}
		}
	}

	return collectErr
}

// observe는 성공/실패 심볼을 지표에 기록합니다
func (t *CollectorTask) observe(snapshots []*market.Snapshot) {
	succeeded := make(map[string]bool, len(snapshots))
	for _, snap := range snapshots {
		t.metrics.ObserveSnapshot(snap)
		succeeded[snap.Symbol] = true
	}
	for _, symbol := range t.app.cfg.Market.Symbols {
		if !succeeded[symbol] {
			t.metrics.ObserveFailure(symbol)
		}
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		schedule    string
		metricsAddr string
		runOnStart  bool
	)

	cmd := &cobra.Command{
		Use:   "watch [SYMBOL...]",
		Short: "Re-run the analysis on a cron schedule until interrupted",
		Example: `  compass watch --schedule "@every 15m"
  compass watch BTCUSDT --schedule "5 0 * * *" --metrics-addr :9102`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.cfg.Market.Symbols = normalizeSymbols(args)
			}
			if schedule == "" {
				schedule = a.cfg.App.WatchSchedule
			}
			if metricsAddr == "" {
				metricsAddr = a.cfg.App.MetricsAddr
			}
			if !cmd.Flags().Changed("run-on-start") {
				runOnStart = a.cfg.App.RunOnStart
			}

			collector, err := a.newCollector()
			if err != nil {
				return err
			}
			renderer, err := a.newRenderer()
			if err != nil {
				return err
			}
			notifier, err := a.newNotifier()
			if err != nil {
				return err
			}

			task := &CollectorTask{
				collector: collector,
				renderer:  renderer,
				app:       a,
				notifier:  notifier,
				logger:    a.logger.With().Str("component", "watch").Logger(),
			}

			if metricsAddr != "" {
				task.metrics = metrics.NewMetrics()
				server := metrics.NewServer(metricsAddr, task.metrics, a.logger.With().Str("component", "metrics").Logger())
				server.Start()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := server.Stop(shutdownCtx); err != nil {
						a.logger.Error().Err(err).Msg("지표 서버 종료 실패")
					}
				}()
			}

			s, err := scheduler.NewScheduler(schedule, task,
				scheduler.WithRunOnStart(runOnStart),
				scheduler.WithLogger(a.logger.With().Str("component", "scheduler").Logger()),
			)
			if err != nil {
				return err
			}

			a.logger.Info().
				Strs("symbols", a.cfg.Market.Symbols).
				Str("interval", a.cfg.Market.Interval).
				Str("schedule", schedule).
				Msg("watch 시작")

			if err := s.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Info().Msg("watch 종료")
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", `cron expression or descriptor such as "@every 15m", overrides WATCH_SCHEDULE`)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint, overrides METRICS_ADDR")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", true, "run one analysis immediately before the first scheduled tick")
	return cmd
}
