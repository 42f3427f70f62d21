package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		timeout time.Duration
		notify  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [SYMBOL...]",
		Short: "Analyze the latest bar of each symbol once",
		Example: `  compass analyze
  compass analyze BTCUSDT ETHUSDT --interval 4h
  compass analyze --format json --limit 300`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.cfg.Market.Symbols = normalizeSymbols(args)
			}

			collector, err := a.newCollector()
			if err != nil {
				return err
			}
			renderer, err := a.newRenderer()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			snapshots, collectErr := collector.Collect(ctx)
			if err := renderer.Render(a.stdout, snapshots); err != nil {
				return err
			}

			if notify {
				notifier, err := a.newNotifier()
				if err != nil {
					return err
				}
				if notifier == nil {
					a.logger.Warn().Msg("알림 채널이 설정되지 않았습니다 (DISCORD_WEBHOOK, TELEGRAM_BOT_TOKEN)")
				} else {
					var errs []error
					for _, snap := range snapshots {
						errs = append(errs, notifier.NotifySnapshot(ctx, snap))
					}
					if err := errors.Join(errs...); err != nil {
						a.logger.Error().Err(err).Msg("알림 전송 실패")
					}
				}
			}

			return collectErr
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "overall timeout for fetching and analysis")
	cmd.Flags().BoolVar(&notify, "notify", false, "also send the snapshots to the configured notifiers")
	return cmd
}
