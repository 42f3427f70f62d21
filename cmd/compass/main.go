package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/assist-by/compass/internal/config"
	"github.com/assist-by/compass/internal/exchange/binance"
	"github.com/assist-by/compass/internal/market"
	"github.com/assist-by/compass/internal/notification"
	"github.com/assist-by/compass/internal/notification/discord"
	"github.com/assist-by/compass/internal/notification/telegram"
	"github.com/assist-by/compass/internal/report"
)

// app은 커맨드 사이에서 공유되는 설정과 의존성을 보관합니다
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	stdout io.Writer

	envFile  string
	symbols  []string
	interval string
	limit    int
	format   string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{stdout: colorable.NewColorableStdout()}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "compass",
		Short: "Ichimoku, RSI, fractal and moving-average cross classifier for Binance markets",
		Long: `compass fetches a finite window of Binance candles, computes Ichimoku, RSI with
divergence, Williams fractals and moving-average crosses, and classifies the latest
bar of each indicator into discrete labels with evidence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", ".env file to load (default: ./.env when present)")
	flags.StringSliceVar(&a.symbols, "symbols", nil, "symbols to analyze, overrides SYMBOLS")
	flags.StringVarP(&a.interval, "interval", "i", "", "candle interval, overrides INTERVAL")
	flags.IntVarP(&a.limit, "limit", "n", 0, "number of candles to fetch, overrides CANDLE_LIMIT")
	flags.StringVarP(&a.format, "format", "o", "", "output format: text, json or yaml")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	root.AddCommand(newAnalyzeCmd(a), newWatchCmd(a), newIndicatorsCmd(a))
	return root
}

// load는 설정을 읽고 플래그 값을 덮어쓴 뒤 다시 검증합니다
func (a *app) load() error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	cfg, err := config.LoadConfig(envFiles...)
	if err != nil {
		return err
	}

	if len(a.symbols) > 0 {
		cfg.Market.Symbols = normalizeSymbols(a.symbols)
	}
	if a.interval != "" {
		cfg.Market.Interval = a.interval
	}
	if a.limit > 0 {
		cfg.Market.CandleLimit = a.limit
	}
	if a.format != "" {
		cfg.App.OutputFormat = a.format
	}
	if a.logLevel != "" {
		cfg.App.LogLevel = a.logLevel
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(cfg.App.LogLevel)
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// newCollector는 설정에 맞는 바이낸스 클라이언트와 분석 엔진으로 수집기를 구성합니다
func (a *app) newCollector() (*market.Collector, error) {
	engine, err := a.cfg.Engine()
	if err != nil {
		return nil, err
	}

	client := binance.NewClient(
		binance.WithBaseURL(a.cfg.Binance.BaseURL),
		binance.WithTimeout(a.cfg.Binance.Timeout),
		binance.WithRateLimit(a.cfg.Binance.RateLimit),
		binance.WithRetry(a.cfg.Binance.MaxRetries, 500*time.Millisecond),
	)

	return market.NewCollector(client, engine, a.cfg.Market.Symbols, a.cfg.Interval(),
		market.WithCandleLimit(a.cfg.Market.CandleLimit),
		market.WithClosedCandlesOnly(a.cfg.Market.ClosedOnly),
		market.WithTickerPrice(a.cfg.Market.TickerPrice),
		market.WithLogger(a.logger.With().Str("component", "collector").Logger()),
	), nil
}

// newRenderer는 출력 형식에 맞는 렌더러를 생성합니다
func (a *app) newRenderer() (report.Renderer, error) {
	format, err := report.ParseFormat(a.cfg.App.OutputFormat)
	if err != nil {
		return nil, err
	}
	return report.NewRenderer(format, a.stdout)
}

// newNotifier는 설정된 알림 채널들을 묶어서 반환합니다. 설정된 채널이 없으면 nil입니다.
func (a *app) newNotifier() (notification.Notifier, error) {
	var notifiers notification.Multi

	if a.cfg.Discord.ReportWebhook != "" {
		notifiers = append(notifiers, discord.NewClient(a.cfg.Discord.ReportWebhook,
			discord.WithErrorWebhook(a.cfg.Discord.ErrorWebhook)))
	}
	if a.cfg.Telegram.BotToken != "" {
		tg, err := telegram.NewNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, tg)
	}

	if len(notifiers) == 0 {
		return nil, nil
	}
	return notifiers, nil
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.stdout, format, args...)
}
