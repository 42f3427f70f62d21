package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/assist-by/compass/internal/analysis"
	"github.com/assist-by/compass/internal/domain"
	"github.com/assist-by/compass/internal/indicator"
	"github.com/assist-by/compass/internal/report"
)

type Config struct {
	// 시장 데이터 설정
	Market struct {
		Symbols     []string `envconfig:"SYMBOLS" default:"ETHUSDT"`
		Interval    string   `envconfig:"INTERVAL" default:"1d"`
		CandleLimit int      `envconfig:"CANDLE_LIMIT" default:"500"`
		ClosedOnly  bool     `envconfig:"CLOSED_CANDLES_ONLY" default:"false"`
		TickerPrice bool     `envconfig:"USE_TICKER_PRICE" default:"true"`
	}

	// 바이낸스 공개 API 설정
	Binance struct {
		BaseURL    string        `envconfig:"BINANCE_BASE_URL" default:"https://api.binance.com"`
		Timeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
		RateLimit  int           `envconfig:"BINANCE_RATE_LIMIT" default:"10"`
		MaxRetries uint64        `envconfig:"BINANCE_MAX_RETRIES" default:"3"`
	}

	// 일목균형표 설정
	Ichimoku struct {
		TenkanPeriod  int `envconfig:"ICHIMOKU_TENKAN_PERIOD" default:"9"`
		KijunPeriod   int `envconfig:"ICHIMOKU_KIJUN_PERIOD" default:"26"`
		SenkouBPeriod int `envconfig:"ICHIMOKU_SENKOU_B_PERIOD" default:"52"`
		Displacement  int `envconfig:"ICHIMOKU_DISPLACEMENT" default:"26"`
		TwistLookback int `envconfig:"ICHIMOKU_TWIST_LOOKBACK" default:"5"`
	}

	// RSI 설정
	RSI struct {
		Period             int     `envconfig:"RSI_PERIOD" default:"14"`
		Overbought         float64 `envconfig:"RSI_OVERBOUGHT" default:"70"`
		Oversold           float64 `envconfig:"RSI_OVERSOLD" default:"30"`
		Midline            float64 `envconfig:"RSI_MIDLINE" default:"50"`
		SignalType         string  `envconfig:"RSI_SIGNAL_TYPE" default:"SMA"`
		SignalPeriod       int     `envconfig:"RSI_SIGNAL_PERIOD" default:"14"`
		SlopeLength        int     `envconfig:"RSI_SLOPE_LENGTH" default:"5"`
		DivergenceLookback int     `envconfig:"RSI_DIVERGENCE_LOOKBACK" default:"30"`
		SwingStrength      int     `envconfig:"RSI_SWING_STRENGTH" default:"2"`
	}

	// 프랙탈 설정
	Fractals struct {
		Period         int     `envconfig:"FRACTALS_PERIOD" default:"2"`
		RecentCount    int     `envconfig:"FRACTALS_RECENT_COUNT" default:"5"`
		SequenceLength int     `envconfig:"FRACTALS_SEQUENCE_LENGTH" default:"10"`
		ProximityPct   float64 `envconfig:"FRACTALS_PROXIMITY_PCT" default:"2"`
	}

	// 이동평균 교차 설정
	MACross struct {
		ShortFast     int    `envconfig:"MA_SHORT_FAST" default:"10"`
		ShortSlow     int    `envconfig:"MA_SHORT_SLOW" default:"50"`
		LongFast      int    `envconfig:"MA_LONG_FAST" default:"50"`
		LongSlow      int    `envconfig:"MA_LONG_SLOW" default:"200"`
		Type          string `envconfig:"MA_TYPE" default:"SMA"`
		CrossLookback int    `envconfig:"MA_CROSS_LOOKBACK" default:"10"`
	}

	// 디스코드 웹훅 설정 (비어 있으면 전송하지 않음)
	Discord struct {
		ReportWebhook string `envconfig:"DISCORD_WEBHOOK"`
		ErrorWebhook  string `envconfig:"DISCORD_ERROR_WEBHOOK"`
	}

	// 텔레그램 설정 (토큰이 비어 있으면 전송하지 않음)
	Telegram struct {
		BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
	}

	// 애플리케이션 설정
	App struct {
		Indicators    []string `envconfig:"INDICATORS" default:"ichimoku,rsi,fractals,ma_cross"`
		LogLevel      string   `envconfig:"LOG_LEVEL" default:"info"`
		OutputFormat  string   `envconfig:"OUTPUT_FORMAT" default:"text"`
		WatchSchedule string   `envconfig:"WATCH_SCHEDULE" default:"@every 15m"`
		RunOnStart    bool     `envconfig:"RUN_ON_START" default:"true"`
		MetricsAddr   string   `envconfig:"METRICS_ADDR"`
	}
}

// ValidateConfig는 설정이 유효한지 확인합니다.
func ValidateConfig(cfg *Config) error {
	if len(cfg.Market.Symbols) == 0 {
		return fmt.Errorf("SYMBOLS는 하나 이상이어야 합니다")
	}
	if _, err := domain.ParseTimeInterval(cfg.Market.Interval); err != nil {
		return err
	}
	if cfg.Binance.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT은 0보다 커야 합니다")
	}
	if cfg.Binance.RateLimit <= 0 {
		return fmt.Errorf("BINANCE_RATE_LIMIT은 0보다 커야 합니다")
	}

	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	if required := engine.MinLength(); cfg.Market.CandleLimit < required {
		return fmt.Errorf("CANDLE_LIMIT은 %d 이상이어야 합니다: %d", required, cfg.Market.CandleLimit)
	}

	if _, err := report.ParseFormat(cfg.App.OutputFormat); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.App.LogLevel)); err != nil {
		return fmt.Errorf("잘못된 LOG_LEVEL %q: %w", cfg.App.LogLevel, err)
	}
	if _, err := cron.ParseStandard(cfg.App.WatchSchedule); err != nil {
		return fmt.Errorf("잘못된 WATCH_SCHEDULE %q: %w", cfg.App.WatchSchedule, err)
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN을 사용하려면 TELEGRAM_CHAT_ID가 필요합니다")
	}

	return nil
}

// LoadConfig는 환경변수에서 설정을 로드합니다.
// envFiles가 비어 있으면 현재 디렉터리의 .env를 읽고, 없으면 환경변수만 사용합니다.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf(".env 파일 로드 실패: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf(".env 파일 로드 실패: %w", err)
	}

	var cfg Config
	// 환경변수를 구조체로 파싱
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("환경변수 처리 실패: %w", err)
	}

	// 설정값 검증
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("설정값 검증 실패: %w", err)
	}

	return &cfg, nil
}

// Interval은 검증된 캔들 간격을 반환합니다
func (cfg *Config) Interval() domain.TimeInterval {
	interval, _ := domain.ParseTimeInterval(cfg.Market.Interval)
	return interval
}

// IchimokuParams는 일목균형표 분석 파라미터를 반환합니다
func (cfg *Config) IchimokuParams() analysis.IchimokuParams {
	return analysis.IchimokuParams{
		IchimokuOption: indicator.IchimokuOption{
			TenkanPeriod:  cfg.Ichimoku.TenkanPeriod,
			KijunPeriod:   cfg.Ichimoku.KijunPeriod,
			SenkouBPeriod: cfg.Ichimoku.SenkouBPeriod,
			Displacement:  cfg.Ichimoku.Displacement,
		},
		TwistLookback: cfg.Ichimoku.TwistLookback,
	}
}

// RSIParams는 RSI 분석 파라미터를 반환합니다
func (cfg *Config) RSIParams() analysis.RSIParams {
	return analysis.RSIParams{
		RSIOption:    indicator.RSIOption{Period: cfg.RSI.Period},
		Overbought:   cfg.RSI.Overbought,
		Oversold:     cfg.RSI.Oversold,
		Midline:      cfg.RSI.Midline,
		SignalType:   indicator.MAType(strings.ToUpper(cfg.RSI.SignalType)),
		SignalPeriod: cfg.RSI.SignalPeriod,
		SlopeLength:  cfg.RSI.SlopeLength,
		Divergence: indicator.DivergenceOption{
			Lookback:      cfg.RSI.DivergenceLookback,
			SwingStrength: cfg.RSI.SwingStrength,
		},
	}
}

// FractalsParams는 프랙탈 분석 파라미터를 반환합니다
func (cfg *Config) FractalsParams() analysis.FractalsParams {
	return analysis.FractalsParams{
		FractalOption:  indicator.FractalOption{Period: cfg.Fractals.Period},
		RecentCount:    cfg.Fractals.RecentCount,
		SequenceLength: cfg.Fractals.SequenceLength,
		ProximityPct:   cfg.Fractals.ProximityPct,
	}
}

// MACrossParams는 이동평균 교차 분석 파라미터를 반환합니다
func (cfg *Config) MACrossParams() analysis.MACrossParams {
	return analysis.MACrossParams{
		MACrossOption: indicator.MACrossOption{
			Short: indicator.MAPair{Fast: cfg.MACross.ShortFast, Slow: cfg.MACross.ShortSlow},
			Long:  indicator.MAPair{Fast: cfg.MACross.LongFast, Slow: cfg.MACross.LongSlow},
			Type:  indicator.MAType(strings.ToUpper(cfg.MACross.Type)),
		},
		CrossLookback: cfg.MACross.CrossLookback,
	}
}

// Registry는 설정 파라미터로 분석기를 만드는 레지스트리를 반환합니다
func (cfg *Config) Registry() *analysis.Registry {
	r := analysis.NewRegistry()
	r.Register("ichimoku", func() (analysis.Analyzer, error) {
		a, err := analysis.NewIchimokuAnalyzer(cfg.IchimokuParams())
		if err != nil {
			return nil, err
		}
		return a, nil
	})
	r.Register("rsi", func() (analysis.Analyzer, error) {
		a, err := analysis.NewRSIAnalyzer(cfg.RSIParams())
		if err != nil {
			return nil, err
		}
		return a, nil
	})
	r.Register("fractals", func() (analysis.Analyzer, error) {
		a, err := analysis.NewFractalsAnalyzer(cfg.FractalsParams())
		if err != nil {
			return nil, err
		}
		return a, nil
	})
	r.Register("ma_cross", func() (analysis.Analyzer, error) {
		a, err := analysis.NewMACrossAnalyzer(cfg.MACrossParams())
		if err != nil {
			return nil, err
		}
		return a, nil
	})
	return r
}

// Engine은 INDICATORS 순서대로 분석기를 생성해 엔진을 구성합니다
func (cfg *Config) Engine() (*analysis.Engine, error) {
	if len(cfg.App.Indicators) == 0 {
		return nil, fmt.Errorf("INDICATORS는 하나 이상이어야 합니다")
	}
	names := make([]string, len(cfg.App.Indicators))
	for i, name := range cfg.App.Indicators {
		names[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return cfg.Registry().Build(names...)
}
