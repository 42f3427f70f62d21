// Package scheduler는 cron 표현식에 따라 분석 작업을 반복 실행합니다.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Task는 스케줄러가 실행할 작업을 정의하는 인터페이스입니다
type Task interface {
	Execute(ctx context.Context) error
}

// TaskFunc는 함수를 Task로 사용할 수 있게 합니다
type TaskFunc func(ctx context.Context) error

// Execute는 함수를 호출합니다
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Scheduler는 정해진 시간에 작업을 실행하는 스케줄러입니다.
// 이전 실행이 끝나지 않았으면 이번 실행은 건너뜁니다.
type Scheduler struct {
	spec       string
	schedule   cron.Schedule
	task       Task
	runOnStart bool
	logger     zerolog.Logger
}

// Option은 스케줄러 옵션을 정의합니다
type Option func(*Scheduler)

// WithRunOnStart는 시작 직후 한 번 즉시 실행할지 설정합니다
func WithRunOnStart(enabled bool) Option {
	return func(s *Scheduler) {
		s.runOnStart = enabled
	}
}

// WithLogger는 스케줄러 로거를 지정합니다
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler는 새로운 스케줄러를 생성합니다.
// spec은 5필드 cron 표현식이나 "@every 15m", "@daily" 같은 기술자입니다.
func NewScheduler(spec string, task Task, opts ...Option) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("잘못된 스케줄 %q: %w", spec, err)
	}

	s := &Scheduler{
		spec:     spec,
		schedule: schedule,
		task:     task,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next는 기준 시각 이후의 다음 실행 시각을 반환합니다
func (s *Scheduler) Next(now time.Time) time.Time {
	return s.schedule.Next(now)
}

// Start는 컨텍스트가 취소될 때까지 스케줄러를 실행합니다.
// 작업이 실패해도 스케줄은 계속됩니다.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.run(ctx) }))

	if s.runOnStart {
		s.run(ctx)
	}

	c.Start()
	s.logger.Info().Str("schedule", s.spec).Time("next", s.Next(time.Now())).Msg("스케줄러 시작")

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	s.logger.Info().Msg("스케줄러 중지")
	return ctx.Err()
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	if err := s.task.Execute(ctx); err != nil {
		s.logger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("작업 실행 실패")
	} else {
		s.logger.Debug().Dur("elapsed", time.Since(started)).Msg("작업 실행 완료")
	}

	next := s.Next(time.Now())
	s.logger.Info().
		Time("next", next).
		Str("wait", time.Until(next).Round(time.Second).String()).
		Msg("다음 실행 대기")
}

// cronLogger는 cron 내부 로그를 zerolog로 전달합니다
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
