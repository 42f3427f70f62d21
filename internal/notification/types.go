// Package notification은 분석 스냅샷을 외부 채널로 전송하는 알림 인터페이스를 정의합니다.
package notification

import (
	"context"
	"errors"

	"github.com/assist-by/compass/internal/analysis"
	"github.com/assist-by/compass/internal/market"
)

const (
	ColorSuccess = 0x00FF00 // 녹색
	ColorError   = 0xFF0000 // 빨간색
	ColorInfo    = 0x0099FF // 파란색
	ColorWarning = 0xFFA500 // 주황색
)

// Notifier는 알림 전송 인터페이스를 정의합니다
type Notifier interface {
	// NotifySnapshot은 분석 스냅샷 알림을 전송합니다
	NotifySnapshot(ctx context.Context, snap *market.Snapshot) error

	// NotifyError는 에러 알림을 전송합니다
	NotifyError(ctx context.Context, err error) error
}

// Multi는 여러 알림 채널로 동시에 전송합니다. 채널별 실패는 모아서 반환합니다.
type Multi []Notifier

// NotifySnapshot은 모든 채널로 스냅샷을 전송합니다
func (m Multi) NotifySnapshot(ctx context.Context, snap *market.Snapshot) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.NotifySnapshot(ctx, snap))
	}
	return errors.Join(errs...)
}

// NotifyError는 모든 채널로 에러를 전송합니다
func (m Multi) NotifyError(ctx context.Context, err error) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.NotifyError(ctx, err))
	}
	return errors.Join(errs...)
}

// Bias는 스냅샷 전체 분류의 긍정/부정 라벨 수를 비교한 방향성입니다
func Bias(snap *market.Snapshot) analysis.Tone {
	score := 0
	for _, r := range snap.Reports {
		for _, c := range r.Classifications {
			switch c.Label.Tone() {
			case analysis.TonePositive:
				score++
			case analysis.ToneNegative:
				score--
			}
		}
	}
	switch {
	case score > 0:
		return analysis.TonePositive
	case score < 0:
		return analysis.ToneNegative
	default:
		return analysis.ToneNeutral
	}
}

// GetColorForTone은 방향성에 따른 색상을 반환합니다
func GetColorForTone(tone analysis.Tone) int {
	switch tone {
	case analysis.TonePositive:
		return ColorSuccess
	case analysis.ToneNegative:
		return ColorError
	default:
		return ColorInfo
	}
}
