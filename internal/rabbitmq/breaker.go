package rabbitmq

import (
	"context"
	"log/slog"
	"time"

	"github.com/GoArmGo/ReelApp/internal/core/ports"
	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"
	"github.com/sony/gobreaker"
)

// BreakerPublisher оборачивает публикацию событий в circuit breaker:
// при недоступном брокере вызовы сразу получают gobreaker.ErrOpenState.
type BreakerPublisher struct {
	next   ports.VideoEventPublisher
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// BreakerSettings: параметры размыкания.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

func NewBreakerPublisher(next ports.VideoEventPublisher, s BreakerSettings, logger *slog.Logger) *BreakerPublisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "video-events",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerPublisher{next: next, cb: cb, logger: logger}
}

func (p *BreakerPublisher) PublishVideoCreated(ctx context.Context, payload payloads.VideoCreatedPayload) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.next.PublishVideoCreated(ctx, payload)
	})
	return err
}

// State: текущее состояние breaker'а.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.cb.State()
}
