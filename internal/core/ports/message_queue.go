package ports

import (
	"context"

	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"
)

// VideoEventPublisher публикует события о созданных видео
type VideoEventPublisher interface {
	PublishVideoCreated(ctx context.Context, payload payloads.VideoCreatedPayload) error
}

// VideoEventConsumer используется воркером для получения событий из очереди
type VideoEventConsumer interface {
	// StartConsumingVideoCreated начинает прослушивание очереди,
	// handler вызывается для каждого полученного сообщения
	StartConsumingVideoCreated(ctx context.Context, handler func(context.Context, payloads.VideoCreatedPayload) error) error
}
