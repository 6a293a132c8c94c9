package app

import (
	"context"
	"fmt"
	"time"

	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"
)

const mediaCheckTimeout = 10 * time.Second

// handleVideoCreated проверяет медиа нового видео.
// Недоступные URL только логируются: повторная доставка их не исправит.
func (a *App) handleVideoCreated(ctx context.Context, payload payloads.VideoCreatedPayload) error {
	checkCtx, cancel := context.WithTimeout(ctx, mediaCheckTimeout)
	defer cancel()

	report, err := a.components.MediaVerifier.VerifyVideoMedia(checkCtx, payload)
	if err != nil {
		if ctx.Err() != nil {
			// воркер останавливается, сообщение вернётся в очередь
			return err
		}
		a.logger.Warn("media check timed out", "video_id", payload.VideoID, "error", err)
		return nil
	}

	if !report.OK() {
		a.logger.Warn("video media unreachable",
			"video_id", payload.VideoID,
			"video_reachable", report.VideoReachable,
			"thumbnail_reachable", report.ThumbnailReachable,
		)
		return nil
	}

	a.logger.Info("video media verified", "video_id", payload.VideoID)
	return nil
}

// runWorker запускает потребителя RabbitMQ и обрабатывает события video.created
func (a *App) runWorker(ctx context.Context) error {
	a.logger.Info("worker started, waiting for video.created events")

	if err := a.components.VideoConsumer.StartConsumingVideoCreated(ctx, a.handleVideoCreated); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("worker stopping")
	return nil
}
