package payloads

import (
	"time"

	"github.com/google/uuid"
)

// VideoCreatedPayload: событие о новом видео, публикуется в RabbitMQ после записи в бд.
type VideoCreatedPayload struct {
	VideoID      uuid.UUID `json:"videoId"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}
