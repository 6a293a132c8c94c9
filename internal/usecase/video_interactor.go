package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ReelApp/internal/core/ports"
	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// videoUseCase implements VideoUseCase
type videoUseCase struct {
	videoStorage ports.VideoStorage
	publisher    ports.VideoEventPublisher
	logger       *slog.Logger
	now          func() time.Time
}

// NewVideoUseCase создает новый экземпляр VideoUseCase.
// publisher может быть nil: тогда события не публикуются
func NewVideoUseCase(
	videoStorage ports.VideoStorage,
	publisher ports.VideoEventPublisher,
	logger *slog.Logger,
) VideoUseCase {
	return &videoUseCase{
		videoStorage: videoStorage,
		publisher:    publisher,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (uc *videoUseCase) ListVideos(ctx context.Context) ([]domain.Video, error) {
	videos, err := uc.videoStorage.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении списка видео: %w", err)
	}
	if videos == nil {
		videos = []domain.Video{}
	}
	return videos, nil
}

func (uc *videoUseCase) GetVideo(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	video, err := uc.videoStorage.GetVideoByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: видео %s: %w", id, err)
	}
	return video, nil
}

func (uc *videoUseCase) CreateVideo(ctx context.Context, input *domain.CreateVideoInput) (*domain.Video, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	video := domain.NewVideo(input, uc.now())
	if err := uc.videoStorage.SaveVideo(ctx, video); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при сохранении видео: %w", err)
	}

	uc.publishCreated(ctx, video)
	return video, nil
}

// publishCreated не влияет на результат создания: видео уже записано.
func (uc *videoUseCase) publishCreated(ctx context.Context, video *domain.Video) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.PublishVideoCreated(ctx, payloads.VideoCreatedPayload{
		VideoID:      video.ID,
		VideoURL:     video.VideoURL,
		ThumbnailURL: video.ThumbnailURL,
		CreatedAt:    video.CreatedAt,
	})
	if err != nil {
		uc.logger.Warn("failed to publish video.created", "video_id", video.ID, "error", err)
	}
}
