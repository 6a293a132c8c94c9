package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const videoColumns = `id, title, description, video_url, thumbnail_url, controls, transformation, created_at, updated_at`

type VideoStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewVideoStorage(db *sqlx.DB, logger *slog.Logger) *VideoStorage {
	return &VideoStorage{db: db, logger: logger}
}

// SaveVideo сохраняет видео в базе данных
func (s *VideoStorage) SaveVideo(ctx context.Context, video *domain.Video) error {
	start := time.Now()

	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}

	query := `
	INSERT INTO videos (` + videoColumns + `)
	VALUES (:id, :title, :description, :video_url, :thumbnail_url, :controls, :transformation, :created_at, :updated_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, video); err != nil {
		s.logger.Error("failed to save video", "id", video.ID, "error", err)
		return fmt.Errorf("ошибка при сохранении видео: %w", err)
	}

	s.logger.Info("video saved successfully",
		"id", video.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetVideoByID получает видео по ID
func (s *VideoStorage) GetVideoByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	start := time.Now()

	var video domain.Video
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 LIMIT 1`

	err := s.db.GetContext(ctx, &video, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("video not found by id", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get video by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении видео по ID: %w", err)
	}

	s.logger.Debug("video retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &video, nil
}

// ListVideos получает все видео, новые первыми
func (s *VideoStorage) ListVideos(ctx context.Context) ([]domain.Video, error) {
	start := time.Now()

	q := `SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC`

	videos := []domain.Video{}
	if err := s.db.SelectContext(ctx, &videos, q); err != nil {
		s.logger.Error("failed to list videos", "error", err)
		return nil, fmt.Errorf("ошибка при получении списка видео: %w", err)
	}

	s.logger.Debug("listed videos successfully",
		"count", len(videos),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return videos, nil
}
