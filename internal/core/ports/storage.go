package ports

import (
	"context"

	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/google/uuid"
)

// VideoStorage определяет методы для взаимодействия с хранилищем видео
type VideoStorage interface {
	SaveVideo(ctx context.Context, video *domain.Video) error
	// GetVideoByID возвращает domain.ErrNotFound, если записи нет
	GetVideoByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	// ListVideos возвращает все видео, новые первыми
	ListVideos(ctx context.Context) ([]domain.Video, error)
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	// CreateUser возвращает domain.ErrEmailTaken при нарушении уникальности email
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
