package usecase

import (
	"context"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// VideoUseCase определяет бизнес-логику работы с видео
type VideoUseCase interface {
	// ListVideos возвращает все видео, новые первыми. Пустое хранилище: пустой список, не ошибка
	ListVideos(ctx context.Context) ([]domain.Video, error)

	// GetVideo возвращает видео или domain.ErrNotFound
	GetVideo(ctx context.Context, id uuid.UUID) (*domain.Video, error)

	// CreateVideo валидирует ввод, применяет значения по умолчанию и сохраняет запись.
	// Сессия проверяется раньше, на уровне middleware
	CreateVideo(ctx context.Context, input *domain.CreateVideoInput) (*domain.Video, error)
}

// AuthUseCase: регистрация и сессии
type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	// Login проверяет пароль и открывает сессию
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, sessionID string) error
	// Authenticate проверяет токен и живую сессию, продлевая её
	Authenticate(ctx context.Context, token string) (*Principal, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// UploadAuthUseCase выдаёт учётные данные для загрузки на медиа-хостинг
type UploadAuthUseCase interface {
	IssueUploadCredentials(ctx context.Context) (*imagekit.Credentials, error)
}

// MediaVerifier проверяет, что медиа нового видео действительно доступны
type MediaVerifier interface {
	VerifyVideoMedia(ctx context.Context, payload payloads.VideoCreatedPayload) (*MediaReport, error)
}
