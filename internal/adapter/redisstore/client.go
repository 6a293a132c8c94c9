package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ReelApp/internal/config"
	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	uploadTokenKeyPrefix = "upload-token:"
)

// NewClient подключается к Redis и проверяет соединение.
func NewClient(cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis %s: %w", cfg.Redis.Addr, err)
	}

	logger.Info("redis connection established", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return rdb, nil
}

// Store реализует ports.SessionStore и ports.TokenRegistry поверх Redis.
type Store struct {
	rdb    redis.Cmdable
	logger *slog.Logger
}

func NewStore(rdb redis.Cmdable, logger *slog.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

// Create регистрирует сессию с TTL.
func (s *Store) Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sessionID, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения сессии в Redis: %w", err)
	}
	return nil
}

// Touch продлевает сессию (скользящий срок) и возвращает её владельца.
func (s *Store) Touch(ctx context.Context, sessionID string, ttl time.Duration) (uuid.UUID, error) {
	val, err := s.rdb.GetEx(ctx, sessionKeyPrefix+sessionID, ttl).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("ошибка чтения сессии из Redis: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		s.logger.Warn("corrupted session value", "session_id", sessionID)
		return uuid.Nil, domain.ErrUnauthorized
	}
	return userID, nil
}

// Delete отзывает сессию.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("ошибка удаления сессии из Redis: %w", err)
	}
	return nil
}

// MarkUsed атомарно помечает токен загрузки; false: токен уже использовался.
func (s *Store) MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, uploadTokenKeyPrefix+token, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("ошибка регистрации токена загрузки в Redis: %w", err)
	}
	return ok, nil
}
