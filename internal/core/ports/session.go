package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore хранит идентификаторы живых сессий.
type SessionStore interface {
	Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	// Touch продлевает сессию и возвращает её владельца; domain.ErrUnauthorized, если сессии нет
	Touch(ctx context.Context, sessionID string, ttl time.Duration) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID string) error
}

// TokenRegistry помечает одноразовые токены загрузки как использованные.
type TokenRegistry interface {
	// MarkUsed возвращает false, если токен уже встречался
	MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error)
}
