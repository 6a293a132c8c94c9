package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ReelApp/internal/auth"
	"github.com/GoArmGo/ReelApp/internal/core/ports"
	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/google/uuid"
)

// Session: открытая сессия и её токен.
// ExpiresAt сдвигается вперёд каждым запросом с этой сессией;
// TokenExpiresAt: предел, после которого токен не принимается вовсе.
type Session struct {
	ID             string    `json:"-"`
	UserID         uuid.UUID `json:"-"`
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expiresAt"`
	TokenExpiresAt time.Time `json:"-"`
}

// Principal: кто выполняет запрос.
type Principal struct {
	UserID    uuid.UUID
	Email     string
	SessionID string
}

type authUseCase struct {
	users    ports.UserStorage
	sessions ports.SessionStore
	issuer   *auth.TokenIssuer
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthUseCase(users ports.UserStorage, sessions ports.SessionStore, issuer *auth.TokenIssuer, logger *slog.Logger) AuthUseCase {
	return &authUseCase{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *authUseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("usecase: ошибка регистрации пользователя: %w", err)
	}
	uc.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	if domain.NormalizeEmail(email) == "" || password == "" {
		return nil, &domain.ValidationError{Message: "Email and password are required"}
	}

	user, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("usecase: ошибка поиска пользователя: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	token, tokenExpiresAt, err := uc.issuer.Issue(user.ID, user.Email, sessionID)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	if err := uc.sessions.Create(ctx, sessionID, user.ID, uc.issuer.TTL()); err != nil {
		return nil, fmt.Errorf("usecase: ошибка создания сессии: %w", err)
	}

	uc.logger.Info("session opened", "user_id", user.ID)
	return &Session{
		ID:             sessionID,
		UserID:         user.ID,
		Token:          token,
		ExpiresAt:      uc.now().Add(uc.issuer.TTL()),
		TokenExpiresAt: tokenExpiresAt,
	}, nil
}

func (uc *authUseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("usecase: ошибка закрытия сессии: %w", err)
	}
	return nil
}

func (uc *authUseCase) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := uc.issuer.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	owner, err := uc.sessions.Touch(ctx, claims.SessionID, uc.issuer.TTL())
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("usecase: ошибка проверки сессии: %w", err)
	}

	userID, _ := claims.UserID()
	if owner != userID {
		uc.logger.Warn("session owner mismatch", "session_id", claims.SessionID)
		return nil, domain.ErrUnauthorized
	}

	return &Principal{UserID: userID, Email: claims.Email, SessionID: claims.SessionID}, nil
}

func (uc *authUseCase) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: пользователь %s: %w", userID, err)
	}
	return user, nil
}
