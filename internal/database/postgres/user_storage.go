package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// pgUniqueViolation: код ошибки PostgreSQL при нарушении уникального индекса
const pgUniqueViolation = "23505"

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя
func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("email already registered", "email", user.Email)
			return domain.ErrEmailTaken
		}
		s.logger.Error("failed to create user", "email", user.Email, "error", err)
		return fmt.Errorf("ошибка при создании пользователя с GORM: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID)
	return nil
}

// GetUserByEmail ищет пользователя по нормализованному email
func (s *GormUserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", domain.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя по email с GORM: %w", err)
	}
	return &user, nil
}

// GetUserByID ищет пользователя по ID
func (s *GormUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя по ID с GORM: %w", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}
