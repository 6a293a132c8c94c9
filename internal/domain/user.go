package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost: стоимость bcrypt при хешировании пароля.
const PasswordCost = 10

// MaxPasswordBytes: bcrypt не принимает пароли длиннее 72 байт.
const MaxPasswordBytes = 72

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" db:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// NormalizeEmail приводит email к виду, в котором он хранится и ищется.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser проверяет ввод и создаёт пользователя с уже захешированным паролем.
func NewUser(email, password string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	now = now.Truncate(TimestampPrecision)

	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: "Email and password are required", Fields: missing}
	}
	if len(password) > MaxPasswordBytes {
		return nil, &ValidationError{
			Message: fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes),
			Fields:  []string{"password"},
		}
	}

	u := &User{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.SetPassword(password, now); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword хеширует новый пароль. Открытый текст нигде не сохраняется.
func (u *User) SetPassword(plain string, now time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return &ValidationError{Message: fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes), Fields: []string{"password"}}
	}
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = now
	return nil
}

// CheckPassword сравнивает пароль с сохранённым хешем.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
