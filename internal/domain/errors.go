package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound: запись с таким идентификатором не существует.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: для операции записи нет активной сессии.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmailTaken: email уже зарегистрирован.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials: неверный email или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError описывает отказ на границе до любых побочных эффектов.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

// IsValidation проверяет, что ошибка (или обёрнутая в ней): ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
