package apiclient

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// LoginResponse: ответ POST /auth/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionUser: ответ GET /auth/session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APIError: неуспешный ответ сервера.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "reelapp API вернул статус " + strconv.Itoa(e.StatusCode)
	}
	return "reelapp API вернул статус " + strconv.Itoa(e.StatusCode) + ": " + e.Message
}

// errorMessage достаёт текст ошибки из тела ответа. Сервер отвечает
// {"error": ...}, {"message": ...}, JSON-строкой или простым текстом.
func errorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		if obj.Error != "" {
			return obj.Error
		}
		if obj.Message != "" {
			return obj.Message
		}
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}
	return trimmed
}
