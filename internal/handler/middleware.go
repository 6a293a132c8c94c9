package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/GoArmGo/ReelApp/internal/usecase"
)

// RequestLogger: middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type principalKey struct{}

// PrincipalFromContext достаёт пользователя, положенного RequireSession.
func PrincipalFromContext(ctx context.Context) (*usecase.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*usecase.Principal)
	return p, ok && p != nil
}

// RequireSession пропускает запрос дальше только с живой сессией.
// Токен ищется сначала в заголовке Authorization: Bearer, затем в cookie.
// Тело запроса до проверки не читается.
func RequireSession(authUC usecase.AuthUseCase, cookieName string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r, cookieName)

			p, err := authUC.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					respondWithError(w, http.StatusUnauthorized, "Unauthorized", logger)
					return
				}
				logger.Error("failed to verify session", "error", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to verify session", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
