package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/GoArmGo/ReelApp/internal/usecase"
)

// CookieSettings: параметры cookie с токеном сессии.
type CookieSettings struct {
	Name   string
	Secure bool
}

// AuthHandler: регистрация, вход и выход.
type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	cookie      CookieSettings
	logger      *slog.Logger
}

func NewAuthHandler(uc usecase.AuthUseCase, cookie CookieSettings, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authUseCase: uc, cookie: cookie, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	_, err := h.authUseCase.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			respondWithError(w, http.StatusBadRequest, ve.Message, h.logger)
		case errors.Is(err, domain.ErrEmailTaken):
			respondWithError(w, http.StatusConflict, "Email is already registered", h.logger)
		default:
			h.logger.Error("failed to register user", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to register user", h.logger)
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"}, h.logger)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	session, err := h.authUseCase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			respondWithError(w, http.StatusBadRequest, ve.Message, h.logger)
		case errors.Is(err, domain.ErrInvalidCredentials):
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials", h.logger)
		default:
			h.logger.Error("failed to log in", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to log in", h.logger)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.TokenExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithJSON(w, http.StatusOK, session, h.logger)
}

// Logout закрывает текущую сессию и стирает cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", h.logger)
		return
	}

	if err := h.authUseCase.Logout(r.Context(), p.SessionID); err != nil {
		h.logger.Error("failed to log out", "user_id", p.UserID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to log out", h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Session отдаёт пользователя текущей сессии.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", h.logger)
		return
	}

	user, err := h.authUseCase.CurrentUser(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", h.logger)
			return
		}
		h.logger.Error("failed to load session user", "user_id", p.UserID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
	}, h.logger)
}
