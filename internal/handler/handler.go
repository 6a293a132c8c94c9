package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/GoArmGo/ReelApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// VideoHandler: обработчик HTTP-запросов для работы с видео.
type VideoHandler struct {
	videoUseCase usecase.VideoUseCase
	logger       *slog.Logger
}

// NewVideoHandler создаёт новый экземпляр VideoHandler.
func NewVideoHandler(uc usecase.VideoUseCase, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		videoUseCase: uc,
		logger:       logger,
	}
}

// respondWithJSON: отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError: отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// MaxJSONBodySize: предел тела JSON-запросов API.
const MaxJSONBodySize = 1 << 20

// decodeJSON читает тело запроса не длиннее MaxJSONBodySize.
// При ошибке ответ уже записан, вызывающему остаётся вернуться.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger *slog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("request body too large", "path", r.URL.Path, "limit", tooLarge.Limit)
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large", logger)
			return false
		}
		logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body", logger)
		return false
	}
	return true
}

// ListVideos: все видео, новые первыми.
func (h *VideoHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videoUseCase.ListVideos(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch videos", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch videos", h.logger)
		return
	}

	h.logger.Debug("videos fetched", "count", len(videos))
	respondWithJSON(w, http.StatusOK, videos, h.logger)
}

// GetVideo: одно видео по id. Некорректный id отдаёт 404, как и отсутствующий.
func (h *VideoHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")

	id, err := uuid.Parse(rawID)
	if err != nil {
		h.logger.Warn("malformed video id", "id", rawID)
		respondWithError(w, http.StatusNotFound, "Video not found", h.logger)
		return
	}

	video, err := h.videoUseCase.GetVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Video not found", h.logger)
			return
		}
		h.logger.Error("failed to fetch video", "video_id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch video", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, video, h.logger)
}

// CreateVideo: создание записи о видео. Сессию уже проверил RequireSession.
func (h *VideoHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateVideoInput
	if !decodeJSON(w, r, &input, h.logger) {
		return
	}

	video, err := h.videoUseCase.CreateVideo(r.Context(), &input)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			h.logger.Warn("video validation failed", "fields", ve.Fields)
			respondWithError(w, http.StatusBadRequest, ve.Error(), h.logger)
			return
		}
		h.logger.Error("failed to create video", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create video", h.logger)
		return
	}

	if p, ok := PrincipalFromContext(r.Context()); ok {
		h.logger.Info("video created", "video_id", video.ID, "user_id", p.UserID)
	}
	respondWithJSON(w, http.StatusOK, video, h.logger)
}
