package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/ReelApp/internal/usecase"
)

// UploadAuthHandler выдаёт одноразовые параметры загрузки на медиа-хостинг.
type UploadAuthHandler struct {
	uploadAuthUseCase usecase.UploadAuthUseCase
	logger            *slog.Logger
}

func NewUploadAuthHandler(uc usecase.UploadAuthUseCase, logger *slog.Logger) *UploadAuthHandler {
	return &UploadAuthHandler{uploadAuthUseCase: uc, logger: logger}
}

// UploadAuth: GET /upload-auth. При ошибке отвечает простым текстом.
func (h *UploadAuthHandler) UploadAuth(w http.ResponseWriter, r *http.Request) {
	creds, err := h.uploadAuthUseCase.IssueUploadCredentials(r.Context())
	if err != nil {
		h.logger.Error("failed to issue upload credentials", "error", err)
		http.Error(w, "Upload authentication failed", http.StatusInternalServerError)
		return
	}
	respondWithJSON(w, http.StatusOK, creds, h.logger)
}
