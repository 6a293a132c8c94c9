package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
	"github.com/GoArmGo/ReelApp/internal/core/ports"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxMediaSize: предел размера одного файла, принимаемого /media/upload.
const MaxMediaSize = 100 << 20

// запас на текстовые поля формы
const formOverhead = 1 << 20

var errMediaTooLarge = errors.New("file size exceeds limit")

// MediaUploadResult: ответ приёмника, совместимый с ответом внешнего хостинга.
type MediaUploadResult struct {
	FileID       string `json:"fileId"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	FilePath     string `json:"filePath"`
	Size         int64  `json:"size"`
	FileType     string `json:"fileType"`
}

// MediaHandler: собственный приёмник подписанных загрузок. Файлы уходят в S3/MinIO.
type MediaHandler struct {
	signer        *imagekit.Signer
	tokens        ports.TokenRegistry
	files         ports.FileStorage
	uploadLimiter chan struct{}
	maxSize       int64
	logger        *slog.Logger
}

// NewMediaHandler создаёт приёмник; limiter ограничивает число одновременных загрузок.
func NewMediaHandler(
	signer *imagekit.Signer,
	tokens ports.TokenRegistry,
	files ports.FileStorage,
	limiter chan struct{},
	logger *slog.Logger,
) *MediaHandler {
	return &MediaHandler{
		signer:        signer,
		tokens:        tokens,
		files:         files,
		uploadLimiter: limiter,
		maxSize:       MaxMediaSize,
		logger:        logger,
	}
}

func respondWithMessage(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"message": message}, logger)
}

// Upload: POST /media/upload. Поля подписи должны идти в форме раньше файла:
// тело читается потоком и до проверки подписи в хранилище ничего не пишется.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	select {
	case h.uploadLimiter <- struct{}{}:
		defer func() { <-h.uploadLimiter }()
	case <-r.Context().Done():
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+formOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Request must be multipart/form-data", h.logger)
		return
	}

	fields := map[string]string{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			respondWithMessage(w, http.StatusBadRequest, "Missing file parameter", h.logger)
			return
		}
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Malformed multipart body", h.logger)
			return
		}

		if part.FormName() != "file" {
			value, err := io.ReadAll(io.LimitReader(part, 4096))
			part.Close()
			if err != nil {
				respondWithMessage(w, http.StatusBadRequest, "Malformed multipart body", h.logger)
				return
			}
			fields[part.FormName()] = string(value)
			continue
		}

		h.store(w, r, part, fields)
		part.Close()
		return
	}
}

func (h *MediaHandler) store(w http.ResponseWriter, r *http.Request, part *multipart.Part, fields map[string]string) {
	ctx := r.Context()

	creds, err := credentialsFromForm(fields)
	if err != nil {
		respondWithMessage(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if err := h.signer.Verify(creds); err != nil {
		h.logger.Warn("upload signature rejected", "error", err)
		respondWithMessage(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	fresh, err := h.tokens.MarkUsed(ctx, creds.Token, h.signer.TimeLeft(creds))
	if err != nil {
		h.logger.Error("failed to register upload token", "error", err)
		respondWithMessage(w, http.StatusInternalServerError, "Failed to verify upload token", h.logger)
		return
	}
	if !fresh {
		respondWithMessage(w, http.StatusBadRequest, "The token has already been used", h.logger)
		return
	}

	fileName := cleanFileName(fields["fileName"])
	if fileName == "" {
		fileName = cleanFileName(part.FileName())
	}
	if fileName == "" {
		respondWithMessage(w, http.StatusBadRequest, "Missing fileName parameter", h.logger)
		return
	}

	fileID := uuid.NewString()
	name := fileName
	if fields["useUniqueFileName"] != "false" {
		name = fileID + "-" + fileName
	}
	folder := strings.Trim(fields["folder"], "/")
	key := name
	if folder != "" {
		key = folder + "/" + name
	}

	// первые байты нужны для определения типа, затем они склеиваются с остатком потока
	head := make([]byte, 3072)
	n, err := io.ReadFull(part, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		respondWithMessage(w, http.StatusBadRequest, "Failed to read file", h.logger)
		return
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()

	body := &sizeLimitedReader{r: io.MultiReader(bytes.NewReader(head), part), limit: h.maxSize}
	url, err := h.files.UploadFile(ctx, key, body, contentType)
	if err != nil {
		if body.exceeded {
			h.removeQuietly(r, key)
			respondWithMessage(w, http.StatusBadRequest, "File size exceeds limit", h.logger)
			return
		}
		h.logger.Error("failed to store uploaded media", "key", key, "error", err)
		respondWithMessage(w, http.StatusInternalServerError, "Failed to store file", h.logger)
		return
	}

	result := MediaUploadResult{
		FileID:   fileID,
		Name:     name,
		URL:      url,
		FilePath: "/" + key,
		Size:     body.n,
		FileType: "non-image",
	}
	if strings.HasPrefix(contentType, "image/") {
		result.FileType = "image"
		result.ThumbnailURL = url
	}

	h.logger.Info("media stored", "key", key, "size", body.n, "content_type", contentType)
	respondWithJSON(w, http.StatusOK, result, h.logger)
}

func (h *MediaHandler) removeQuietly(r *http.Request, key string) {
	if err := h.files.DeleteFile(r.Context(), key); err != nil {
		h.logger.Warn("failed to remove oversized upload", "key", key, "error", err)
	}
}

func credentialsFromForm(fields map[string]string) (imagekit.Credentials, error) {
	for _, name := range []string{"publicKey", "signature", "expire", "token"} {
		if fields[name] == "" {
			return imagekit.Credentials{}, fmt.Errorf("missing %s parameter", name)
		}
	}
	expire, err := imagekit.ParseExpire(fields["expire"])
	if err != nil {
		return imagekit.Credentials{}, imagekit.ErrExpired
	}
	return imagekit.Credentials{
		Signature: fields["signature"],
		Expire:    expire,
		Token:     fields["token"],
		PublicKey: fields["publicKey"],
	}, nil
}

func cleanFileName(raw string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// sizeLimitedReader обрывает поток, как только прочитано больше limit байт.
type sizeLimitedReader struct {
	r        io.Reader
	limit    int64
	n        int64
	exceeded bool
}

func (s *sizeLimitedReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.n += int64(n)
	if s.n > s.limit {
		s.exceeded = true
		return n, errMediaTooLarge
	}
	return n, err
}
