package ports

import (
	"context"
	"io"
)

// FileStorage: порт для хранения бинарных данных (MinIO / S3)
type FileStorage interface {
	// UploadFile загружает файл и возвращает его публичный URL
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}
