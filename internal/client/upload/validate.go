package upload

import (
	"fmt"
	"strings"
)

// Category: что загружается: картинка или видео.
type Category string

const (
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
)

const (
	MaxImageSize = 5 << 20
	MaxVideoSize = 100 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ParseCategory разбирает категорию из флага CLI.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryImage:
		return CategoryImage, nil
	case CategoryVideo:
		return CategoryVideo, nil
	}
	return "", fmt.Errorf("неизвестный тип загрузки %q (image или video)", s)
}

// Folder: папка на медиа-хостинге.
func (c Category) Folder() string {
	if c == CategoryVideo {
		return "/videos"
	}
	return "/images"
}

// ValidationError: файл не прошёл проверку до начала загрузки.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate проверяет тип и размер файла для выбранной категории.
func Validate(f *File, c Category) error {
	if f == nil {
		return &ValidationError{Message: "Please select a file to upload"}
	}

	if c == CategoryVideo {
		if !strings.HasPrefix(f.ContentType, "video/") {
			return &ValidationError{Message: "Please upload a valid video file (e.g., MP4, WebM)"}
		}
		if f.Size > MaxVideoSize {
			return &ValidationError{Message: "Video must be less than 100MB"}
		}
		return nil
	}

	if !allowedImageTypes[f.ContentType] {
		return &ValidationError{Message: "Please upload a valid image file (JPEG, PNG, or WebP)"}
	}
	if f.Size > MaxImageSize {
		return &ValidationError{Message: "Image must be less than 5MB"}
	}
	return nil
}
