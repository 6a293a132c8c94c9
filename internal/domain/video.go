package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Размеры вертикального видео, которые всегда записываются в transformation.
const (
	VideoWidth  = 1080
	VideoHeight = 1920

	DefaultQuality = 100
	MinQuality     = 1
	MaxQuality     = 100
)

// Video представляет модель видео в системе,
// соответствует таблице videos в бд
type Video struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	Title          string         `json:"title" db:"title"`
	Description    string         `json:"description" db:"description"`
	VideoURL       string         `json:"videoUrl" db:"video_url"`
	ThumbnailURL   string         `json:"thumbnailUrl" db:"thumbnail_url"`
	Controls       bool           `json:"controls" db:"controls"`
	Transformation Transformation `json:"transformation" db:"transformation"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

// Transformation: параметры отображения видео. В бд лежит в колонке jsonb.
type Transformation struct {
	Height  int `json:"height"`
	Width   int `json:"width"`
	Quality int `json:"quality"`
}

// Value реализует driver.Valuer для записи в jsonb.
// Отдаём строку: lib/pq кодирует []byte как bytea.
func (t Transformation) Value() (driver.Value, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan реализует sql.Scanner для чтения из jsonb.
func (t *Transformation) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Transformation{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("transformation: неподдерживаемый тип %T", src)
	}
}

// CreateVideoInput: тело запроса POST /videos.
type CreateVideoInput struct {
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	VideoURL       string               `json:"videoUrl"`
	ThumbnailURL   string               `json:"thumbnailUrl"`
	Controls       *bool                `json:"controls,omitempty"`
	Transformation *TransformationInput `json:"transformation,omitempty"`
}

// TransformationInput: то, что может прислать клиент. Quantity принимается как синоним Quality.
type TransformationInput struct {
	Height   *int `json:"height,omitempty"`
	Width    *int `json:"width,omitempty"`
	Quality  *int `json:"quality,omitempty"`
	Quantity *int `json:"quantity,omitempty"`
}

func (t *TransformationInput) quality() *int {
	if t == nil {
		return nil
	}
	if t.Quality != nil {
		return t.Quality
	}
	return t.Quantity
}

// Validate проверяет обязательные поля и границы quality.
func (in *CreateVideoInput) Validate() error {
	if in == nil {
		return &ValidationError{Message: "Missing required fields in body", Fields: []string{"title", "description", "videoUrl", "thumbnailUrl"}}
	}

	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.VideoURL) == "" {
		missing = append(missing, "videoUrl")
	}
	if strings.TrimSpace(in.ThumbnailURL) == "" {
		missing = append(missing, "thumbnailUrl")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Missing required fields in body", Fields: missing}
	}

	if q := in.Transformation.quality(); q != nil && (*q < MinQuality || *q > MaxQuality) {
		return &ValidationError{
			Message: fmt.Sprintf("transformation.quality must be between %d and %d", MinQuality, MaxQuality),
			Fields:  []string{"transformation.quality"},
		}
	}
	return nil
}

// TimestampPrecision: точность TIMESTAMPTZ в PostgreSQL.
const TimestampPrecision = time.Microsecond

// NewVideo строит запись из провалидированного ввода.
// controls по умолчанию true, quality по умолчанию 100, height/width всегда фиксированные.
// Время обрезается до точности бд, чтобы ответ на создание совпадал с последующим чтением.
func NewVideo(in *CreateVideoInput, now time.Time) *Video {
	now = now.Truncate(TimestampPrecision)

	controls := true
	if in.Controls != nil {
		controls = *in.Controls
	}

	quality := DefaultQuality
	if q := in.Transformation.quality(); q != nil {
		quality = *q
	}

	return &Video{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		VideoURL:     strings.TrimSpace(in.VideoURL),
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
		Controls:     controls,
		Transformation: Transformation{
			Height:  VideoHeight,
			Width:   VideoWidth,
			Quality: quality,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
