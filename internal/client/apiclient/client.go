// Package apiclient: HTTP-клиент REST API ReelApp.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
	"github.com/GoArmGo/ReelApp/internal/domain"
)

// ErrPasswordMismatch возвращается до любого сетевого запроса.
var ErrPasswordMismatch = errors.New("Passwords do not match")

// Client представляет клиент для взаимодействия с API ReelApp.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient создает новый экземпляр Client. httpClient может быть nil.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// BaseURL: адрес API без завершающего слэша.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken задаёт токен сессии для запросов, требующих входа.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do выполняет запрос и, если out не nil, декодирует JSON-ответ.
// Статусы вне 2xx превращаются в *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка кодирования тела запроса: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения HTTP-запроса %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("api request failed", "method", method, "path", path, "status", resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ошибка декодирования JSON ответа %s %s: %w", method, path, err)
	}
	return nil
}

// ListVideos получает ленту. Ответ в виде JSON-строки (а не массива) считается пустым списком.
func (c *Client) ListVideos(ctx context.Context) ([]domain.Video, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/videos", nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []domain.Video{}, nil
	}

	videos := []domain.Video{}
	if err := json.Unmarshal(trimmed, &videos); err != nil {
		return nil, fmt.Errorf("ошибка декодирования списка видео: %w", err)
	}
	return videos, nil
}

// GetVideo возвращает видео или domain.ErrNotFound.
func (c *Client) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	var video domain.Video
	err := c.do(ctx, http.MethodGet, "/videos/"+url.PathEscape(id), nil, &video)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// CreateVideo создаёт запись о видео; нужен токен сессии.
func (c *Client) CreateVideo(ctx context.Context, in *domain.CreateVideoInput) (*domain.Video, error) {
	var video domain.Video
	if err := c.do(ctx, http.MethodPost, "/videos", in, &video); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, apiErr.Message)
		}
		return nil, err
	}
	return &video, nil
}

// Register проверяет совпадение паролей локально и только потом идёт в сеть.
func (c *Client) Register(ctx context.Context, email, password, confirmPassword string) error {
	if password != confirmPassword {
		return ErrPasswordMismatch
	}
	return c.do(ctx, http.MethodPost, "/auth/register", credentialsRequest{
		Email:    domain.NormalizeEmail(email),
		Password: password,
	}, nil)
}

// Login открывает сессию и запоминает токен для последующих запросов.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var res LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", credentialsRequest{
		Email:    domain.NormalizeEmail(email),
		Password: password,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Session возвращает пользователя текущей сессии.
func (c *Client) Session(ctx context.Context) (*SessionUser, error) {
	var u SessionUser
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UploadAuth запрашивает одноразовые параметры загрузки.
func (c *Client) UploadAuth(ctx context.Context) (*imagekit.Credentials, error) {
	var creds imagekit.Credentials
	if err := c.do(ctx, http.MethodGet, "/upload-auth", nil, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}
