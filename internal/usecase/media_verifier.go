package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"
	"golang.org/x/sync/errgroup"
)

// errHostNotAllowed: адрес указывает за пределы медиа-хостинга, запрос не делается.
var errHostNotAllowed = errors.New("media host is not allowed")

// MediaReport: результат проверки медиа одного видео.
type MediaReport struct {
	VideoReachable     bool
	ThumbnailReachable bool
}

// OK: оба URL отвечают успешным статусом.
func (r *MediaReport) OK() bool {
	return r.VideoReachable && r.ThumbnailReachable
}

type mediaVerifier struct {
	httpClient   *http.Client
	allowedHosts []string
	logger       *slog.Logger
}

// NewMediaVerifier создаёт проверку медиа; timeout ограничивает каждый HEAD-запрос.
// Запросы уходят только на allowedHosts (host или host:port), в том числе после редиректа.
func NewMediaVerifier(timeout time.Duration, allowedHosts []string, logger *slog.Logger) MediaVerifier {
	v := &mediaVerifier{
		allowedHosts: allowedHosts,
		logger:       logger,
	}
	v.httpClient = &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			if !v.allowed(req.URL) {
				return fmt.Errorf("%w: %s", errHostNotAllowed, req.URL.Host)
			}
			return nil
		},
	}
	return v
}

// VerifyVideoMedia делает HEAD на videoUrl и thumbnailUrl параллельно.
// Недоступность медиа попадает в отчёт; ошибка возвращается только при отмене контекста,
// и тогда errgroup прерывает второй запрос.
func (v *mediaVerifier) VerifyVideoMedia(ctx context.Context, p payloads.VideoCreatedPayload) (*MediaReport, error) {
	report := &MediaReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.VideoReachable = v.reachable(gctx, p.VideoURL)
		return gctx.Err()
	})
	g.Go(func() error {
		report.ThumbnailReachable = v.reachable(gctx, p.ThumbnailURL)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("usecase: проверка медиа прервана: %w", err)
	}
	return report, nil
}

func (v *mediaVerifier) allowed(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	for _, h := range v.allowedHosts {
		if strings.EqualFold(h, u.Host) || strings.EqualFold(h, u.Hostname()) {
			return true
		}
	}
	return false
}

func (v *mediaVerifier) reachable(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		v.logger.Warn("invalid media url", "url", rawURL, "error", err)
		return false
	}
	if !v.allowed(u) {
		v.logger.Warn("media url outside media host, skipped", "url", rawURL)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		v.logger.Warn("invalid media url", "url", rawURL, "error", err)
		return false
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn("media url unreachable", "url", rawURL, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		v.logger.Warn("media url returned error status", "url", rawURL, "status", resp.StatusCode)
		return false
	}
	return true
}
