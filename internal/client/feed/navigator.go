// Package feed: просмотр ленты видео с навигацией вперёд и назад.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoArmGo/ReelApp/internal/domain"
)

// Status: состояние ленты.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

var ErrNotReady = errors.New("feed is not ready")

// Lister получает список видео; реализуется apiclient.Client.
type Lister interface {
	ListVideos(ctx context.Context) ([]domain.Video, error)
}

// PlayOptions: с чем монтируется плеер.
type PlayOptions struct {
	Autoplay bool
	Loop     bool
	Controls bool
	Width    int
	Height   int
}

// Player: смонтированный плеер одного видео.
type Player interface {
	Stop()
}

// Screen монтирует плеер для видео.
type Screen interface {
	Mount(video domain.Video, opts PlayOptions) (Player, error)
}

// Navigator держит список, активный индекс и единственный смонтированный плеер.
type Navigator struct {
	lister Lister
	screen Screen
	logger *slog.Logger

	mu     sync.Mutex
	status Status
	videos []domain.Video
	index  int
	player Player
}

func NewNavigator(lister Lister, screen Screen, logger *slog.Logger) *Navigator {
	return &Navigator{lister: lister, screen: screen, logger: logger}
}

// Load загружает ленту один раз и встаёт на видео с данным id.
// Если такого id нет, активным становится первое видео.
func (n *Navigator) Load(ctx context.Context, id string) error {
	n.mu.Lock()
	n.status = StatusLoading
	n.unmountLocked()
	n.mu.Unlock()

	videos, err := n.lister.ListVideos(ctx)

	n.mu.Lock()
	defer n.mu.Unlock()

	if err != nil {
		n.status = StatusFailed
		n.videos = nil
		return fmt.Errorf("ошибка загрузки ленты: %w", err)
	}

	n.videos = videos
	n.index = 0
	if len(videos) == 0 {
		n.status = StatusEmpty
		return nil
	}

	for i := range videos {
		if videos[i].ID.String() == id {
			n.index = i
			break
		}
	}
	n.status = StatusReady
	return n.mountLocked()
}

// Next переходит к следующему видео; на последнем ничего не делает.
func (n *Navigator) Next() error {
	return n.move(1)
}

// Prev переходит к предыдущему видео; на первом ничего не делает.
func (n *Navigator) Prev() error {
	return n.move(-1)
}

func (n *Navigator) move(delta int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.status != StatusReady {
		return ErrNotReady
	}

	target := n.index + delta
	if target < 0 {
		target = 0
	}
	if target > len(n.videos)-1 {
		target = len(n.videos) - 1
	}
	if target == n.index {
		return nil
	}

	n.index = target
	return n.mountLocked()
}

// mountLocked останавливает текущий плеер до монтирования следующего.
func (n *Navigator) mountLocked() error {
	n.unmountLocked()

	v := n.videos[n.index]
	p, err := n.screen.Mount(v, PlayOptions{
		Autoplay: true,
		Loop:     true,
		Controls: v.Controls,
		Width:    v.Transformation.Width,
		Height:   v.Transformation.Height,
	})
	if err != nil {
		return fmt.Errorf("ошибка запуска видео %s: %w", v.ID, err)
	}
	n.player = p
	n.logger.Debug("video mounted", "video_id", v.ID, "index", n.index)
	return nil
}

func (n *Navigator) unmountLocked() {
	if n.player != nil {
		n.player.Stop()
		n.player = nil
	}
}

// Close останавливает плеер.
func (n *Navigator) Close() {
	n.mu.Lock()
	n.unmountLocked()
	n.mu.Unlock()
}

func (n *Navigator) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

func (n *Navigator) Index() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index
}

func (n *Navigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.videos)
}

// Current: активное видео; ok=false, пока лента не готова.
func (n *Navigator) Current() (domain.Video, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.status != StatusReady {
		return domain.Video{}, false
	}
	return n.videos[n.index], true
}

// HasPrev: показывать ли кнопку «назад».
func (n *Navigator) HasPrev() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status == StatusReady && n.index > 0
}

// HasNext: показывать ли кнопку «вперёд».
func (n *Navigator) HasNext() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status == StatusReady && n.index < len(n.videos)-1
}
