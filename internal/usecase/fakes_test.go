package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

type memVideoStorage struct {
	mu      sync.Mutex
	videos  map[uuid.UUID]domain.Video
	saves   int
	failAll error
}

func newMemVideoStorage() *memVideoStorage {
	return &memVideoStorage{videos: map[uuid.UUID]domain.Video{}}
}

func (s *memVideoStorage) SaveVideo(ctx context.Context, v *domain.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}
	s.saves++
	s.videos[v.ID] = *v
	return nil
}

func (s *memVideoStorage) GetVideoByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}
	v, ok := s.videos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (s *memVideoStorage) ListVideos(ctx context.Context) ([]domain.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}
	var out []domain.Video
	for _, v := range s.videos {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type recordingPublisher struct {
	events []payloads.VideoCreatedPayload
	err    error
}

func (p *recordingPublisher) PublishVideoCreated(ctx context.Context, payload payloads.VideoCreatedPayload) error {
	p.events = append(p.events, payload)
	return p.err
}

type memUserStorage struct {
	byEmail map[string]*domain.User
}

func newMemUserStorage() *memUserStorage {
	return &memUserStorage{byEmail: map[string]*domain.User{}}
}

func (s *memUserStorage) CreateUser(ctx context.Context, u *domain.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	s.byEmail[u.Email] = u
	return nil
}

func (s *memUserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *memUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memSessionStore ведёт себя как Redis с GETEX: Touch продлевает срок.
type memSessionStore struct {
	sessions map[string]memSession
	touches  int
	now      func() time.Time
}

type memSession struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]memSession{}, now: time.Now}
}

func (s *memSessionStore) Create(ctx context.Context, sid string, userID uuid.UUID, ttl time.Duration) error {
	s.sessions[sid] = memSession{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memSessionStore) Touch(ctx context.Context, sid string, ttl time.Duration) (uuid.UUID, error) {
	s.touches++
	sess, ok := s.sessions[sid]
	if !ok || !s.now().Before(sess.expiresAt) {
		delete(s.sessions, sid)
		return uuid.Nil, domain.ErrUnauthorized
	}
	sess.expiresAt = s.now().Add(ttl)
	s.sessions[sid] = sess
	return sess.userID, nil
}

func (s *memSessionStore) Delete(ctx context.Context, sid string) error {
	delete(s.sessions, sid)
	return nil
}

var errStoreDown = errors.New("store unavailable")
