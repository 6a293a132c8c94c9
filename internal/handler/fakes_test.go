package handler

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
	"github.com/GoArmGo/ReelApp/internal/domain"
	"github.com/GoArmGo/ReelApp/internal/usecase"
	"github.com/google/uuid"
)

type fakeVideoUseCase struct {
	videos  []domain.Video
	err     error
	created int
}

func (f *fakeVideoUseCase) ListVideos(ctx context.Context) ([]domain.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Video, len(f.videos))
	copy(out, f.videos)
	return out, nil
}

func (f *fakeVideoUseCase) GetVideo(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.videos {
		if f.videos[i].ID == id {
			return &f.videos[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVideoUseCase) CreateVideo(ctx context.Context, in *domain.CreateVideoInput) (*domain.Video, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	v := domain.NewVideo(in, time.Now().UTC())
	f.videos = append(f.videos, *v)
	f.created++
	return v, nil
}

const validToken = "good-token"

type fakeAuthUseCase struct {
	user     *domain.User
	loggedIn bool
	err      error
}

func newFakeAuth() *fakeAuthUseCase {
	return &fakeAuthUseCase{
		user:     &domain.User{ID: uuid.New(), Email: "ann@example.com"},
		loggedIn: true,
	}
}

func (f *fakeAuthUseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := domain.NewUser(email, password, time.Now())
	if err != nil {
		return nil, err
	}
	if u.Email == f.user.Email {
		return nil, domain.ErrEmailTaken
	}
	return u, nil
}

func (f *fakeAuthUseCase) Login(ctx context.Context, email, password string) (*usecase.Session, error) {
	if domain.NormalizeEmail(email) != f.user.Email || password != "secret" {
		return nil, domain.ErrInvalidCredentials
	}
	f.loggedIn = true
	return &usecase.Session{ID: "sid-1", UserID: f.user.ID, Token: validToken, ExpiresAt: time.Now().Add(time.Hour), TokenExpiresAt: time.Now().Add(24 * time.Hour)}, nil
}

func (f *fakeAuthUseCase) Logout(ctx context.Context, sessionID string) error {
	f.loggedIn = false
	return nil
}

func (f *fakeAuthUseCase) Authenticate(ctx context.Context, token string) (*usecase.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if token != validToken || !f.loggedIn {
		return nil, domain.ErrUnauthorized
	}
	return &usecase.Principal{UserID: f.user.ID, Email: f.user.Email, SessionID: "sid-1"}, nil
}

func (f *fakeAuthUseCase) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if userID != f.user.ID {
		return nil, domain.ErrNotFound
	}
	return f.user, nil
}

type fakeUploadAuth struct {
	creds *imagekit.Credentials
	err   error
}

func (f *fakeUploadAuth) IssueUploadCredentials(ctx context.Context) (*imagekit.Credentials, error) {
	return f.creds, f.err
}

type memTokens struct {
	mu   sync.Mutex
	used map[string]bool
}

func (m *memTokens) MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.used == nil {
		m.used = map[string]bool{}
	}
	if m.used[token] {
		return false, nil
	}
	m.used[token] = true
	return true, nil
}

type memFiles struct {
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newMemFiles() *memFiles {
	return &memFiles{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memFiles) UploadFile(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.objects[key] = buf.Bytes()
	m.types[key] = contentType
	return "http://media.test/bucket/" + key, nil
}

func (m *memFiles) DeleteFile(ctx context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}
