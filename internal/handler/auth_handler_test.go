package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
	"github.com/GoArmGo/ReelApp/internal/logger"
	"github.com/go-chi/chi/v5"
)

func newAuthRouter(authUC *fakeAuthUseCase) http.Handler {
	log := logger.Discard()
	h := NewAuthHandler(authUC, CookieSettings{Name: "reelapp_session"}, log)

	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(authUC, "reelapp_session", log))
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/session", h.Session)
	})
	return r
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestRegisterResponses(t *testing.T) {
	srv := newAuthRouter(newFakeAuth())

	cases := []struct {
		name string
		body string
		code int
		key  string
		msg  string
	}{
		{"ok", `{"email":"bob@example.com","password":"pw"}`, http.StatusCreated, "message", "User registered successfully"},
		{"duplicate", `{"email":"ANN@example.com","password":"pw"}`, http.StatusConflict, "error", "Email is already registered"},
		{"missing", `{"email":"","password":""}`, http.StatusBadRequest, "error", "Email and password are required"},
		{"garbage", `nope`, http.StatusBadRequest, "error", "Invalid request body"},
		{"password too long", `{"email":"long@example.com","password":"` + strings.Repeat("a", 73) + `"}`, http.StatusBadRequest, "error", "Password must be at most 72 bytes"},
		{"body too large", `{"email":"big@example.com","password":"` + strings.Repeat("a", MaxJSONBodySize) + `"}`, http.StatusRequestEntityTooLarge, "error", "Request body too large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(srv, "/auth/register", tc.body)
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body[tc.key] != tc.msg {
				t.Errorf("%s = %q, want %q", tc.key, body[tc.key], tc.msg)
			}
		})
	}
}

func TestLoginSetsCookieAndSessionWorks(t *testing.T) {
	authUC := newFakeAuth()
	authUC.loggedIn = false
	srv := newAuthRouter(authUC)

	if rec := post(srv, "/auth/login", `{"email":"ann@example.com","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rec.Code)
	}

	rec := post(srv, "/auth/login", `{"email":"ann@example.com","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != validToken || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ann@example.com") {
		t.Fatalf("session: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("session after logout status = %d", rec.Code)
	}
}

func TestUploadAuth(t *testing.T) {
	creds := &imagekit.Credentials{Signature: "sig", Expire: 42, Token: "tok", PublicKey: "pub"}
	h := NewUploadAuthHandler(&fakeUploadAuth{creds: creds}, logger.Discard())

	rec := httptest.NewRecorder()
	h.UploadAuth(rec, httptest.NewRequest(http.MethodGet, "/upload-auth", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got imagekit.Credentials
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != *creds {
		t.Errorf("got %+v", got)
	}

	h = NewUploadAuthHandler(&fakeUploadAuth{err: errors.New("no keys")}, logger.Discard())
	rec = httptest.NewRecorder()
	h.UploadAuth(rec, httptest.NewRequest(http.MethodGet, "/upload-auth", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
}
