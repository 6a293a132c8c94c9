package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoArmGo/ReelApp/internal/logger"
	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"
)

func hostOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u.Host
}

func TestVerifyVideoMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewMediaVerifier(time.Second, []string{hostOf(t, srv.URL)}, logger.Discard())

	report, err := v.VerifyVideoMedia(context.Background(), payloads.VideoCreatedPayload{
		VideoURL:     srv.URL + "/clip.mp4",
		ThumbnailURL: srv.URL + "/thumb.jpg",
	})
	if err != nil || !report.OK() {
		t.Fatalf("report = %+v, err = %v", report, err)
	}

	report, err = v.VerifyVideoMedia(context.Background(), payloads.VideoCreatedPayload{
		VideoURL:     srv.URL + "/clip.mp4",
		ThumbnailURL: srv.URL + "/missing.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !report.VideoReachable || report.ThumbnailReachable || report.OK() {
		t.Errorf("report = %+v", report)
	}
}

func TestVerifyVideoMediaSkipsForeignHosts(t *testing.T) {
	var internalHits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internalHits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer internal.Close()

	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bounce.mp4" {
			http.Redirect(w, r, internal.URL+"/secret", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer media.Close()

	v := NewMediaVerifier(time.Second, []string{hostOf(t, media.URL)}, logger.Discard())

	cases := []struct {
		name  string
		video string
	}{
		{"other host", internal.URL + "/clip.mp4"},
		{"redirect to other host", media.URL + "/bounce.mp4"},
		{"metadata address", "http://169.254.169.254/latest/meta-data"},
		{"non-http scheme", "file:///etc/passwd"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := v.VerifyVideoMedia(context.Background(), payloads.VideoCreatedPayload{
				VideoURL:     tc.video,
				ThumbnailURL: media.URL + "/thumb.jpg",
			})
			if err != nil {
				t.Fatal(err)
			}
			if report.VideoReachable || !report.ThumbnailReachable {
				t.Errorf("report = %+v", report)
			}
		})
	}
	if n := internalHits.Load(); n != 0 {
		t.Errorf("foreign host received %d requests", n)
	}
}

func TestVerifyVideoMediaCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewMediaVerifier(time.Second, []string{"127.0.0.1"}, logger.Discard())
	if _, err := v.VerifyVideoMedia(ctx, payloads.VideoCreatedPayload{VideoURL: "http://127.0.0.1:1/a", ThumbnailURL: "http://127.0.0.1:1/b"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
