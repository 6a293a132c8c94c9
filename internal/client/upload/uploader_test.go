package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
	"github.com/GoArmGo/ReelApp/internal/logger"
)

type stubAuth struct {
	err   error
	calls int
}

func (s *stubAuth) UploadAuth(ctx context.Context) (*imagekit.Credentials, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &imagekit.Credentials{Signature: "sig", Expire: time.Now().Add(time.Minute).Unix(), Token: "tok", PublicKey: "pub"}, nil
}

func videoFile(size int) *File {
	return &File{Name: "clip.mp4", Size: int64(size), ContentType: "video/mp4", Body: bytes.NewReader(bytes.Repeat([]byte{7}, size))}
}

type progressLog struct {
	mu     sync.Mutex
	values []float64
}

func (p *progressLog) record(f float64) {
	p.mu.Lock()
	p.values = append(p.values, f)
	p.mu.Unlock()
}

func TestUploadSucceedsWithProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mr, err := r.MultipartReader()
		if err != nil {
			t.Errorf("multipart: %v", err)
			return
		}
		fields := map[string]string{}
		var size int64
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("part: %v", err)
				return
			}
			if p.FormName() == "file" {
				size, _ = io.Copy(io.Discard, p)
				continue
			}
			b, _ := io.ReadAll(p)
			fields[p.FormName()] = string(b)
		}
		if fields["folder"] != "/videos" || fields["token"] != "tok" || fields["useUniqueFileName"] != "true" {
			t.Errorf("fields = %v", fields)
		}
		w.Write([]byte(`{"fileId":"1","name":"clip.mp4","url":"http://cdn/videos/clip.mp4","filePath":"/videos/clip.mp4","size":` +
			strconv.FormatInt(size, 10) + `,"fileType":"non-image"}`))
	}))
	defer srv.Close()

	u := NewUploader(&stubAuth{}, srv.URL, srv.Client(), logger.Discard())
	progress := &progressLog{}

	res, err := u.Upload(context.Background(), videoFile(256*1024), CategoryVideo, progress.record)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.URL != "http://cdn/videos/clip.mp4" || res.Size != 256*1024 {
		t.Errorf("result = %+v", res)
	}
	if u.State() != StateSucceeded || u.Err() != nil {
		t.Errorf("state = %s, err = %v", u.State(), u.Err())
	}

	progress.mu.Lock()
	defer progress.mu.Unlock()
	if len(progress.values) == 0 || progress.values[len(progress.values)-1] != 1 {
		t.Fatalf("progress = %v", progress.values)
	}
	for i := 1; i < len(progress.values); i++ {
		if progress.values[i] < progress.values[i-1] {
			t.Fatalf("progress went backwards: %v", progress.values)
		}
	}
}

func TestUploadValidationFailureSkipsAuth(t *testing.T) {
	auth := &stubAuth{}
	u := NewUploader(auth, "http://127.0.0.1:1", nil, logger.Discard())

	f := &File{Name: "doc.pdf", ContentType: "application/pdf", Size: 10, Body: bytes.NewReader(nil)}
	_, err := u.Upload(context.Background(), f, CategoryVideo, nil)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
	if auth.calls != 0 || u.State() != StateFailed || u.Err() != err {
		t.Errorf("calls = %d, state = %s, retained = %v", auth.calls, u.State(), u.Err())
	}
}

func TestUploadAuthenticationFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	defer srv.Close()

	u := NewUploader(&stubAuth{err: errors.New("500")}, srv.URL, nil, logger.Discard())
	_, err := u.Upload(context.Background(), videoFile(10), CategoryVideo, nil)

	if !errors.Is(err, ErrAuthentication) || err.Error() != "Authentication request failed" {
		t.Fatalf("err = %v", err)
	}
	if hits.Load() != 0 {
		t.Error("upload must not start")
	}
	if u.State() != StateFailed {
		t.Errorf("state = %s", u.State())
	}
}

func TestUploadErrorKinds(t *testing.T) {
	cases := []struct {
		status int
		body   string
		kind   ErrorKind
		msg    string
	}{
		{http.StatusBadRequest, `{"message":"invalid signature"}`, KindInvalidRequest, "invalid signature"},
		{http.StatusForbidden, ``, KindInvalidRequest, "Invalid upload request"},
		{http.StatusBadGateway, `{"message":"try later"}`, KindServer, "try later"},
		{http.StatusMultipleChoices, ``, KindUnknown, "Upload failed"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.Copy(io.Discard, r.Body)
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))

		u := NewUploader(&stubAuth{}, srv.URL, nil, logger.Discard())
		_, err := u.Upload(context.Background(), videoFile(1024), CategoryVideo, nil)
		srv.Close()

		kind, ok := KindOf(err)
		if !ok || kind != tc.kind || err.Error() != tc.msg {
			t.Errorf("status %d: kind = %s, err = %v", tc.status, kind, err)
		}
		if u.State() != StateFailed {
			t.Errorf("status %d: state = %s", tc.status, u.State())
		}
	}
}

func TestUploadNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	u := NewUploader(&stubAuth{}, endpoint, nil, logger.Discard())
	_, err := u.Upload(context.Background(), videoFile(1024), CategoryVideo, nil)
	if kind, _ := KindOf(err); kind != KindNetwork {
		t.Fatalf("err = %v", err)
	}
}

func TestUploadNoProgressAfterEarlyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"rejected"}`))
	}))
	defer srv.Close()

	var returned atomic.Bool
	var late atomic.Int32
	u := NewUploader(&stubAuth{}, srv.URL, nil, logger.Discard())

	_, err := u.Upload(context.Background(), videoFile(8<<20), CategoryVideo, func(float64) {
		if returned.Load() {
			late.Add(1)
		}
	})
	returned.Store(true)
	if err == nil {
		t.Fatal("expected an error for a rejected upload")
	}

	time.Sleep(50 * time.Millisecond)
	if n := late.Load(); n != 0 {
		t.Errorf("onProgress called %d times after Upload returned", n)
	}
}

func TestUploadAbortAndSingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		close(entered)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	u := NewUploader(&stubAuth{}, srv.URL, nil, logger.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := u.Upload(context.Background(), videoFile(1024), CategoryVideo, nil)
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("upload never reached the server")
	}

	if _, err := u.Upload(context.Background(), videoFile(10), CategoryVideo, nil); !errors.Is(err, ErrUploadInProgress) {
		t.Fatalf("second upload: %v", err)
	}

	u.Abort("User cancelled")

	var err error
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("abort did not stop the upload")
	}

	if kind, _ := KindOf(err); kind != KindAbort || err.Error() != "User cancelled" {
		t.Fatalf("err = %v", err)
	}
	if u.State() != StateAborted || u.Err() == nil {
		t.Errorf("state = %s, err = %v", u.State(), u.Err())
	}
}

func TestOpenFileSniffsType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.bin")
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	if err := os.WriteFile(path, png, 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.ContentType != "image/png" || f.Size != int64(len(png)) || f.Name != "cover.bin" {
		t.Errorf("file = %+v", f)
	}
	head := make([]byte, 4)
	if _, err := io.ReadFull(f.Body, head); err != nil || string(head[1:]) != "PNG" {
		t.Errorf("body not rewound: %q, %v", head, err)
	}
}
