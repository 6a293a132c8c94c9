// Package upload загружает файлы на медиа-хостинг по подписанным одноразовым параметрам.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"sync"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
)

// State: этап текущей попытки загрузки.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateAuthenticating
	StateUploading
	StateSucceeded
	StateFailed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateAuthenticating:
		return "authenticating"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

func (s State) inFlight() bool {
	return s == StateValidating || s == StateAuthenticating || s == StateUploading
}

// Authenticator выдаёт параметры загрузки; реализуется apiclient.Client.
type Authenticator interface {
	UploadAuth(ctx context.Context) (*imagekit.Credentials, error)
}

// Result: ответ медиа-хостинга.
type Result struct {
	FileID       string `json:"fileId"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	FilePath     string `json:"filePath"`
	Size         int64  `json:"size"`
	FileType     string `json:"fileType"`
}

// ProgressFunc получает долю переданных байт от 0 до 1.
type ProgressFunc func(fraction float64)

type abortCause struct {
	reason string
}

func (a *abortCause) Error() string {
	return a.reason
}

// Uploader ведёт одну попытку загрузки за раз.
type Uploader struct {
	auth       Authenticator
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	state   State
	lastErr error
	cancel  context.CancelCauseFunc
}

// NewUploader создаёт загрузчик. endpoint: адрес приёма файлов медиа-хостинга.
func NewUploader(auth Authenticator, endpoint string, httpClient *http.Client, logger *slog.Logger) *Uploader {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Uploader{
		auth:       auth,
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
	}
}

// State возвращает этап текущей или последней попытки.
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Err: ошибка последней попытки. Сбрасывается при следующем Upload.
func (u *Uploader) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastErr
}

// Abort прерывает текущую загрузку; reason станет текстом ошибки.
func (u *Uploader) Abort(reason string) {
	u.mu.Lock()
	cancel := u.cancel
	u.mu.Unlock()
	if cancel != nil {
		cancel(&abortCause{reason: reason})
	}
}

func (u *Uploader) setState(s State) {
	u.mu.Lock()
	u.state = s
	u.mu.Unlock()
}

func (u *Uploader) finish(s State, err error) {
	u.mu.Lock()
	u.state = s
	u.lastErr = err
	if u.cancel != nil {
		u.cancel(nil)
		u.cancel = nil
	}
	u.mu.Unlock()
}

// Upload проверяет файл, получает параметры загрузки и передаёт файл потоком.
func (u *Uploader) Upload(ctx context.Context, file *File, category Category, onProgress ProgressFunc) (*Result, error) {
	u.mu.Lock()
	if u.state.inFlight() {
		u.mu.Unlock()
		return nil, ErrUploadInProgress
	}
	ctx, cancel := context.WithCancelCause(ctx)
	u.state = StateValidating
	u.lastErr = nil
	u.cancel = cancel
	u.mu.Unlock()

	if err := Validate(file, category); err != nil {
		u.finish(StateFailed, err)
		return nil, err
	}

	u.setState(StateAuthenticating)
	creds, err := u.auth.UploadAuth(ctx)
	if err != nil {
		if ctx.Err() != nil {
			aborted := classifyTransport(ctx, err)
			u.finish(StateAborted, aborted)
			return nil, aborted
		}
		u.logger.Error("upload authentication failed", "error", err)
		u.finish(StateFailed, ErrAuthentication)
		return nil, ErrAuthentication
	}

	u.setState(StateUploading)
	res, err := u.send(ctx, file, category, creds, onProgress)
	if err != nil {
		state := StateFailed
		if k, _ := KindOf(err); k == KindAbort {
			state = StateAborted
		}
		u.finish(state, err)
		return nil, err
	}

	u.finish(StateSucceeded, nil)
	u.logger.Info("upload finished", "url", res.URL, "size", res.Size)
	return res, nil
}

func (u *Uploader) send(ctx context.Context, file *File, category Category, creds *imagekit.Credentials, onProgress ProgressFunc) (*Result, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		pw.CloseWithError(writeForm(mw, file, category, creds, onProgress))
	}()
	// onProgress не должен вызываться после возврата из Upload.
	defer func() {
		pr.CloseWithError(errSendFinished)
		<-writerDone
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var res Result
		if err := json.Unmarshal(body, &res); err != nil {
			return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("ошибка декодирования ответа медиа-хостинга: %w", err)}
		}
		return &res, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &Error{Kind: KindInvalidRequest, Message: hostMessage(body)}
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindServer, Message: hostMessage(body)}
	default:
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("неожиданный статус %d", resp.StatusCode)}
	}
}

// errSendFinished обрывает запись формы, если ответ пришёл раньше, чем ушёл весь файл.
var errSendFinished = errors.New("upload request finished")

// classifyTransport различает отмену и сетевую ошибку.
func classifyTransport(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		var ac *abortCause
		if errors.As(cause, &ac) {
			return &Error{Kind: KindAbort, Message: ac.reason, Err: cause}
		}
		return &Error{Kind: KindAbort, Err: cause}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

func writeForm(mw *multipart.Writer, file *File, category Category, creds *imagekit.Credentials, onProgress ProgressFunc) error {
	fields := [][2]string{
		{"fileName", file.Name},
		{"folder", category.Folder()},
		{"publicKey", creds.PublicKey},
		{"signature", creds.Signature},
		{"expire", strconv.FormatInt(creds.Expire, 10)},
		{"token", creds.Token},
		{"useUniqueFileName", "true"},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	h.Set("Content-Type", file.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	pr := &progressReader{r: file.Body, total: file.Size, onProgress: onProgress}
	if _, err := io.Copy(part, pr); err != nil {
		return err
	}
	if file.Size == 0 && onProgress != nil {
		onProgress(1)
	}
	return mw.Close()
}

// hostMessage достаёт {"message": ...} из ответа хостинга.
func hostMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err == nil {
		return m.Message
	}
	return ""
}

type progressReader struct {
	r          io.Reader
	total      int64
	loaded     int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.onProgress != nil && p.total > 0 {
			fraction := float64(p.loaded) / float64(p.total)
			if fraction > 1 {
				fraction = 1
			}
			p.onProgress(fraction)
		}
	}
	return n, err
}
