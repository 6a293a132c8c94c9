package upload

import "errors"

// ErrorKind: закрытый набор причин, по которым загрузка может не удаться.
type ErrorKind int

const (
	KindAbort ErrorKind = iota
	KindInvalidRequest
	KindNetwork
	KindServer
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindAbort:
		return "abort"
	case KindInvalidRequest:
		return "invalid-request"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindUnknown:
		return "unknown"
	}
	return "unknown"
}

// defaultMessage: текст для пользователя, если у ошибки нет своего.
func (k ErrorKind) defaultMessage() string {
	switch k {
	case KindAbort:
		return "Upload aborted"
	case KindInvalidRequest:
		return "Invalid upload request"
	case KindNetwork:
		return "Network error during upload"
	case KindServer:
		return "Media host error, please try again later"
	case KindUnknown:
		return "Upload failed"
	}
	return "Upload failed"
}

var (
	// ErrAuthentication: не удалось получить параметры загрузки, загрузка не начиналась.
	ErrAuthentication = errors.New("Authentication request failed")

	ErrUploadInProgress = errors.New("upload already in progress")
)

// Error: ошибка на этапе передачи файла.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.defaultMessage()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf возвращает вид ошибки загрузки; ok=false, если это не *Error.
func KindOf(err error) (ErrorKind, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind, true
	}
	return KindUnknown, false
}
