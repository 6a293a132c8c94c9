package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File: то, что отправляется на медиа-хостинг.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader

	closer io.Closer
}

// Close закрывает файл, открытый через OpenFile.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// OpenFile открывает локальный файл и определяет его тип по содержимому.
func OpenFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}

	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("ошибка чтения информации о файле %s: %w", path, err)
	}

	mtype, err := mimetype.DetectReader(fh)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("ошибка определения типа файла %s: %w", path, err)
	}
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		fh.Close()
		return nil, fmt.Errorf("ошибка перемотки файла %s: %w", path, err)
	}

	contentType, _, _ := strings.Cut(mtype.String(), ";")

	return &File{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: strings.TrimSpace(contentType),
		Body:        fh,
		closer:      fh,
	}, nil
}
