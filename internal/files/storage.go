package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/tvan04/workflow-management-system-sub001/internal/apperror"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// sniffBytes is how much of the upload mimetype needs to classify it.
const sniffBytes = 3072

var allowedTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// Storage keeps uploaded CV documents on local disk.
type Storage struct {
	dir      string
	maxBytes int64
}

func NewStorage(dir string, maxBytes int64) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	return &Storage{dir: dir, maxBytes: maxBytes}, nil
}

// Save validates and writes the document. Type and size problems are
// validation errors so the caller can report them per field.
func (s *Storage) Save(_ context.Context, fileName string, r io.Reader) (models.CVFile, error) {
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return models.CVFile{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return models.CVFile{}, cvError("file is empty")
	}

	detected := mimetype.Detect(head)
	mimeType, ext, ok := allowedType(detected)
	if !ok {
		return models.CVFile{}, cvError(fmt.Sprintf("unsupported file type %s; upload a PDF or Word document", detected.String()))
	}

	id := uuid.NewString()
	path := filepath.Join(s.dir, id+ext)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return models.CVFile{}, fmt.Errorf("create cv file: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	//one extra byte tells an exact-limit file from an oversize one
	written, err := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return models.CVFile{}, fmt.Errorf("write cv file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return models.CVFile{}, cvError(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	return models.CVFile{
		ID:         id,
		FileName:   sanitizeName(fileName, ext),
		Path:       path,
		Size:       written,
		MimeType:   mimeType,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Open returns the stored document for download.
func (s *Storage) Open(cv models.CVFile) (*os.File, error) {
	if cv.Path == "" {
		return nil, apperror.NotFound("no cv on file")
	}
	if !s.owns(cv.Path) {
		return nil, apperror.NotFound("cv file not found")
	}
	f, err := os.Open(cv.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NotFound("cv file not found")
		}
		return nil, fmt.Errorf("open cv file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored document; a missing file is not an error.
func (s *Storage) Remove(cv models.CVFile) error {
	if cv.Path == "" || !s.owns(cv.Path) {
		return nil
	}
	if err := os.Remove(cv.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Storage) owns(path string) bool {
	rel, err := filepath.Rel(s.dir, path)
	return err == nil && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

func allowedType(m *mimetype.MIME) (string, string, bool) {
	for t := m; t != nil; t = t.Parent() {
		if ext, ok := allowedTypes[t.String()]; ok {
			return t.String(), ext, true
		}
	}
	return "", "", false
}

func sanitizeName(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == '"':
			return -1
		}
		return r
	}, base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "cv" + ext
	}
	return base
}

func cvError(msg string) error {
	return apperror.Validation("invalid cv upload", map[string]string{"cv": msg})
}
