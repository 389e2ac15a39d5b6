// Package storage keeps uploaded occurrence photos on local disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("arquivo muito grande")
	// ErrUnsupportedType is returned when the content is not an accepted image.
	ErrUnsupportedType = errors.New("tipo de arquivo não permitido")
)

var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Photos stores files under Dir and exposes them below BaseURL/uploads/.
type Photos struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

// NewPhotos creates the upload directory if needed.
func NewPhotos(dir, baseURL string, maxBytes int64) (*Photos, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Photos{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), MaxBytes: maxBytes}, nil
}

// Save reads r fully, checks size and sniffed content type, and writes it
// under a random name. It returns the stored file name.
func (p *Photos) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > p.MaxBytes {
		return "", ErrTooLarge
	}
	mt := mimetype.Detect(data)
	ext, ok := allowed[mt.String()]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := "ocorrencia_" + uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(p.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	return name, f.Close()
}

// Remove deletes a stored file. A missing file is not an error.
func (p *Photos) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(p.Dir, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// URL returns the public address of a stored file, or "" for no file.
func (p *Photos) URL(name string) string {
	if name == "" {
		return ""
	}
	return p.BaseURL + "/uploads/" + name
}
