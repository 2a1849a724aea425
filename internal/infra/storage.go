package infra

// storage.go — local-disk implementation of the storage collaborator.
// Uploaded files (DNI scans, firmas, huellas, actas) are written under
// basePath/{bucket}/ and exposed as public URLs under baseURL. The contract
// is upload-only: no delete/versioning is required by the core.

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage is the object-storage collaborator consumed by services.
type Storage interface {
	// Upload stores the content and returns its public URL.
	Upload(bucket, filename string, r io.Reader) (string, error)
}

type localStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a disk-backed Storage rooted at basePath.
func NewLocalStorage(basePath, baseURL string) Storage {
	return &localStorage{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *localStorage) Upload(bucket, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(s.basePath, bucket)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("storage: create bucket dir: %w", err)
	}

	// Unique prefix avoids clobbering between uploads with the same name.
	name := uuid.NewString() + "_" + sanitize(filename)
	dest := filepath.Join(dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return s.baseURL + "/" + path.Join(bucket, name), nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
