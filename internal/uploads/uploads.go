// Package uploads owns the local directory submitted documents land in.
// The database stores only the returned filenames; file ownership stays
// outside the record itself.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the uploaded file under a uuid-prefixed, sanitized name and
// returns that name for persistence.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	name := uuid.New().String() + "_" + sanitize(fh.Filename)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return name, nil
}

// Path resolves a stored filename back to a path inside the upload dir.
// The filename is reduced to its base component so a crafted name cannot
// escape the directory.
func (s *Store) Path(name string) (string, error) {
	clean := filepath.Base(name)
	if clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	full := filepath.Join(s.dir, clean)
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("upload %q: %w", clean, err)
	}
	return full, nil
}

func sanitize(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	return base
}
