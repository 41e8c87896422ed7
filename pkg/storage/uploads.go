package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Uploads persists complaint images on disk under a base directory.
type Uploads struct {
	baseDir string
}

// NewUploads ensures the base directory exists and returns a handle.
func NewUploads(baseDir string) (*Uploads, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &Uploads{baseDir: baseDir}, nil
}

// Dir returns the base directory, suitable for static file serving.
func (s *Uploads) Dir() string {
	return s.baseDir
}

// SaveStream copies from reader into a file named filename under the base dir.
// Path separators in filename are rejected so callers cannot escape the dir.
func (s *Uploads) SaveStream(filename string, r io.Reader) (string, error) {
	if strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("invalid upload filename %q", filename)
	}
	path := filepath.Join(s.baseDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return filename, nil
}

// Delete removes a stored file if present.
func (s *Uploads) Delete(filename string) error {
	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid upload filename %q", filename)
	}
	path := filepath.Join(s.baseDir, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}
