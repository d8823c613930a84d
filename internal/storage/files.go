package storage

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/leth4/leto-sub000/internal/domain"
)

// FileStore is the file-system backed document store. Relative paths are
// resolved against Root.
type FileStore struct {
	Root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

var (
	_ domain.DocumentStore = (*FileStore)(nil)
	_ domain.ImageMeasurer = (*FileStore)(nil)
)

func (s *FileStore) abs(path string) string {
	if filepath.IsAbs(path) || s.Root == "" {
		return path
	}
	return filepath.Join(s.Root, path)
}

// ReadText returns the content of path. A missing file reads as an error
// matching fs.ErrNotExist.
func (s *FileStore) ReadText(path string) (string, error) {
	data, err := os.ReadFile(s.abs(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteText replaces the content of path, creating parent directories.
func (s *FileStore) WriteText(path, text string) error {
	p := s.abs(path)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(p, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LocalPath returns the absolute file-system path behind path.
func (s *FileStore) LocalPath(path string) string {
	p, err := filepath.Abs(s.abs(path))
	if err != nil {
		return s.abs(path)
	}
	return p
}

// ResolveDisplayPath turns path into a file URL a host can load.
func (s *FileStore) ResolveDisplayPath(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(s.LocalPath(path))}
	return u.String()
}

// ImageSize reports the pixel dimensions of an image without decoding it
// fully.
func (s *FileStore) ImageSize(path string) (int, int, error) {
	f, err := os.Open(s.abs(path))
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
