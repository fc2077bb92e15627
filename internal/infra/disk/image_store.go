package disk

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"live-quiz-service/internal/domain"
)

const (
	// URLPrefix is where saved images are served from.
	URLPrefix = "/uploads/"
	// DefaultMaxBytes is the per-image limit when none is configured.
	DefaultMaxBytes = 5 << 20
)

// DefaultAllowedTypes is the image allow-list applied to both extension and MIME type.
var DefaultAllowedTypes = []string{"jpeg", "jpg", "png", "gif", "webp"}

// ImageStore writes uploaded images into a flat directory under generated names.
// There is no deduplication and no cleanup of images that never get attached to a quiz.
type ImageStore struct {
	dir      string
	maxBytes int64
	allowed  []string
	now      func() time.Time
}

func NewImageStore(dir string, maxBytes int64, allowed []string) (*ImageStore, error) {
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	normalized := make([]string, 0, len(allowed))
	for _, t := range allowed {
		normalized = append(normalized, strings.ToLower(strings.TrimPrefix(t, ".")))
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes, allowed: normalized, now: time.Now}, nil
}

// Dir is the directory images are written to.
func (s *ImageStore) Dir() string { return s.dir }

// MaxBytes is the per-file size limit.
func (s *ImageStore) MaxBytes() int64 { return s.maxBytes }

// Accepts applies the extension and MIME allow-list. The two checks are
// independent string matches; file content is never sniffed.
func (s *ImageStore) Accepts(originalName, contentType string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	extOK := false
	for _, t := range s.allowed {
		if ext == t {
			extOK = true
			break
		}
	}
	if !extOK {
		return false
	}
	mime := strings.ToLower(contentType)
	for _, t := range s.allowed {
		if strings.Contains(mime, t) {
			return true
		}
	}
	return false
}

// Save writes the image and returns its public URL path.
func (s *ImageStore) Save(originalName, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", domain.ErrFileTooLarge
	}
	if !s.Accepts(originalName, contentType) {
		return "", domain.ErrUnsupportedImage
	}

	name := s.fileName(originalName)
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("write image: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("close image: %w", closeErr)
	case s.maxBytes > 0 && written > s.maxBytes:
		// The declared size lied; the limit still holds.
		_ = os.Remove(path)
		return "", domain.ErrFileTooLarge
	}
	return URLPrefix + name, nil
}

// List returns the stored file names, sorted.
func (s *ImageStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read uploads dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *ImageStore) fileName(originalName string) string {
	ext := filepath.Ext(filepath.Base(originalName))
	return fmt.Sprintf("question-%d-%d%s", s.now().UnixMilli(), rand.IntN(1_000_000_000), ext)
}
